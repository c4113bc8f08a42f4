package storage

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lojazap/vendas-backend/internal/models"
)

// DatabaseStore implements Store backed by PostgreSQL via GORM
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a database-backed store
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

func (s *DatabaseStore) IsAdmin(phone string) (bool, error) {
	var count int64
	err := s.db.Model(&models.Admin{}).
		Where("telefone = ? AND ativo = ?", phone, true).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check admin: %w", err)
	}
	return count > 0, nil
}

func (s *DatabaseStore) SaveConversation(conversa *models.Conversa) error {
	if err := s.db.Create(conversa).Error; err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (s *DatabaseStore) GetActiveProducts() ([]*models.Produto, error) {
	var produtos []*models.Produto
	err := s.db.Where("ativo = ?", true).
		Order("categoria ASC, id ASC").
		Find(&produtos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return produtos, nil
}

func (s *DatabaseStore) GetProduct(id uint) (*models.Produto, error) {
	var produto models.Produto
	err := s.db.First(&produto, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("produto %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &produto, nil
}

func (s *DatabaseStore) CreateProduct(produto *models.Produto) error {
	produto.AtualizadoEm = time.Now()
	if err := s.db.Create(produto).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (s *DatabaseStore) UpdateProduct(produto *models.Produto) error {
	produto.AtualizadoEm = time.Now()
	if err := s.db.Save(produto).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (s *DatabaseStore) UpdateProductStock(id uint, estoque int) (*models.Produto, error) {
	produto, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	produto.Estoque = estoque
	produto.AtualizadoEm = time.Now()
	if err := s.db.Save(produto).Error; err != nil {
		return nil, fmt.Errorf("failed to update stock: %w", err)
	}
	return produto, nil
}

func (s *DatabaseStore) DeactivateProduct(id uint) (*models.Produto, error) {
	produto, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	produto.Ativo = false
	produto.AtualizadoEm = time.Now()
	if err := s.db.Save(produto).Error; err != nil {
		return nil, fmt.Errorf("failed to deactivate product: %w", err)
	}
	return produto, nil
}

func (s *DatabaseStore) GetTodayOrders(since time.Time) ([]*models.Pedido, error) {
	var pedidos []*models.Pedido
	err := s.db.Preload("Itens").
		Where("data_pedido >= ?", since).
		Order("data_pedido DESC").
		Find(&pedidos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return pedidos, nil
}

// CreateOrder persists the order and its line items and decrements product
// stock in a single transaction. Insufficient stock on any item rolls back
// the whole order.
func (s *DatabaseStore) CreateOrder(pedido *models.Pedido) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range pedido.Itens {
			res := tx.Model(&models.Produto{}).
				Where("id = ? AND estoque >= ?", item.ProdutoID, item.Quantidade).
				Updates(map[string]interface{}{
					"estoque":       gorm.Expr("estoque - ?", item.Quantidade),
					"atualizado_em": time.Now(),
				})
			if res.Error != nil {
				return fmt.Errorf("failed to decrement stock: %w", res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("produto %d: %w", item.ProdutoID, ErrEstoqueInsuficiente)
			}
		}

		if err := tx.Create(pedido).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
}

func (s *DatabaseStore) GetConfigs() (map[string]string, error) {
	var configs []models.Configuracao
	if err := s.db.Find(&configs).Error; err != nil {
		return nil, fmt.Errorf("failed to load configs: %w", err)
	}

	configMap := make(map[string]string, len(configs))
	for _, c := range configs {
		configMap[c.Chave] = c.Valor
	}
	return configMap, nil
}
