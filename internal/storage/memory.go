package storage

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lojazap/vendas-backend/internal/models"
)

// MemoryStore holds all data in memory, used for tests and local runs
type MemoryStore struct {
	admins    map[string]*models.Admin
	produtos  map[uint]*models.Produto
	pedidos   map[uint]*models.Pedido
	configs   map[string]string
	conversas []*models.Conversa

	mu sync.RWMutex

	// Counters for ID generation
	produtoCounter uint
	pedidoCounter  uint
	itemCounter    uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		admins:   make(map[string]*models.Admin),
		produtos: make(map[uint]*models.Produto),
		pedidos:  make(map[uint]*models.Pedido),
		configs:  make(map[string]string),
	}
}

// AddAdmin registers an admin phone (test helper)
func (m *MemoryStore) AddAdmin(phone string, ativo bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.admins[phone] = &models.Admin{Telefone: phone, Ativo: ativo, CriadoEm: time.Now()}
}

// SetConfig sets a configuration entry (test helper)
func (m *MemoryStore) SetConfig(chave, valor string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[chave] = valor
}

// Conversations returns the saved conversation log (test helper)
func (m *MemoryStore) Conversations() []*models.Conversa {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Conversa, len(m.conversas))
	copy(out, m.conversas)
	return out
}

func (m *MemoryStore) IsAdmin(phone string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	admin, exists := m.admins[phone]
	return exists && admin.Ativo, nil
}

func (m *MemoryStore) SaveConversation(conversa *models.Conversa) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if conversa.CriadoEm.IsZero() {
		conversa.CriadoEm = time.Now()
	}
	m.conversas = append(m.conversas, conversa)
	return nil
}

func (m *MemoryStore) GetActiveProducts() ([]*models.Produto, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var produtos []*models.Produto
	for _, p := range m.produtos {
		if p.Ativo {
			produtos = append(produtos, p)
		}
	}

	sort.Slice(produtos, func(i, j int) bool {
		if produtos[i].Categoria != produtos[j].Categoria {
			return produtos[i].Categoria < produtos[j].Categoria
		}
		return produtos[i].ID < produtos[j].ID
	})
	return produtos, nil
}

func (m *MemoryStore) GetProduct(id uint) (*models.Produto, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	produto, exists := m.produtos[id]
	if !exists {
		return nil, fmt.Errorf("produto %d: %w", id, ErrNotFound)
	}
	cp := *produto
	return &cp, nil
}

func (m *MemoryStore) CreateProduct(produto *models.Produto) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.produtoCounter++
	produto.ID = m.produtoCounter
	produto.CriadoEm = time.Now()
	produto.AtualizadoEm = time.Now()

	cp := *produto
	m.produtos[produto.ID] = &cp
	return nil
}

func (m *MemoryStore) UpdateProduct(produto *models.Produto) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.produtos[produto.ID]; !exists {
		return fmt.Errorf("produto %d: %w", produto.ID, ErrNotFound)
	}
	produto.AtualizadoEm = time.Now()
	cp := *produto
	m.produtos[produto.ID] = &cp
	return nil
}

func (m *MemoryStore) UpdateProductStock(id uint, estoque int) (*models.Produto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	produto, exists := m.produtos[id]
	if !exists {
		return nil, fmt.Errorf("produto %d: %w", id, ErrNotFound)
	}

	produto.Estoque = estoque
	produto.AtualizadoEm = time.Now()
	cp := *produto
	return &cp, nil
}

func (m *MemoryStore) DeactivateProduct(id uint) (*models.Produto, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	produto, exists := m.produtos[id]
	if !exists {
		return nil, fmt.Errorf("produto %d: %w", id, ErrNotFound)
	}

	produto.Ativo = false
	produto.AtualizadoEm = time.Now()
	cp := *produto
	return &cp, nil
}

func (m *MemoryStore) GetTodayOrders(since time.Time) ([]*models.Pedido, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var pedidos []*models.Pedido
	for _, p := range m.pedidos {
		if !p.DataPedido.Before(since) {
			cp := *p
			pedidos = append(pedidos, &cp)
		}
	}

	sort.Slice(pedidos, func(i, j int) bool {
		return pedidos[i].DataPedido.After(pedidos[j].DataPedido)
	})
	return pedidos, nil
}

func (m *MemoryStore) CreateOrder(pedido *models.Pedido) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Validate stock for every item before touching anything
	for _, item := range pedido.Itens {
		produto, exists := m.produtos[item.ProdutoID]
		if !exists || produto.Estoque < item.Quantidade {
			return fmt.Errorf("produto %d: %w", item.ProdutoID, ErrEstoqueInsuficiente)
		}
	}

	m.pedidoCounter++
	pedido.ID = m.pedidoCounter
	if pedido.DataPedido.IsZero() {
		pedido.DataPedido = time.Now()
	}

	for i := range pedido.Itens {
		m.itemCounter++
		pedido.Itens[i].ID = m.itemCounter
		pedido.Itens[i].PedidoID = pedido.ID

		produto := m.produtos[pedido.Itens[i].ProdutoID]
		produto.Estoque -= pedido.Itens[i].Quantidade
		produto.AtualizadoEm = time.Now()
	}

	cp := *pedido
	m.pedidos[pedido.ID] = &cp
	return nil
}

func (m *MemoryStore) GetConfigs() (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	configMap := make(map[string]string, len(m.configs))
	for k, v := range m.configs {
		configMap[k] = v
	}
	return configMap, nil
}
