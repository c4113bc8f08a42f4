package storage

import (
	"errors"
	"time"

	"github.com/lojazap/vendas-backend/internal/models"
)

// ErrNotFound is returned when a looked-up record does not exist.
// Implementations wrap it so callers can errors.Is against transient failures.
var ErrNotFound = errors.New("record not found")

// ErrEstoqueInsuficiente is returned when an order asks for more units
// than a product has in stock.
var ErrEstoqueInsuficiente = errors.New("estoque insuficiente")

// Store defines the interface for storage operations
type Store interface {
	// Admin operations
	IsAdmin(phone string) (bool, error)

	// Conversation log
	SaveConversation(conversa *models.Conversa) error

	// Product operations
	GetActiveProducts() ([]*models.Produto, error)
	GetProduct(id uint) (*models.Produto, error)
	CreateProduct(produto *models.Produto) error
	UpdateProduct(produto *models.Produto) error
	UpdateProductStock(id uint, estoque int) (*models.Produto, error)
	DeactivateProduct(id uint) (*models.Produto, error)

	// Order operations
	GetTodayOrders(since time.Time) ([]*models.Pedido, error)
	CreateOrder(pedido *models.Pedido) error

	// Config operations
	GetConfigs() (map[string]string, error)
}
