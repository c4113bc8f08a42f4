package models

import "time"

// Pedido represents a customer order captured from the sales conversation
type Pedido struct {
	ID              uint         `json:"id" gorm:"primaryKey"`
	NumeroPedido    string       `json:"numero_pedido" gorm:"uniqueIndex"`
	ClienteNome     string       `json:"cliente_nome"`
	ClienteTelefone string       `json:"cliente_telefone" gorm:"index"`
	Endereco        string       `json:"endereco"`
	Pagamento       string       `json:"pagamento"`
	Total           float64      `json:"total"`
	Status          string       `json:"status" gorm:"default:pendente"`
	DataPedido      time.Time    `json:"data_pedido" gorm:"autoCreateTime;index"`
	Itens           []ItemPedido `json:"itens_pedido" gorm:"foreignKey:PedidoID"`
}

func (Pedido) TableName() string {
	return "pedidos"
}

// ItemPedido is a line item with a snapshot of the product name at order time
type ItemPedido struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	PedidoID    uint    `json:"pedido_id" gorm:"index"`
	ProdutoID   uint    `json:"produto_id"`
	Quantidade  int     `json:"quantidade"`
	ProdutoNome string  `json:"produto_nome"`
	Subtotal    float64 `json:"subtotal"`
}

func (ItemPedido) TableName() string {
	return "itens_pedido"
}

// Pedido status constants
const (
	PedidoStatusPendente  = "pendente"
	PedidoStatusConcluido = "concluido"
	PedidoStatusCancelado = "cancelado"
)
