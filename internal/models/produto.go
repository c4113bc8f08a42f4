package models

import "time"

// Produto represents a catalog item sold through the WhatsApp assistant
type Produto struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Nome         string    `json:"nome"`
	Categoria    string    `json:"categoria" gorm:"index"`
	Preco        float64   `json:"preco"`
	Estoque      int       `json:"estoque" gorm:"default:0"`
	Ativo        bool      `json:"ativo" gorm:"default:true"`
	Descricao    string    `json:"descricao"`
	CriadoEm     time.Time `json:"criado_em" gorm:"autoCreateTime"`
	AtualizadoEm time.Time `json:"atualizado_em"`
}

// TableName keeps the original Portuguese table name
func (Produto) TableName() string {
	return "produtos"
}

// Disponivel reports whether the product can be offered to customers
func (p *Produto) Disponivel() bool {
	return p.Ativo && p.Estoque > 0
}
