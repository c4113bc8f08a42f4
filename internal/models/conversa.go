package models

import "time"

// Conversa is an append-only record of one exchanged message
type Conversa struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Telefone string    `json:"telefone" gorm:"index"`
	Mensagem string    `json:"mensagem"`
	Tipo     string    `json:"tipo"`
	CriadoEm time.Time `json:"criado_em" gorm:"autoCreateTime"`
}

func (Conversa) TableName() string {
	return "conversas"
}

// Conversa message types
const (
	ConversaTipoCliente = "cliente"
	ConversaTipoBot     = "bot"
	ConversaTipoAdmin   = "admin"
)
