package models

import "time"

// Admin grants slash-command access to a WhatsApp phone
type Admin struct {
	ID       uint      `json:"id" gorm:"primaryKey"`
	Telefone string    `json:"telefone" gorm:"uniqueIndex"`
	Nome     string    `json:"nome"`
	Ativo    bool      `json:"ativo" gorm:"default:true"`
	CriadoEm time.Time `json:"criado_em" gorm:"autoCreateTime"`
}

func (Admin) TableName() string {
	return "admins"
}
