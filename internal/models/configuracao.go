package models

// Configuracao is a free-form store-wide setting (business hours, delivery fee...)
type Configuracao struct {
	ID    uint   `json:"id" gorm:"primaryKey"`
	Chave string `json:"chave" gorm:"uniqueIndex"`
	Valor string `json:"valor"`
}

func (Configuracao) TableName() string {
	return "configuracoes"
}

// Well-known configuration keys
const (
	ConfigHorarioFuncionamento = "horario_funcionamento"
	ConfigTaxaEntrega          = "taxa_entrega"
	ConfigTempoEntrega         = "tempo_entrega"
)
