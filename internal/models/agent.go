package models

import "time"

// Agent is a WhatsApp-facing assistant configured by a tenant. Its prompt and
// model settings personalize RAG answer synthesis; documents may optionally be
// scoped to a single agent.
type Agent struct {
	ID                  string    `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID      string    `gorm:"type:uuid;index;not null" json:"organizationId"`
	Name                string    `gorm:"not null" json:"name"`
	SystemPrompt        string    `gorm:"type:text" json:"systemPrompt,omitempty"`
	LLMModel            string    `gorm:"column:llm_model;default:'gpt-4o'" json:"llmModel"`
	Temperature         float64   `gorm:"type:decimal(3,2);default:0.7" json:"temperature"`
	MaxTokens           int       `gorm:"default:1000" json:"maxTokens"`
	IsActive            bool      `gorm:"default:true" json:"isActive"`
	WhatsappPhoneNumber string    `json:"whatsappPhoneNumber,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

func (Agent) TableName() string {
	return "agents"
}
