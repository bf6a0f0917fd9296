package models

import "time"

// Organization is the tenant boundary. Every document, chunk and query is
// scoped to exactly one organization.
type Organization struct {
	ID           string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	MaxDocuments int       `gorm:"default:100" json:"maxDocuments"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (Organization) TableName() string {
	return "organizations"
}
