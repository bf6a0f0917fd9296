package models

import (
	"time"

	"gorm.io/datatypes"
)

// DocumentStatus is the processing state of an uploaded document.
//
// Transitions only move forward along uploaded -> processing -> {processed|failed};
// reprocessing re-enters at processing.
type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusProcessed  DocumentStatus = "processed"
	StatusFailed     DocumentStatus = "failed"
)

// Document is a tenant-scoped upload record. The raw file lives in the blob
// store under StorageBucket/StorageKey; extracted chunks reference it by ID.
type Document struct {
	ID               string            `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID   string            `gorm:"type:uuid;index;not null" json:"organizationId"`
	AgentID          *string           `gorm:"type:uuid;index" json:"agentId,omitempty"`
	Filename         string            `gorm:"not null" json:"filename"`
	OriginalFilename string            `gorm:"not null" json:"originalFilename"`
	FileType         string            `gorm:"size:16;not null" json:"fileType"`
	FileSize         int64             `gorm:"not null" json:"fileSize"`
	MimeType         string            `json:"mimeType"`
	StorageBucket    string            `gorm:"not null" json:"storageBucket"`
	StorageKey       string            `json:"storageKey"`
	Status           DocumentStatus    `gorm:"type:varchar(20);default:'uploaded';not null" json:"status"`
	Metadata         datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	ProcessingError  string            `gorm:"type:text" json:"processingError,omitempty"`
	ChunkCount       int               `gorm:"default:0" json:"chunkCount"`
	Version          int               `gorm:"default:1" json:"version"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	ProcessedAt      *time.Time        `json:"processedAt,omitempty"`
}

func (Document) TableName() string {
	return "documents"
}

// DocumentChunk is one segment of a document's extracted text.
// (DocumentID, ChunkIndex) is unique per document. The embedding is stored
// as pgvector text ("[f1,f2,...]") and is NULL until the chunk is embedded;
// chunks without an embedding are excluded from similarity search.
type DocumentChunk struct {
	ID         string            `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID string            `gorm:"type:uuid;uniqueIndex:idx_document_chunk;not null" json:"documentId"`
	ChunkIndex int               `gorm:"uniqueIndex:idx_document_chunk;not null" json:"chunkIndex"`
	Content    string            `gorm:"type:text;not null" json:"content"`
	TokenCount int               `json:"tokenCount"`
	PageNumber *int              `json:"pageNumber,omitempty"`
	Metadata   datatypes.JSONMap `gorm:"type:jsonb" json:"metadata"`
	Embedding  *string           `gorm:"type:text" json:"-"`
	CreatedAt  time.Time         `json:"createdAt"`

	Document *Document `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"-"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
