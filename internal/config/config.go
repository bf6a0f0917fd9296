package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// AppInfo holds basic application information.
type AppInfo struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"` // "development" or "production"
}

// LoggerConfig configures the structured logger.
type LoggerConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Address string `yaml:"address"` // listen address, e.g. ":8080"
}

// AuthConfig configures request authentication.
type AuthConfig struct {
	JwtSecret string `yaml:"jwtSecret"`
}

// PostgresConfig configures the relational store.
type PostgresConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	SSLMode         string `yaml:"sslMode"`
	MaxOpenConns    int    `yaml:"maxOpenConns"`
	MaxIdleConns    int    `yaml:"maxIdleConns"`
	ConnMaxLifetime int    `yaml:"connMaxLifetime"` // seconds
}

// MinIOConfig configures the blob store.
type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Secure    bool   `yaml:"secure"`
}

// KafkaConfig configures the Kafka-backed work queue.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
	GroupID string   `yaml:"groupID"`
}

// RedisConfig configures the Redis-backed work queue.
type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"` // list key used as the job queue
}

// MilvusConfig configures the optional Milvus vector engine.
type MilvusConfig struct {
	Address    string `yaml:"address"`
	Collection string `yaml:"collection"`
}

// DatabaseConfigs groups all backing-store configurations.
type DatabaseConfigs struct {
	Postgres PostgresConfig `yaml:"postgres"`
	MinIO    MinIOConfig    `yaml:"minio"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Milvus   MilvusConfig   `yaml:"milvus"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	Provider string `yaml:"provider"` // "openai", "gemini" or "ollama"
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
	BaseURL  string `yaml:"baseURL"` // used by ollama
}

// LLMConfig selects and configures the answer-synthesis provider.
type LLMConfig struct {
	Provider     string  `yaml:"provider"` // "openai" or "gemini"
	APIKey       string  `yaml:"apiKey"`
	DefaultModel string  `yaml:"defaultModel"`
	Temperature  float64 `yaml:"temperature"`
	MaxTokens    int     `yaml:"maxTokens"`
}

// IngestionConfig tunes the document processing pipeline.
type IngestionConfig struct {
	ChunkSize   int    `yaml:"chunkSize"`   // approximate tokens per chunk
	Overlap     int    `yaml:"overlap"`     // approximate tokens of overlap
	Concurrency int    `yaml:"concurrency"` // parallel worker goroutines
	StepTimeout string `yaml:"stepTimeout"` // timeout per external call, e.g. "60s"
	OCRLanguage string `yaml:"ocrLanguage"` // tesseract language, e.g. "por"
}

// VectorConfig selects the vector search engine.
type VectorConfig struct {
	Engine    string `yaml:"engine"` // "pgvector" or "milvus"
	Dimension int    `yaml:"dimension"`
}

// QueueConfig selects the work-queue backend.
type QueueConfig struct {
	Engine string `yaml:"engine"` // "kafka" or "redis"
}

// UploadConfig constrains document uploads.
type UploadConfig struct {
	MaxFileSize int64 `yaml:"maxFileSize"` // bytes
}

// AppConfig is the root of the YAML configuration file.
type AppConfig struct {
	App       AppInfo         `yaml:"app"`
	Logger    LoggerConfig    `yaml:"logger"`
	Server    ServerConfig    `yaml:"server"`
	Auth      AuthConfig      `yaml:"auth"`
	Databases DatabaseConfigs `yaml:"databases"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Ingestion IngestionConfig `yaml:"ingestion"`
	Vector    VectorConfig    `yaml:"vector"`
	Queue     QueueConfig     `yaml:"queue"`
	Upload    UploadConfig    `yaml:"upload"`
}

// StepTimeoutDuration parses the per-step timeout, defaulting to 60s.
func (c *IngestionConfig) StepTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.StepTimeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// LoadConfig reads and parses the YAML configuration file at path,
// then applies defaults for omitted values.
func LoadConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}
	if c.Ingestion.ChunkSize <= 0 {
		c.Ingestion.ChunkSize = 500
	}
	if c.Ingestion.Overlap <= 0 {
		c.Ingestion.Overlap = 50
	}
	if c.Ingestion.Concurrency <= 0 {
		c.Ingestion.Concurrency = 4
	}
	if c.Ingestion.OCRLanguage == "" {
		c.Ingestion.OCRLanguage = "por"
	}
	if c.Vector.Engine == "" {
		c.Vector.Engine = "pgvector"
	}
	if c.Vector.Dimension <= 0 {
		c.Vector.Dimension = 1536
	}
	if c.Queue.Engine == "" {
		c.Queue.Engine = "kafka"
	}
	if c.Databases.Redis.Key == "" {
		c.Databases.Redis.Key = "document.process"
	}
	if c.Databases.Kafka.Topic == "" {
		c.Databases.Kafka.Topic = "document.process"
	}
	if c.Databases.Kafka.GroupID == "" {
		c.Databases.Kafka.GroupID = "ingestion-workers"
	}
	if c.Databases.Milvus.Collection == "" {
		c.Databases.Milvus.Collection = "document_chunks"
	}
	if c.LLM.DefaultModel == "" {
		c.LLM.DefaultModel = "gpt-4o"
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 1000
	}
	if c.Upload.MaxFileSize <= 0 {
		c.Upload.MaxFileSize = 50 * 1024 * 1024
	}
}
