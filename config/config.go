package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the RAG pipeline.
type Config struct {
	GCP      GCPConfig      `yaml:"gcp"`
	Storage  StorageConfig  `yaml:"storage"`
	Models   ModelsConfig   `yaml:"models"`
	Index    IndexConfig    `yaml:"index"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// GCPConfig identifies the project and how to authenticate against it.
type GCPConfig struct {
	ProjectID       string `yaml:"project_id"`
	Region          string `yaml:"region"`
	CredentialsFile string `yaml:"credentials_file"`
	AccessTokenEnv  string `yaml:"access_token_env"` // Environment variable holding the bearer token
}

// StorageConfig describes the source document bucket.
type StorageConfig struct {
	Bucket   string   `yaml:"bucket"`
	Prefix   string   `yaml:"prefix"`
	Includes []string `yaml:"includes"` // Glob patterns over object names
}

// ModelsConfig names the embedding and completion models and the fixed
// generation parameters for the completion call.
type ModelsConfig struct {
	Embedding       string  `yaml:"embedding"`
	Completion      string  `yaml:"completion"`
	Temperature     float64 `yaml:"temperature"`
	MaxOutputTokens int     `yaml:"max_output_tokens"`
	TopP            float64 `yaml:"top_p"`
	TopK            int     `yaml:"top_k"`
}

// IndexConfig identifies the deployed vector index and the local passage
// lookup database.
type IndexConfig struct {
	IndexID         string `yaml:"index_id"`
	IndexEndpointID string `yaml:"index_endpoint_id"`
	DeployedIndexID string `yaml:"deployed_index_id"`
	PassageDB       string `yaml:"passage_db"`
}

// PipelineConfig holds the chunking and retrieval settings.
type PipelineConfig struct {
	ChunkSize    int `yaml:"chunk_size"`    // Approximate words per chunk
	ChunkOverlap int `yaml:"chunk_overlap"` // Approximate word overlap between chunks
	TopK         int `yaml:"top_k"`         // Neighbors retrieved per query
}

// DefaultConfig returns the default configuration. Identifier fields are
// placeholders that Validate rejects until filled in.
func DefaultConfig() *Config {
	return &Config{
		GCP: GCPConfig{
			ProjectID:       "YOUR_PROJECT_ID",
			Region:          "us-central1",
			CredentialsFile: "service-account-key.json",
			AccessTokenEnv:  "GCP_ACCESS_TOKEN",
		},
		Storage: StorageConfig{
			Bucket:   "YOUR_BUCKET_NAME",
			Prefix:   "",
			Includes: []string{"**/*.txt"},
		},
		Models: ModelsConfig{
			Embedding:       "text-embedding-005",
			Completion:      "text-bison@002",
			Temperature:     0.2,
			MaxOutputTokens: 1024,
			TopP:            0.8,
			TopK:            40,
		},
		Index: IndexConfig{
			IndexID:         "YOUR_INDEX_ID",
			IndexEndpointID: "YOUR_INDEX_ENDPOINT_ID",
			DeployedIndexID: "YOUR_DEPLOYED_INDEX_ID",
			PassageDB:       ".rag/passages.db",
		},
		Pipeline: PipelineConfig{
			ChunkSize:    250,
			ChunkOverlap: 30,
			TopK:         3,
		},
	}
}

// Load loads configuration from a YAML file, applied over the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Return defaults if no config file
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks that every required option is present and not a
// placeholder. It runs before any collaborator is constructed so a bad
// configuration never reaches the network.
func (c *Config) Validate() error {
	required := map[string]string{
		"gcp.project_id":          c.GCP.ProjectID,
		"gcp.region":              c.GCP.Region,
		"gcp.credentials_file":    c.GCP.CredentialsFile,
		"gcp.access_token_env":    c.GCP.AccessTokenEnv,
		"storage.bucket":          c.Storage.Bucket,
		"models.embedding":        c.Models.Embedding,
		"models.completion":       c.Models.Completion,
		"index.index_id":          c.Index.IndexID,
		"index.index_endpoint_id": c.Index.IndexEndpointID,
		"index.deployed_index_id": c.Index.DeployedIndexID,
		"index.passage_db":        c.Index.PassageDB,
	}

	for key, value := range required {
		if value == "" {
			return fmt.Errorf("missing required configuration: %s", key)
		}
		if strings.Contains(value, "YOUR_") {
			return fmt.Errorf("configuration %s still has a placeholder value: %s", key, value)
		}
	}

	if c.Pipeline.ChunkSize <= 0 {
		return fmt.Errorf("pipeline.chunk_size must be positive, got %d", c.Pipeline.ChunkSize)
	}
	if c.Pipeline.ChunkOverlap < 0 {
		return fmt.Errorf("pipeline.chunk_overlap must not be negative, got %d", c.Pipeline.ChunkOverlap)
	}
	if c.Pipeline.ChunkSize <= c.Pipeline.ChunkOverlap {
		return fmt.Errorf("pipeline.chunk_size (%d) must be greater than pipeline.chunk_overlap (%d)",
			c.Pipeline.ChunkSize, c.Pipeline.ChunkOverlap)
	}
	if c.Pipeline.TopK <= 0 {
		return fmt.Errorf("pipeline.top_k must be positive, got %d", c.Pipeline.TopK)
	}

	return nil
}
