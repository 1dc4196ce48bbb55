package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.GCP.ProjectID = "rag-prototype-123"
	cfg.Storage.Bucket = "rag-documents"
	cfg.Index.IndexID = "6420681713281662976"
	cfg.Index.IndexEndpointID = "6806478353235705856"
	cfg.Index.DeployedIndexID = "deployed_rag_ind_1"
	return cfg
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Pipeline.ChunkSize != 250 {
		t.Errorf("expected default chunk size 250, got %d", cfg.Pipeline.ChunkSize)
	}
	if cfg.Pipeline.ChunkOverlap != 30 {
		t.Errorf("expected default chunk overlap 30, got %d", cfg.Pipeline.ChunkOverlap)
	}
	if cfg.Pipeline.TopK != 3 {
		t.Errorf("expected default top-k 3, got %d", cfg.Pipeline.TopK)
	}
}

func TestValidateAcceptsFilledConfig(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Errorf("expected valid config to pass validation, got: %v", err)
	}
}

func TestValidateRejectsPlaceholders(t *testing.T) {
	err := DefaultConfig().Validate()
	if err == nil {
		t.Fatal("expected validation error for placeholder config")
	}
	if !strings.Contains(err.Error(), "placeholder") {
		t.Errorf("expected placeholder error, got: %v", err)
	}
}

func TestValidateRejectsMissingValues(t *testing.T) {
	cfg := validConfig()
	cfg.Models.Embedding = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error for missing embedding model")
	}
	if !strings.Contains(err.Error(), "models.embedding") {
		t.Errorf("error should name the missing option, got: %v", err)
	}
}

func TestValidateRejectsBadChunkParams(t *testing.T) {
	cfg := validConfig()
	cfg.Pipeline.ChunkSize = 30
	cfg.Pipeline.ChunkOverlap = 30

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation error when chunk size equals overlap")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Models.Embedding != "text-embedding-005" {
		t.Errorf("expected default embedding model, got %q", cfg.Models.Embedding)
	}
}

func TestLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rag.yaml")

	want := validConfig()
	want.Pipeline.ChunkSize = 100
	want.Pipeline.ChunkOverlap = 10
	if err := want.Save(path); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got.GCP.ProjectID != want.GCP.ProjectID {
		t.Errorf("project id: got %q, want %q", got.GCP.ProjectID, want.GCP.ProjectID)
	}
	if got.Pipeline.ChunkSize != 100 {
		t.Errorf("chunk size: got %d, want 100", got.Pipeline.ChunkSize)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rag.yaml")
	data := "pipeline:\n  chunk_size: 64\n  chunk_overlap: 8\n  top_k: 5\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Pipeline.ChunkSize != 64 || cfg.Pipeline.ChunkOverlap != 8 || cfg.Pipeline.TopK != 5 {
		t.Errorf("unexpected pipeline config: %+v", cfg.Pipeline)
	}
	// Untouched sections keep their defaults.
	if cfg.Models.Completion != "text-bison@002" {
		t.Errorf("expected default completion model, got %q", cfg.Models.Completion)
	}
}
