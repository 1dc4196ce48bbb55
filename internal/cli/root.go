package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"rag/config"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rag",
	Short: "Minimal RAG pipeline over a cloud document bucket",
	Long: `rag ingests text documents from a storage bucket into a vector index
and answers questions grounded in the retrieved passages.

Example usage:
  rag ingest                     # Chunk, embed and index the bucket's documents
  rag query "How does X work?"   # Ask a question against the indexed passages`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		// Reject missing or placeholder options before any collaborator
		// is constructed.
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "rag.yaml", "config file")
}

func GetConfig() *config.Config {
	return cfg
}
