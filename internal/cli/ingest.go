package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"rag/internal/adapter/gcs"
	"rag/internal/adapter/store"
	"rag/internal/adapter/vectorsearch"
	"rag/internal/adapter/vertex"
	"rag/internal/usecase"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Chunk, embed and index the bucket's documents",
	Long: `Ingest discovers text documents in the configured bucket, splits them
into overlapping word-based chunks, generates embeddings and upserts the
resulting records into the vector index in one batch. Full passage text is
kept in a local lookup database so queries can cite real context.

A document that cannot be fetched, chunked or embedded is skipped; the rest
of the batch continues.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	fmt.Println("Initializing storage client...")
	objStore, err := gcs.NewClient(cfg.GCP.CredentialsFile, cfg.GCP.AccessTokenEnv)
	if err != nil {
		return fmt.Errorf("failed to initialize storage client: %w", err)
	}

	fmt.Println("Initializing embedding client...")
	embedder, err := vertex.NewEmbedder(cfg.GCP.ProjectID, cfg.GCP.Region, cfg.Models.Embedding,
		cfg.GCP.CredentialsFile, cfg.GCP.AccessTokenEnv)
	if err != nil {
		return fmt.Errorf("failed to initialize embedding client: %w", err)
	}

	fmt.Println("Initializing vector index client...")
	index, err := vectorsearch.NewClient(vectorsearch.Config{
		ProjectID:       cfg.GCP.ProjectID,
		Region:          cfg.GCP.Region,
		IndexID:         cfg.Index.IndexID,
		IndexEndpointID: cfg.Index.IndexEndpointID,
		DeployedIndexID: cfg.Index.DeployedIndexID,
		CredentialsFile: cfg.GCP.CredentialsFile,
		TokenEnv:        cfg.GCP.AccessTokenEnv,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize vector index client: %w", err)
	}

	passages, err := store.NewBoltPassageStore(cfg.Index.PassageDB)
	if err != nil {
		return fmt.Errorf("failed to open passage store: %w", err)
	}
	defer passages.Close()

	uc := usecase.NewIngestUseCase(objStore, embedder, index, passages,
		cfg.Storage.Bucket, cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap)

	fmt.Printf("Listing documents in bucket %s (prefix %q)...\n", cfg.Storage.Bucket, cfg.Storage.Prefix)
	docs, err := uc.DiscoverDocuments(cfg.Storage.Prefix, cfg.Storage.Includes)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Println("No documents found to ingest.")
		return nil
	}
	fmt.Printf("Found %d document(s) to process.\n", len(docs))

	bar := progressbar.NewOptions(len(docs),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Ingesting[reset]"),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
	uc.SetProgress(func(processed, total int, doc string) {
		bar.Set(processed)
	})

	summary := uc.Ingest(docs)

	fmt.Printf("\nIngest complete:\n")
	fmt.Printf("  Documents processed: %d\n", summary.DocsProcessed)
	fmt.Printf("  Documents skipped:   %d\n", summary.DocsSkipped)
	fmt.Printf("  Chunks embedded:     %d\n", summary.ChunksEmbedded)
	fmt.Printf("  Records upserted:    %d\n", summary.RecordsUpserted)

	if len(summary.Skips) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, s := range summary.Skips {
			fmt.Printf("  - %s\n", s)
		}
	}

	if !summary.UpsertOK {
		return fmt.Errorf("index upsert failed: %s", summary.UpsertError)
	}
	fmt.Println("\nAll records upserted to the vector index.")
	return nil
}
