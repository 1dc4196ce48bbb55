package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"rag/internal/adapter/store"
	"rag/internal/adapter/vectorsearch"
	"rag/internal/adapter/vertex"
	"rag/internal/port"
	"rag/internal/usecase"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Ask a question against the indexed passages",
	Long: `Query embeds the question, retrieves the nearest passages from the
vector index and asks the completion model to answer using only that
context. When the index returns nothing relevant, the answer falls back to
the model's general knowledge and is labeled as such.

Example:
  rag query "What does the maintenance manual say about venting?"`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	question := args[0]

	fmt.Println("Initializing embedding and completion clients...")
	embedder, err := vertex.NewEmbedder(cfg.GCP.ProjectID, cfg.GCP.Region, cfg.Models.Embedding,
		cfg.GCP.CredentialsFile, cfg.GCP.AccessTokenEnv)
	if err != nil {
		return fmt.Errorf("failed to initialize embedding client: %w", err)
	}
	completer, err := vertex.NewCompleter(cfg.GCP.ProjectID, cfg.GCP.Region, cfg.Models.Completion,
		cfg.GCP.CredentialsFile, cfg.GCP.AccessTokenEnv)
	if err != nil {
		return fmt.Errorf("failed to initialize completion client: %w", err)
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

	params := port.GenerationParams{
		Temperature:     cfg.Models.Temperature,
		MaxOutputTokens: cfg.Models.MaxOutputTokens,
		TopP:            cfg.Models.TopP,
		TopK:            cfg.Models.TopK,
	}
	uc := usecase.NewQueryUseCase(embedder, index, passages, completer, cfg.Pipeline.TopK, params)

	fmt.Printf("Searching for passages relevant to: %s\n\n", question)
	answer, err := uc.Answer(question)
	if err != nil {
		return fmt.Errorf("sorry, could not generate an answer: %w", err)
	}

	if answer.Grounded {
		fmt.Println("--- Answer ---")
	} else {
		fmt.Println("--- Answer (General Knowledge: no relevant documents found) ---")
	}
	fmt.Println(answer.Text)

	if len(answer.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, src := range answer.Sources {
			fmt.Printf("- %s\n", src)
		}
	}
	return nil
}
