package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"rag/internal/adapter/gcs"
)

var uploadName string

var uploadCmd = &cobra.Command{
	Use:   "upload <local-file>",
	Short: "Upload a local document into the bucket",
	Long: `Upload copies a local text file into the configured bucket so a later
ingest run can pick it up. The object name defaults to the file's base name
under the configured prefix.

Example:
  rag upload ./manual.txt
  rag upload ./manual.txt --name guides/manual.txt`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	rootCmd.AddCommand(uploadCmd)
	uploadCmd.Flags().StringVar(&uploadName, "name", "", "object name (default: prefix + base name)")
}

func runUpload(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	localPath := args[0]

	name := uploadName
	if name == "" {
		name = cfg.Storage.Prefix + filepath.Base(localPath)
	}

	objStore, err := gcs.NewClient(cfg.GCP.CredentialsFile, cfg.GCP.AccessTokenEnv)
	if err != nil {
		return fmt.Errorf("failed to initialize storage client: %w", err)
	}

	if err := objStore.Upload(cfg.Storage.Bucket, localPath, name); err != nil {
		return err
	}
	fmt.Printf("Uploaded %s to %s/%s\n", localPath, cfg.Storage.Bucket, name)
	return nil
}
