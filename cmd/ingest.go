package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbaops/sql-advisor/internal/ingest"
	"github.com/dbaops/sql-advisor/internal/vectordb"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Load historical incidents into the vector index",
}

var ingestJiraCmd = &cobra.Command{
	Use:   "jira [export.json]",
	Short: "Ingest a Jira JSON export of database incident tickets",
	Long: `Parses a Jira export, splits each ticket into a summary chunk and
SQL snippets from its description and comments, embeds them, and
stores them in the index.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(vectordb.SourceJira, func() ([]ingest.Fragment, error) {
			return ingest.LoadJiraExport(args[0])
		})
	},
}

var ingestDocsCmd = &cobra.Command{
	Use:   "docs [dir]",
	Short: "Ingest a directory of runbooks and reference documentation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(vectordb.SourceDocumentation, func() ([]ingest.Fragment, error) {
			return ingest.LoadDocsDir(args[0])
		})
	},
}

func init() {
	ingestCmd.AddCommand(ingestJiraCmd)
	ingestCmd.AddCommand(ingestDocsCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(sourceType vectordb.SourceType, load func() ([]ingest.Fragment, error)) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	frags, err := load()
	if err != nil {
		return err
	}
	if len(frags) == 0 {
		fmt.Println("Nothing to ingest.")
		return nil
	}

	provider := newEmbeddingProvider(cfg)
	index, cleanup, err := openIndex(cfg, provider)
	if err != nil {
		return err
	}
	defer cleanup()

	ing := ingest.NewIngester(provider, index)
	ing.Progress = true

	stats, err := ing.Run(ctx, sourceType, frags)
	if err != nil {
		return fmt.Errorf("ingesting: %w", err)
	}

	fmt.Printf("Ingested %d fragments", stats.Embedded)
	if stats.Skipped > 0 {
		fmt.Printf(" (%d skipped)", stats.Skipped)
	}
	fmt.Println()
	return nil
}
