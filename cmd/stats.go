package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dbaops/sql-advisor/internal/vectordb"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show vector index statistics",
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	provider := newEmbeddingProvider(cfg)
	index, cleanup, err := openIndex(cfg, provider)
	if err != nil {
		return err
	}
	defer cleanup()

	count, err := index.Count(ctx)
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}

	fmt.Printf("Backend:    %s\n", cfg.IndexBackend)
	fmt.Printf("Dimensions: %d\n", index.Dimensions())
	fmt.Printf("Documents:  %d\n", count)

	if sq, ok := index.(*vectordb.SQLiteIndex); ok {
		byType, err := sq.CountByType(ctx)
		if err != nil {
			return fmt.Errorf("counting by type: %w", err)
		}
		for _, st := range []vectordb.SourceType{vectordb.SourceJira, vectordb.SourceDocumentation} {
			fmt.Printf("  %-14s %d\n", string(st)+":", byType[st])
		}
	}
	return nil
}
