package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbaops/sql-advisor/internal/advisor"
)

var adviseCmd = &cobra.Command{
	Use:   "advise [sql]",
	Short: "Analyze a SQL query for risk and suggest a rewrite",
	Long: `Fingerprints the query, scores it against known anti-patterns,
pulls similar historical incidents from the index, and proposes a
rewrite. Reads the query from stdin when no argument is given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdvise,
}

func init() {
	adviseCmd.Flags().Bool("json", false, "output the advisory as JSON")
	rootCmd.AddCommand(adviseCmd)
}

func runAdvise(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	jsonOutput, _ := cmd.Flags().GetBool("json")

	sql, err := readQuery(args)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	adv, cleanup, err := buildAdvisor(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := adv.Advise(ctx, sql)
	if err != nil {
		return fmt.Errorf("analyzing query: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printAdvisory(result)
	return nil
}

func readQuery(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("reading query from stdin: %w", err)
	}
	return string(data), nil
}

func printAdvisory(r advisor.Result) {
	fmt.Printf("Risk: %d/100 (%s)\n", r.RiskScore, r.RiskLevel)
	fmt.Printf("Reason: %s\n", r.Reason)
	if r.Analysis != "" {
		fmt.Printf("Analysis: %s\n", r.Analysis)
	}
	if r.SuggestedFix != "" {
		fmt.Printf("Suggested fix: %s\n", r.SuggestedFix)
	}

	if len(r.Findings) > 1 {
		fmt.Println("\nAdditional findings:")
		for _, f := range r.Findings[1:] {
			fmt.Printf("  - [%s] %s\n", f.Severity, f.Message)
		}
	}

	if len(r.SimilarIssues) > 0 {
		fmt.Println("\nSimilar incidents:")
		for _, s := range r.SimilarIssues {
			fmt.Printf("  %s (%.0f%% match): %s\n", s.ID, s.Similarity*100, truncate(s.Title, 70))
			if s.Analysis != "" {
				fmt.Printf("    %s\n", truncate(s.Analysis, 120))
			}
		}
	}

	if r.Rewrite.Changed() {
		fmt.Println("\nSuggested rewrite:")
		fmt.Printf("  %s\n", r.Rewrite.RewrittenSQL)
		if verbose {
			fmt.Printf("  transformations: %s\n", strings.Join(r.Rewrite.Transformations, ", "))
		}
	}
	if r.Rewrite.SuggestedDDL != "" {
		fmt.Printf("\nSuggested index:\n  %s\n", r.Rewrite.SuggestedDDL)
	}

	fmt.Printf("\nConfidence: %.0f%%", r.Confidence*100)
	if r.Cached {
		fmt.Print(" (cached)")
	}
	fmt.Println()

	if verbose {
		fmt.Printf("Fingerprint: %s\n", r.Fingerprint)
		if len(r.Degraded) > 0 {
			fmt.Printf("Degraded stages: %s\n", strings.Join(r.Degraded, ", "))
		}
	}
}
