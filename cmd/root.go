package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "sqladvisor",
	Short: "Risk analysis and rewrite suggestions for SQL queries",
	Long: `SQL Advisor fingerprints queries, scores them against known
anti-patterns, retrieves similar historical incidents from a vector
index of past tickets, and proposes safer rewrites.`,
}

func Execute() error {
	_ = godotenv.Load()
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".sqladvisor.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
