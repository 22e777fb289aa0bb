package cmd

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/dbaops/sql-advisor/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize sqladvisor configuration with an interactive wizard",
	Long: `Runs an interactive wizard to configure the advisory pipeline and
generates a .sqladvisor.yml file. Without a terminal (CI, piped
stdin) it writes the defaults instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil {
			return fmt.Errorf("%s already exists", cfgFile)
		}

		if !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()) {
			if err := config.DefaultConfig().Save(cfgFile); err != nil {
				return err
			}
			fmt.Printf("Wrote %s with defaults\n", cfgFile)
			return nil
		}

		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
