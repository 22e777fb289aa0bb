package main

import (
	"os"

	"github.com/dbaops/sql-advisor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
