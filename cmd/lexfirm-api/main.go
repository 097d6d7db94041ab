package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "lexfirm-api",
	Short: "LexFirm API - Multi-tenant legal practice management API",
	Long:  `A production-ready Go API for law firms: firm-scoped members and roles, case registry, and document storage with role-based access.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
