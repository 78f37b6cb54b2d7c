// Package main provides the entry point for the CV Studio server and tools.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cv_studio",
	Short: "CV Studio document generation service",
	Long:  "CV Studio turns saved layout templates and candidate data into country-specific recruitment CV documents, via REST API or offline batch runs.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
