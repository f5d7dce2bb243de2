package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/gradebook/core/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gradebook",
		Short: "Gradebook API Server",
		Long:  `Gradebook is a student information management service: a CSV-backed student record store behind an authenticated HTTP API, plus raw-data ingestion into postgres staging tables.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewIngestCommand())
	rootCmd.AddCommand(commands.NewHashPasswordCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
