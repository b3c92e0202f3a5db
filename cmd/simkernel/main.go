package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	schemaDir  string
	worldFile  string
	logLevel   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "simkernel",
	Short: "Turn-based colony simulation kernel",
	Long:  "simkernel drives an ECS-backed world: schema-validated components, a job board and job engine, a map index with pathfinding, and an event bus",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&schemaDir, "schema-dir", "assets/schemas", "directory of component schema definitions")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	registerSchemaCommand(rootCmd)
	registerWorldCommand(rootCmd)
	registerServeCommand(rootCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
