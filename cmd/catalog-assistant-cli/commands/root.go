// Package commands implements the catalog assistant CLI.
package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/shopsense-ai/catalog-assistant/cmd/catalog-assistant-cli/ui"
	"github.com/shopsense-ai/catalog-assistant/internal/config"
	"github.com/shopsense-ai/catalog-assistant/internal/observability"
)

var (
	cfgFile string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "catalog-assistant-cli",
	Short: "Catalog Assistant - dataset loading and index sync",
	Long: `The catalog assistant CLI loads the product dataset into the catalog
store and syncs the catalog into the vector similarity index that backs
the chat API.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		ui.Init(noColor, verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves the configuration the same way the API server does.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile)
}

// newCLILogger builds a console logger; verbose turns debug logging on.
func newCLILogger(cfg *config.Config) *observability.Logger {
	level := cfg.Observability.LogLevel
	if verbose {
		level = "debug"
	}
	return observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      "console",
		ServiceName: "catalog-assistant-cli",
	})
}
