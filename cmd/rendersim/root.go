package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/m-lab/rendersim/internal/catalog"
)

var (
	catalogPath string
	debug       bool
)

var rootCmd = &cobra.Command{
	Use:   "rendersim",
	Short: "Simulate and compare web rendering strategies.",
	Long: `rendersim animates the loading timeline of SSR, SSG, ISR, CSR and ` +
		`Streaming SSR side by side, charts their metrics, and benchmarks ` +
		`memoization strategies for a list render.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debug {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "",
		"YAML or JSON scenario catalog (built-in catalog if empty)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.AddCommand(scenariosCmd, simulateCmd, chartCmd, benchCmd)
}

// loadCatalog returns the catalog selected by --catalog.
func loadCatalog() (*catalog.Catalog, error) {
	if catalogPath == "" {
		return catalog.Default(), nil
	}
	return catalog.Load(catalogPath)
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
