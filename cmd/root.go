package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ucrm-export/internal/logger"
)

var version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "ucrm-export",
	Short: "UCRM export CLI - billing reports for accounting import",
	Long: `UCRM export CLI turns CRM payments, invoices and credit notes into
accounting reports: a payments overview, a Plus-Minus compatible sales
file and a controls summary, packed into a single archive.

Required environment variables:
  CRM_API_URL - Base URL of the CRM API, e.g. https://crm.example.com/api/v1.0
  CRM_APP_KEY - CRM application key with read access`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		log := logger.WithComponent("root")
		log.Info().
			Str("version", version).
			Msg("UCRM export CLI executed")

		fmt.Println("Use --help to see available commands and options.")
	},
}

func Execute() {
	log := logger.WithComponent("cmd")

	if err := rootCmd.Execute(); err != nil {
		log.Error().
			Err(err).
			Msg("Command execution failed")
		fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")
}
