package cmd

import (
	"fleet-reconciliation-service/cmd/reconciler/config"
	"fleet-reconciliation-service/internal/models"
	"fleet-reconciliation-service/internal/reporter"
	"fleet-reconciliation-service/pkg/errors"
	"fleet-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var facetColumns []string

// facetsCmd represents the facets command
var facetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "List the values that can be used with --facet",
	Long: `Facets lists the distinct normalized values of booking sheet columns over
the whole sheet. Without --column every column is listed.

Examples:
  reconciler facets --assignments bookings.csv
  reconciler facets -a bookings.csv --column "Pick-up Branch" --column Model`,

	RunE: runFacets,
}

func init() {
	rootCmd.AddCommand(facetsCmd)

	facetsCmd.Flags().StringArrayVar(&facetColumns, "column", nil, "column to list, repeatable")
}

func runFacets(cmd *cobra.Command, args []string) error {
	settings := config.LoadSettings(viper.GetViper())
	log := logger.GetGlobalLogger().WithComponent("cli")

	var columns []models.Column
	for _, name := range facetColumns {
		column, err := config.ResolveColumn(name)
		if err != nil {
			return errors.ConfigurationError(errors.CodeInvalidConfig, "column", name, err)
		}
		columns = append(columns, column)
	}

	reportConfig, err := settings.CreateReportConfig()
	if err != nil {
		return err
	}

	snapshot, err := loadSnapshot(cmd.Context(), settings, log)
	if err != nil {
		return err
	}

	generator, err := reporter.NewSafeReportGenerator(reportConfig, log)
	if err != nil {
		return err
	}
	return generator.WriteFacets(snapshot.Facets(columns), cmd.OutOrStdout())
}
