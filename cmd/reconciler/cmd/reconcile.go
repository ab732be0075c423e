package cmd

import (
	"context"
	"fmt"
	"os"

	"fleet-reconciliation-service/cmd/reconciler/config"
	"fleet-reconciliation-service/internal/parsers"
	"fleet-reconciliation-service/internal/reconciler"
	"fleet-reconciliation-service/internal/reporter"
	"fleet-reconciliation-service/pkg/errors"
	"fleet-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the reconcile command
var (
	searchTerm   string
	facetFlags   []string
	mismatchOnly bool
	readyOnly    bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile bookings against the fleet ledger and maintenance log",
	Long: `Reconcile classifies every booking, flags bookings whose EJAR and INVYGO
vehicles disagree, marks mismatches whose repair is closed in the maintenance
log as ready to switch back, and flags numeric bookings that occur more than
once in the view.

A search term matches any field of a record and replaces facet selections.
--ready-only is ignored while searching.

Examples:
  # Full view of both sheets
  reconciler reconcile --assignments bookings.csv --maintenance repairs.csv

  # Pending mismatches at two branches, as JSON
  reconciler reconcile -a bookings.csv -m repairs.csv --mismatch-only \
    --facet "Pick-up Branch=Airport" --facet "Pick-up Branch=Downtown" -f json

  # Search a published sheet export and save the rows as CSV
  reconciler reconcile -a "https://docs.example.com/export?format=csv" \
    --search "ABC 123" -f csv -o view.csv`,

	RunE: runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	reconcileCmd.Flags().StringVarP(&searchTerm, "search", "s", "", "free-text search across all fields")
	reconcileCmd.Flags().StringArrayVar(&facetFlags, "facet", nil, `facet selection as "Column=value", repeatable`)
	reconcileCmd.Flags().BoolVar(&mismatchOnly, "mismatch-only", false, "only show EJAR/INVYGO mismatches")
	reconcileCmd.Flags().BoolVar(&readyOnly, "ready-only", false, "only show mismatches ready to switch back")
	reconcileCmd.Flags().Int(config.KeyMaxRows, 0, "maximum number of records in the report (0 for all)")

	_ = viper.BindPFlag(config.KeyMaxRows, reconcileCmd.Flags().Lookup(config.KeyMaxRows))
}

func runReconcile(cmd *cobra.Command, args []string) error {
	settings := config.LoadSettings(viper.GetViper())
	log := logger.GetGlobalLogger().WithComponent("cli")

	state, err := config.CreateFilterState(config.FilterOptions{
		Search:       searchTerm,
		Facets:       facetFlags,
		MismatchOnly: mismatchOnly,
		ReadyOnly:    readyOnly,
	})
	if err != nil {
		return err
	}

	reportConfig, err := settings.CreateReportConfig()
	if err != nil {
		return err
	}

	snapshot, err := loadSnapshot(cmd.Context(), settings, log)
	if err != nil {
		return err
	}

	view := snapshot.View(state)
	log.WithFields(logger.Fields{
		"records":    len(view.Results),
		"mismatches": view.Summary.ViewMismatches,
		"ready":      view.Summary.ViewReadyToSwitchBack,
		"duplicates": view.Summary.ViewDuplicates,
	}).Info("View computed")

	generator, err := reporter.NewSafeReportGenerator(reportConfig, log)
	if err != nil {
		return err
	}
	return generator.WriteView(view, cmd.OutOrStdout())
}

// loadSnapshot ingests the configured sheets. Skipped rows are summarised
// on stderr.
func loadSnapshot(ctx context.Context, settings *config.Settings, log logger.Logger) (*reconciler.Snapshot, error) {
	request, err := settings.CreateRequest()
	if err != nil {
		return nil, err
	}

	parseConfig, err := settings.CreateParseConfig()
	if err != nil {
		return nil, err
	}

	reader, err := parsers.NewSheetReader(parseConfig, nil, log)
	if err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "parse_config", parseConfig, err)
	}

	service, err := reconciler.NewReconciliationService(reader, settings.CreateMatchingConfig(), log)
	if err != nil {
		return nil, err
	}

	snapshot, err := service.Load(ctx, request)
	if err != nil {
		return nil, err
	}

	if len(snapshot.Issues) > 0 {
		fmt.Fprintln(os.Stderr, errors.FormatIssuesForUser(snapshot.Issues, 5))
	}

	return snapshot, nil
}
