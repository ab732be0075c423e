package cmd

import (
	"fleet-reconciliation-service/cmd/reconciler/config"
	"fleet-reconciliation-service/internal/reporter"
	"fleet-reconciliation-service/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var reportDate string

// dailyCmd represents the daily-report command
var dailyCmd = &cobra.Command{
	Use:   "daily-report",
	Short: "Count the fleet by model and list the cars picked up on a date",
	Long: `Daily-report counts every numeric booking by fleet model and lists the
bookings whose pick-up date falls on the selected day. Pick-up dates are read
as YYYY-MM-DD, DD-MM-YYYY or DD/MM/YYYY; anything after the first space is
ignored.

Examples:
  reconciler daily-report --assignments bookings.csv
  reconciler daily-report -a bookings.csv --date 2024-12-31 -f csv -o booked.csv`,

	RunE: runDailyReport,
}

func init() {
	rootCmd.AddCommand(dailyCmd)

	dailyCmd.Flags().StringVarP(&reportDate, "date", "d", "today", "report date: YYYY-MM-DD, today or yesterday (UTC)")
}

func runDailyReport(cmd *cobra.Command, args []string) error {
	settings := config.LoadSettings(viper.GetViper())
	log := logger.GetGlobalLogger().WithComponent("cli")

	state, err := config.CreateFilterState(config.FilterOptions{Date: reportDate})
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

	daily := snapshot.DailyReport(state)
	log.WithFields(logger.Fields{
		"date":       daily.SelectedDate,
		"total_cars": daily.TotalCars,
		"booked":     len(daily.Booked),
	}).Info("Daily report computed")

	generator, err := reporter.NewSafeReportGenerator(reportConfig, log)
	if err != nil {
		return err
	}
	return generator.WriteDaily(daily, cmd.OutOrStdout())
}
