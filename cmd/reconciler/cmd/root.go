package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"fleet-reconciliation-service/cmd/reconciler/config"
	"fleet-reconciliation-service/internal/parsers"
	"fleet-reconciliation-service/pkg/errors"
	"fleet-reconciliation-service/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	initErr error
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "reconciler",
	Short: "Fleet booking reconciliation tool",
	Long: `Reconciler checks the vehicle assigned to each booking in the assignment
ledger (EJAR) against the fleet ledger (INVYGO), and uses the maintenance log
to tell which mismatched vehicles are ready to be switched back.

Sheets are CSV files, http(s) URLs of a published CSV export, or
sheets://<spreadsheet-id>/<range> references read through the Google Sheets
API with --sheets-credentials, --sheets-api-key or application default
credentials. Every flag
can also be set through a FLEETRECON_ environment variable (for example
FLEETRECON_ASSIGNMENTS), a .env file in the working directory, or --config.

Examples:
  reconciler reconcile --assignments bookings.csv --maintenance repairs.csv
  reconciler reconcile -a bookings.csv -m repairs.csv --mismatch-only --output-format json
  reconciler reconcile -a "sheets://1AbC/Bookings!A:I" --sheets-credentials sa.json
  reconciler daily-report -a bookings.csv --date 2024-12-31
  reconciler facets -a bookings.csv --column "Pick-up Branch"
  reconciler version`,
	Version:           getVersionString(),
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupCommand,
}

// Execute runs the root command and returns the process exit code
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return NewCLIErrorHandler(os.Stderr).HandleError(err)
	}
	return 0
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := parsers.DefaultParseConfig()
	flags := rootCmd.PersistentFlags()

	// Global flags
	flags.StringVar(&cfgFile, "config", "", "config file (optional)")
	flags.BoolP(config.KeyVerbose, "v", false, "verbose output")
	flags.String(config.KeyLogFormat, "text", "log format: text or json")

	// Sources
	flags.StringP(config.KeyAssignments, "a", "", "booking sheet CSV file or URL (required)")
	flags.StringP(config.KeyMaintenance, "m", "", "maintenance log CSV file or URL")
	flags.Duration(config.KeyTimeout, defaults.Timeout, "timeout for fetching a URL source")
	flags.Int64(config.KeyMaxBytes, defaults.MaxBytes, "maximum size of a source in bytes")
	flags.String(config.KeyDelimiter, string(defaults.Delimiter), "CSV delimiter: a character, tab, comma, semicolon or pipe")
	flags.String(config.KeySheetsCreds, "", "service account key file for sheets:// sources")
	flags.String(config.KeySheetsAPIKey, "", "API key for sheets:// sources shared by link")
	flags.Bool(config.KeyNormalizedJoin, false, "match fleet identifiers to the maintenance log after normalization")

	// Output
	flags.StringP(config.KeyOutputFormat, "f", "", "output format: console, json, yaml, csv (default: console on a terminal, json otherwise)")
	flags.StringP(config.KeyOutputFile, "o", "", "output file path (default: stdout)")

	// Bind flags to viper
	for _, key := range []string{
		config.KeyVerbose,
		config.KeyLogFormat,
		config.KeyAssignments,
		config.KeyMaintenance,
		config.KeyTimeout,
		config.KeyMaxBytes,
		config.KeyDelimiter,
		config.KeySheetsCreds,
		config.KeySheetsAPIKey,
		config.KeyNormalizedJoin,
		config.KeyOutputFormat,
		config.KeyOutputFile,
	} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}
}

// initConfig reads .env files, ENV variables and the config file.
func initConfig() {
	loadEnvFiles()

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(config.EnvKeyReplacer())
	viper.AutomaticEnv()
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			initErr = errors.ConfigurationError(errors.CodeInvalidConfig, "config", cfgFile, err).
				WithSuggestion("check the config file path and syntax")
			return
		}
		if viper.GetBool(config.KeyVerbose) {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	}
}

// loadEnvFiles loads .env.local and .env. godotenv never overrides a set
// variable, so the environment wins over .env.local, which wins over .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// setupCommand configures logging before any command runs
func setupCommand(_ *cobra.Command, _ []string) error {
	if initErr != nil {
		return initErr
	}

	settings := config.LoadSettings(viper.GetViper())
	log, err := logger.NewLogger(settings.CreateLoggerConfig())
	if err != nil {
		return errors.ConfigurationError(errors.CodeInvalidConfig, config.KeyLogFormat, settings.LogFormat, err)
	}
	logger.SetGlobalLogger(log)
	return nil
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = getVersionString()
}

func getVersionString() string {
	if version == "dev" {
		return fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	}
	return version
}
