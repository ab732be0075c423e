// Package config turns command line flags, environment variables and the
// optional config file into the typed configurations of the service.
package config

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"fleet-reconciliation-service/internal/filter"
	"fleet-reconciliation-service/internal/matcher"
	"fleet-reconciliation-service/internal/models"
	"fleet-reconciliation-service/internal/parsers"
	"fleet-reconciliation-service/internal/reconciler"
	"fleet-reconciliation-service/internal/reporter"
	"fleet-reconciliation-service/pkg/errors"
	"fleet-reconciliation-service/pkg/logger"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of every environment variable read by the CLI
const EnvPrefix = "FLEETRECON"

// Keys shared by flags, environment variables and the config file.
const (
	KeyAssignments    = "assignments"
	KeyMaintenance    = "maintenance"
	KeyNormalizedJoin = "normalized-join"
	KeyOutputFormat   = "output-format"
	KeyOutputFile     = "output-file"
	KeyMaxRows        = "max-rows"
	KeyTimeout        = "timeout"
	KeyMaxBytes       = "max-bytes"
	KeyDelimiter      = "delimiter"
	KeySheetsCreds    = "sheets-credentials"
	KeySheetsAPIKey   = "sheets-api-key"
	KeyVerbose        = "verbose"
	KeyLogFormat      = "log-format"
)

// EnvKeyReplacer maps keys to environment variable names, so that
// "max-rows" is read from FLEETRECON_MAX_ROWS
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer("-", "_", ".", "_")
}

// Settings is the merged view of flags, environment and config file
type Settings struct {
	Assignments    string
	Maintenance    string
	NormalizedJoin bool
	OutputFormat   string
	OutputFile     string
	MaxRows        int
	Timeout        time.Duration
	MaxBytes       int64
	Delimiter      string
	SheetsCreds    string
	SheetsAPIKey   string
	Verbose        bool
	LogFormat      string
}

// SetDefaults registers the default value of every key
func SetDefaults(v *viper.Viper) {
	defaults := parsers.DefaultParseConfig()
	v.SetDefault(KeyTimeout, defaults.Timeout)
	v.SetDefault(KeyMaxBytes, defaults.MaxBytes)
	v.SetDefault(KeyDelimiter, string(defaults.Delimiter))
	v.SetDefault(KeyLogFormat, string(logger.TextFormat))
}

// LoadSettings reads the settings from v
func LoadSettings(v *viper.Viper) *Settings {
	return &Settings{
		Assignments:    strings.TrimSpace(v.GetString(KeyAssignments)),
		Maintenance:    strings.TrimSpace(v.GetString(KeyMaintenance)),
		NormalizedJoin: v.GetBool(KeyNormalizedJoin),
		OutputFormat:   v.GetString(KeyOutputFormat),
		OutputFile:     strings.TrimSpace(v.GetString(KeyOutputFile)),
		MaxRows:        v.GetInt(KeyMaxRows),
		Timeout:        v.GetDuration(KeyTimeout),
		MaxBytes:       v.GetInt64(KeyMaxBytes),
		Delimiter:      v.GetString(KeyDelimiter),
		SheetsCreds:    strings.TrimSpace(v.GetString(KeySheetsCreds)),
		SheetsAPIKey:   strings.TrimSpace(v.GetString(KeySheetsAPIKey)),
		Verbose:        v.GetBool(KeyVerbose),
		LogFormat:      v.GetString(KeyLogFormat),
	}
}

// CreateRequest builds the ingestion request. The assignment sheet is
// required; the maintenance log is optional.
func (s *Settings) CreateRequest() (*reconciler.ReconciliationRequest, error) {
	if s.Assignments == "" {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, KeyAssignments, nil, nil).
			WithSuggestion("pass --assignments with a CSV file, URL or sheets:// reference, or set " + EnvPrefix + "_ASSIGNMENTS")
	}
	return &reconciler.ReconciliationRequest{
		Assignments: parsers.AssignmentSource(s.Assignments),
		Maintenance: parsers.MaintenanceSource(s.Maintenance),
	}, nil
}

// CreateParseConfig creates the sheet reader configuration
func (s *Settings) CreateParseConfig() (*parsers.ParseConfig, error) {
	config := parsers.DefaultParseConfig()

	if s.Timeout != 0 {
		config.Timeout = s.Timeout
	}
	if s.MaxBytes != 0 {
		config.MaxBytes = s.MaxBytes
	}
	if s.Delimiter != "" {
		delimiter, err := ParseDelimiter(s.Delimiter)
		if err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, KeyDelimiter, s.Delimiter, err)
		}
		config.Delimiter = delimiter
	}
	config.SheetsCredentials = s.SheetsCreds
	config.SheetsAPIKey = s.SheetsAPIKey

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "parse_config", config, err)
	}
	return config, nil
}

// CreateMatchingConfig creates the reconciliation engine configuration
func (s *Settings) CreateMatchingConfig() *matcher.Config {
	config := matcher.DefaultConfig()
	if s.NormalizedJoin {
		config.JoinMode = matcher.JoinNormalized
	}
	return config
}

// CreateReportConfig creates a report configuration. Without an explicit
// format the output is a console table on a terminal and JSON otherwise;
// a file destination defaults to JSON.
func (s *Settings) CreateReportConfig() (*reporter.ReportConfig, error) {
	format, err := reporter.ParseFormat(s.OutputFormat)
	if err != nil {
		return nil, errors.ReportError(errors.CodeUnsupportedFormat, s.OutputFormat, err)
	}
	if format == "" {
		if s.OutputFile != "" {
			format = reporter.FormatJSON
		} else {
			format = reporter.DetectFormat("")
		}
	}

	config := reporter.DefaultReportConfig()
	config.Format = format
	config.OutputFile = s.OutputFile
	config.MaxRows = s.MaxRows

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "report_config", config, err)
	}
	return config, nil
}

// CreateLoggerConfig creates the logger configuration. Logs always go to
// stderr so that reports on stdout stay machine readable.
func (s *Settings) CreateLoggerConfig() *logger.Config {
	config := logger.DefaultConfig()
	if s.Verbose {
		config = logger.DebugConfig()
	}
	if s.LogFormat != "" {
		config.Format = logger.Format(strings.ToLower(s.LogFormat))
	}
	return config
}

// ParseDelimiter accepts a single character or one of the names "tab",
// "comma", "semicolon" and "pipe".
func ParseDelimiter(value string) (rune, error) {
	switch strings.ToLower(value) {
	case "tab", `\t`:
		return '\t', nil
	case "comma":
		return ',', nil
	case "semicolon":
		return ';', nil
	case "pipe":
		return '|', nil
	}
	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", value)
	}
	r, _ := utf8.DecodeRuneInString(value)
	return r, nil
}

// ParseFacetFlags parses repeated "Column=value" flags. Column names match
// the booking sheet headers case-insensitively; repeating a column adds to
// its selection.
func ParseFacetFlags(flags []string) (map[models.Column][]string, error) {
	facets := make(map[models.Column][]string)
	for _, flag := range flags {
		name, value, ok := strings.Cut(flag, "=")
		if !ok {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "facet", flag,
				fmt.Errorf("expected Column=value"))
		}
		column, err := ResolveColumn(name)
		if err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "facet", flag, err)
		}
		facets[column] = append(facets[column], value)
	}
	return facets, nil
}

// ResolveColumn finds the booking sheet column with the given header name
func ResolveColumn(name string) (models.Column, error) {
	wanted := models.Normalize(name)
	for _, column := range models.AssignmentColumns() {
		if models.Normalize(column.String()) == wanted {
			return column, nil
		}
	}

	names := make([]string, 0, len(models.AssignmentColumns()))
	for _, column := range models.AssignmentColumns() {
		names = append(names, column.String())
	}
	return "", fmt.Errorf("unknown column %q, expected one of: %s", name, strings.Join(names, ", "))
}

// FilterOptions are the filter flags of a command
type FilterOptions struct {
	Search       string
	Facets       []string
	MismatchOnly bool
	ReadyOnly    bool
	Date         string
}

// CreateFilterState builds the filter state. A search term and facets
// cannot be combined since search replaces faceting entirely.
func CreateFilterState(opts FilterOptions) (filter.State, error) {
	state := filter.NewState()

	facets, err := ParseFacetFlags(opts.Facets)
	if err != nil {
		return state, err
	}
	if strings.TrimSpace(opts.Search) != "" && len(facets) > 0 {
		return state, errors.ConfigurationError(errors.CodeConfigConflict, "search", opts.Search,
			fmt.Errorf("--search and --facet cannot be combined")).
			WithSuggestion("use either a search term or facet selections")
	}

	state = state.WithSearch(opts.Search).
		WithMismatchOnly(opts.MismatchOnly).
		WithReadyOnly(opts.ReadyOnly)
	for column, values := range facets {
		state = state.WithFacet(column, values...)
	}

	if opts.Date != "" {
		date, err := ParseReportDate(opts.Date, time.Now())
		if err != nil {
			return state, err
		}
		state = state.WithSelectedDate(date)
	}

	return state, nil
}

// ParseReportDate accepts "today", "yesterday" or a YYYY-MM-DD date and
// returns its calendar key. Relative dates are taken in UTC.
func ParseReportDate(value string, now time.Time) (models.CalendarKey, error) {
	now = now.UTC()
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "today":
		return models.CalendarKey(now.Format("2006-01-02")), nil
	case "yesterday":
		return models.CalendarKey(now.AddDate(0, 0, -1).Format("2006-01-02")), nil
	}

	parsed, err := time.Parse("2006-01-02", strings.TrimSpace(value))
	if err != nil {
		return "", errors.ConfigurationError(errors.CodeInvalidConfig, "date", value, err).
			WithSuggestion("use YYYY-MM-DD, today or yesterday")
	}
	return models.CalendarKey(parsed.Format("2006-01-02")), nil
}
