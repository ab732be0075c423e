// Package reporter renders reconciled views, daily reports and facet
// listings.
//
// Supported output formats:
//   - Console: tables for terminal display
//   - JSON: structured data for programmatic consumption
//   - YAML: structured data for people and config tooling
//   - CSV: the rows of the current view, for spreadsheet applications
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(&reporter.ReportConfig{
//		Format:         reporter.DetectFormat(""),
//		IncludeResults: true,
//	})
//	err = generator.GenerateReport(snapshot.View(state), os.Stdout)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"fleet-reconciliation-service/internal/analytics"
	"fleet-reconciliation-service/internal/matcher"
	"fleet-reconciliation-service/internal/models"
	"fleet-reconciliation-service/internal/reconciler"

	"github.com/goccy/go-yaml"
	"github.com/jszwec/csvutil"
	"github.com/mattn/go-isatty"
)

// OutputFormat represents the supported report output formats.
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatYAML    OutputFormat = "yaml"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatYAML, FormatCSV:
		return true
	default:
		return false
	}
}

// ParseFormat converts a string to an OutputFormat. "table" is accepted as
// an alias of console and the empty string is returned unchanged.
func ParseFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	if format == "table" {
		return FormatConsole, nil
	}
	if format == "" || format.IsValid() {
		return format, nil
	}
	return "", fmt.Errorf("invalid format %q: must be one of: console, json, yaml, csv", s)
}

// DetectFormat returns the explicit format when one is given. Otherwise it
// picks console for a terminal and JSON for pipes and redirects.
func DetectFormat(explicit string) OutputFormat {
	if format, err := ParseFormat(explicit); err == nil && format != "" {
		return format
	}
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return FormatConsole
	}
	return FormatJSON
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format" mapstructure:"format"`

	// Destination file; empty means the writer passed to the generator
	OutputFile string `json:"output_file" mapstructure:"output_file"`

	IncludeResults    bool `json:"include_results" mapstructure:"include_results"`
	IncludeDuplicates bool `json:"include_duplicates" mapstructure:"include_duplicates"`
	IncludeOther      bool `json:"include_other" mapstructure:"include_other"`

	// MaxRows caps the records printed or exported; 0 means no limit
	MaxRows int `json:"max_rows" mapstructure:"max_rows"`

	CSVDelimiter rune `json:"csv_delimiter" mapstructure:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers" mapstructure:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:            FormatConsole,
		IncludeResults:    true,
		IncludeDuplicates: true,
		IncludeOther:      true,
		MaxRows:           0,
		CSVDelimiter:      ',',
		CSVHeaders:        true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.MaxRows < 0 {
		return fmt.Errorf("max rows cannot be negative, got %d", c.MaxRows)
	}
	if c.CSVDelimiter == 0 || c.CSVDelimiter == '"' || c.CSVDelimiter == '\n' || c.CSVDelimiter == '\r' {
		return fmt.Errorf("invalid CSV delimiter %q", c.CSVDelimiter)
	}
	return nil
}

// ReportGenerator generates reports in various formats
type ReportGenerator struct {
	config *ReportConfig
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
	}, nil
}

// GenerateReport writes the report of a reconciled view
func (rg *ReportGenerator) GenerateReport(view *reconciler.ViewResult, writer io.Writer) error {
	if view == nil || view.Summary == nil {
		return fmt.Errorf("view result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleReport(view, writer)
	case FormatJSON:
		return writeJSON(writer, rg.viewDocument(view))
	case FormatYAML:
		return writeYAML(writer, rg.viewDocument(view))
	case FormatCSV:
		return rg.writeCSV(writer, ResultRows(rg.limit(view.Results)), ResultRow{})
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// GenerateDailyReport writes a daily report. The CSV form lists the cars
// booked on the selected date.
func (rg *ReportGenerator) GenerateDailyReport(daily *analytics.Daily, writer io.Writer) error {
	if daily == nil {
		return fmt.Errorf("daily report cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleDaily(daily, writer)
	case FormatJSON:
		return writeJSON(writer, daily)
	case FormatYAML:
		return writeYAML(writer, daily)
	case FormatCSV:
		return rg.writeCSV(writer, daily.Booked, analytics.BookedCar{})
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// GenerateFacets writes the facet options of each column
func (rg *ReportGenerator) GenerateFacets(facets map[models.Column][]string, writer io.Writer) error {
	docs := facetDocuments(facets)

	switch rg.config.Format {
	case FormatConsole:
		return rg.generateConsoleFacets(docs, writer)
	case FormatJSON:
		return writeJSON(writer, docs)
	case FormatYAML:
		return writeYAML(writer, docs)
	case FormatCSV:
		return rg.writeCSV(writer, facetRows(docs), FacetRow{})
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func writeJSON(writer io.Writer, data any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func writeYAML(writer io.Writer, data any) error {
	out, err := yaml.MarshalWithOptions(data,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = writer.Write(out)
	return err
}

// writeCSV encodes a slice of structs. header is a zero value of the
// element type so that an empty slice still yields a header line.
func (rg *ReportGenerator) writeCSV(writer io.Writer, rows any, header any) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter

	encoder := csvutil.NewEncoder(csvWriter)
	encoder.AutoHeader = rg.config.CSVHeaders

	if rg.config.CSVHeaders {
		if err := encoder.EncodeHeader(header); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}
	if err := encoder.Encode(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func (rg *ReportGenerator) limit(results []*matcher.Result) []*matcher.Result {
	if rg.config.MaxRows > 0 && len(results) > rg.config.MaxRows {
		return results[:rg.config.MaxRows]
	}
	return results
}

// GetConfiguration returns the current report configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}
