package parsers

import (
	"fmt"
	"strings"
	"time"

	"fleet-reconciliation-service/internal/models"
)

// Source names one sheet to ingest
type Source struct {
	// Name identifies the sheet in logs and errors
	Name string `json:"name"`

	// Location is a local file path, an http(s) URL of a CSV export or a
	// sheets://<spreadsheet-id>/<range> reference
	Location string `json:"location"`

	// Required lists header names that must be present
	Required []string `json:"required,omitempty"`
}

// IsRemote reports whether the source is fetched over HTTP
func (s Source) IsRemote() bool {
	lower := strings.ToLower(strings.TrimSpace(s.Location))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// SheetsScheme prefixes locations read through the Google Sheets API
const SheetsScheme = "sheets://"

// IsSheetsAPI reports whether the source is read through the Sheets API
func (s Source) IsSheetsAPI() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(s.Location)), SheetsScheme)
}

// SheetsRange splits a sheets:// location into the spreadsheet ID and the
// A1 range. A missing range reads every column of the first tab.
func (s Source) SheetsRange() (spreadsheetID, readRange string, err error) {
	if !s.IsSheetsAPI() {
		return "", "", fmt.Errorf("%q is not a %s location", s.Location, SheetsScheme)
	}
	ref := strings.TrimSpace(s.Location)[len(SheetsScheme):]
	spreadsheetID, readRange, _ = strings.Cut(ref, "/")
	if spreadsheetID == "" {
		return "", "", fmt.Errorf("missing spreadsheet ID in %q", s.Location)
	}
	if readRange == "" {
		readRange = defaultSheetsRange
	}
	return spreadsheetID, readRange, nil
}

const defaultSheetsRange = "A:ZZ"

// IsSet reports whether a location was given
func (s Source) IsSet() bool {
	return strings.TrimSpace(s.Location) != ""
}

// AssignmentSource returns the source definition of the booking sheet
func AssignmentSource(location string) Source {
	return Source{
		Name:     "assignments",
		Location: location,
		Required: []string{
			models.ColumnBookingNumber.String(),
			models.ColumnEjar.String(),
			models.ColumnInvygo.String(),
		},
	}
}

// MaintenanceSource returns the source definition of the maintenance log
func MaintenanceSource(location string) Source {
	return Source{
		Name:     "maintenance",
		Location: location,
		Required: []string{
			models.ColumnVehicle.String(),
			models.ColumnDateIn.String(),
		},
	}
}

// ParseConfig holds configuration for reading sheets
type ParseConfig struct {
	Delimiter        rune          `json:"delimiter"`
	LazyQuotes       bool          `json:"lazy_quotes"`
	ValidateEncoding bool          `json:"validate_encoding"`
	MaxBytes         int64         `json:"max_bytes"`
	Timeout          time.Duration `json:"timeout"`
	UserAgent        string        `json:"user_agent"`

	// SheetsCredentials is a service account key file for sheets://
	// sources. Without it and without SheetsAPIKey, application default
	// credentials are used.
	SheetsCredentials string `json:"sheets_credentials,omitempty"`
	SheetsAPIKey      string `json:"-"`
}

// DefaultParseConfig returns a configuration suited to spreadsheet CSV
// exports.
func DefaultParseConfig() *ParseConfig {
	return &ParseConfig{
		Delimiter:        ',',
		LazyQuotes:       true,
		ValidateEncoding: true,
		MaxBytes:         32 << 20,
		Timeout:          30 * time.Second,
		UserAgent:        "fleet-reconciliation-service",
	}
}

// Validate checks if the parse configuration is valid
func (pc *ParseConfig) Validate() error {
	switch pc.Delimiter {
	case 0, '"', '\r', '\n':
		return fmt.Errorf("invalid delimiter %q", pc.Delimiter)
	}

	if pc.MaxBytes <= 0 {
		return fmt.Errorf("max bytes must be positive, got %d", pc.MaxBytes)
	}

	if pc.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", pc.Timeout)
	}

	return nil
}
