package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fleet-reconciliation-service/internal/analytics"
	"fleet-reconciliation-service/internal/reporter"
	"fleet-reconciliation-service/pkg/errors"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "..", "testdata", name)
}

// resetFlags puts every flag back to its default so runs do not leak
// into each other through the package-level command tree.
func resetFlags(t *testing.T) {
	t.Helper()

	reset := func(f *pflag.Flag) {
		if f.Value.Type() != "stringArray" {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	}

	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}

	facetFlags = nil
	facetColumns = nil
	cfgFile = ""
	initErr = nil
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}

func sourceArgs(args ...string) []string {
	return append(args,
		"--assignments", fixture("assignments.csv"),
		"--maintenance", fixture("maintenance.csv"),
	)
}

func TestCommandHelp(t *testing.T) {
	tests := []struct {
		name     string
		cmd      *cobra.Command
		expected []string
	}{
		{
			name:     "root",
			cmd:      rootCmd,
			expected: []string{"reconciler reconcile", "FLEETRECON_", "daily-report"},
		},
		{
			name:     "reconcile",
			cmd:      reconcileCmd,
			expected: []string{"--mismatch-only", "--facet", "Pick-up Branch=Airport"},
		},
		{
			name:     "daily-report",
			cmd:      dailyCmd,
			expected: []string{"--date 2024-12-31", "DD-MM-YYYY"},
		},
		{
			name:     "facets",
			cmd:      facetsCmd,
			expected: []string{"--column"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEmpty(t, tt.cmd.Short)
			for _, want := range tt.expected {
				assert.Contains(t, tt.cmd.Long, want)
			}
		})
	}
}

func TestCommandFlags(t *testing.T) {
	persistent := rootCmd.PersistentFlags()
	for _, name := range []string{"config", "verbose", "log-format", "assignments", "maintenance",
		"timeout", "max-bytes", "delimiter", "sheets-credentials", "sheets-api-key", "normalized-join",
		"output-format", "output-file"} {
		assert.NotNil(t, persistent.Lookup(name), "missing persistent flag %s", name)
	}

	assert.Equal(t, "a", persistent.Lookup("assignments").Shorthand)
	assert.Equal(t, "m", persistent.Lookup("maintenance").Shorthand)
	assert.Equal(t, "f", persistent.Lookup("output-format").Shorthand)
	assert.Equal(t, "o", persistent.Lookup("output-file").Shorthand)

	assert.NotNil(t, reconcileCmd.Flags().Lookup("search"))
	assert.NotNil(t, reconcileCmd.Flags().Lookup("ready-only"))
	assert.NotNil(t, reconcileCmd.Flags().Lookup("max-rows"))
	assert.Equal(t, "today", dailyCmd.Flags().Lookup("date").DefValue)
}

func TestReconcileCommand_JSON(t *testing.T) {
	out, err := execute(t, sourceArgs("reconcile", "-f", "json")...)
	require.NoError(t, err)

	var doc reporter.ViewDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	require.NotNil(t, doc.Summary)
	assert.Equal(t, 8, doc.Summary.Total)
	assert.Equal(t, 4, doc.Summary.Numeric)
	assert.Equal(t, 2, doc.Summary.Mismatches)
	assert.Equal(t, 1, doc.Summary.ReadyToSwitchBack)
	assert.Len(t, doc.Rows, 8)

	require.Len(t, doc.Duplicates, 1)
	assert.Equal(t, "DUP_4521", doc.Duplicates[0].GroupID)
}

func TestReconcileCommand_MismatchOnly(t *testing.T) {
	out, err := execute(t, sourceArgs("reconcile", "-f", "json", "--mismatch-only")...)
	require.NoError(t, err)

	var doc reporter.ViewDocument
	require.NoError(t, json.Unmarshal([]byte(out), &doc))

	assert.True(t, doc.Filters.MismatchOnly)
	require.Len(t, doc.Rows, 2)
	assert.Equal(t, "4522", doc.Rows[0].BookingNumber)
	assert.Equal(t, "4523", doc.Rows[1].BookingNumber)
}

func TestReconcileCommand_FacetCSV(t *testing.T) {
	out, err := execute(t, sourceArgs("reconcile", "-f", "csv", "--facet", "pick-up branch=airport")...)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.True(t, strings.HasPrefix(lines[0], "index,contract_number,booking_number"))
	for _, line := range lines[1:] {
		assert.Contains(t, line, "Airport")
	}
}

func TestReconcileCommand_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "view.json")

	out, err := execute(t, sourceArgs("reconcile", "-o", path)...)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data), "output file defaults to JSON")
}

func TestReconcileCommand_Errors(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		category errors.ErrorCategory
		code     errors.ErrorCode
	}{
		{
			name:     "missing assignments",
			args:     []string{"reconcile", "-f", "json"},
			category: errors.CategoryConfiguration,
			code:     errors.CodeMissingConfig,
		},
		{
			name:     "search with facets",
			args:     sourceArgs("reconcile", "-f", "json", "--search", "camry", "--facet", "Model=camry"),
			category: errors.CategoryConfiguration,
			code:     errors.CodeConfigConflict,
		},
		{
			name:     "unknown format",
			args:     sourceArgs("reconcile", "-f", "xml"),
			category: errors.CategoryReport,
			code:     errors.CodeUnsupportedFormat,
		},
		{
			name:     "missing file",
			args:     []string{"reconcile", "-f", "json", "-a", fixture("missing.csv")},
			category: errors.CategoryFile,
			code:     errors.CodeFileNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)

			re, ok := errors.AsReconcilerError(err)
			require.True(t, ok, "expected ReconcilerError, got %T", err)
			assert.Equal(t, tt.category, re.Category)
			assert.Equal(t, tt.code, re.Code)
		})
	}
}

func TestDailyReportCommand(t *testing.T) {
	out, err := execute(t, sourceArgs("daily-report", "-f", "json", "--date", "2024-12-31")...)
	require.NoError(t, err)

	var daily analytics.Daily
	require.NoError(t, json.Unmarshal([]byte(out), &daily))

	assert.EqualValues(t, "2024-12-31", daily.SelectedDate)
	assert.Equal(t, 4, daily.TotalCars)
	assert.Len(t, daily.Booked, 4)
	require.NotEmpty(t, daily.ModelCounts)
	assert.Equal(t, "Camry", daily.ModelCounts[0].Model)
}

func TestDailyReportCommand_BadDate(t *testing.T) {
	_, err := execute(t, sourceArgs("daily-report", "-f", "json", "--date", "31/12/2024")...)
	require.Error(t, err)

	re, ok := errors.AsReconcilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryConfiguration, re.Category)
}

func TestFacetsCommand(t *testing.T) {
	out, err := execute(t, sourceArgs("facets", "-f", "json", "--column", "pick-up branch")...)
	require.NoError(t, err)

	var docs []reporter.FacetDocument
	require.NoError(t, json.Unmarshal([]byte(out), &docs))

	require.Len(t, docs, 1)
	assert.Equal(t, "Pick-up Branch", docs[0].Column)
	assert.Equal(t, []string{"airport", "downtown"}, docs[0].Options)
}

func TestFacetsCommand_UnknownColumn(t *testing.T) {
	_, err := execute(t, sourceArgs("facets", "-f", "json", "--column", "Odometer")...)
	require.Error(t, err)

	re, ok := errors.AsReconcilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeInvalidConfig, re.Code)
}

func TestVersionCommand(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2025-01-01")
	t.Cleanup(func() { SetVersionInfo("dev", "unknown", "unknown") })

	out, err := execute(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "reconciler version 1.2.3")
	assert.Contains(t, out, "commit: abc123")
	assert.Contains(t, out, "platform: ")
	assert.Equal(t, "1.2.3", getVersionString())
}

func TestCLIErrorHandler(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		exitCode int
		expected []string
	}{
		{
			name:     "nil",
			err:      nil,
			exitCode: 0,
		},
		{
			name: "configuration error",
			err: errors.ConfigurationError(errors.CodeMissingConfig, "assignments", "", nil).
				WithSuggestion("pass --assignments"),
			exitCode: 4,
			expected: []string{"Error:", "Suggestion: pass --assignments", "setting"},
		},
		{
			name:     "parse error",
			err:      errors.ParseError(errors.CodeMissingColumn, "bookings.csv", 0, nil),
			exitCode: 3,
			expected: []string{"Error:", "bookings.csv"},
		},
		{
			name:     "wrapped file error",
			err:      fmt.Errorf("load: %w", errors.FileError(errors.CodeFileNotFound, "x.csv", os.ErrNotExist)),
			exitCode: 2,
			expected: []string{"x.csv"},
		},
		{
			name:     "permission error",
			err:      fmt.Errorf("open x.csv: permission denied"),
			exitCode: 2,
			expected: []string{"Permission denied"},
		},
		{
			name:     "generic error",
			err:      fmt.Errorf("unknown flag: --bogus"),
			exitCode: 1,
			expected: []string{"unknown flag: --bogus", "--help"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			handler := NewCLIErrorHandler(&out)

			assert.Equal(t, tt.exitCode, handler.HandleError(tt.err))
			for _, want := range tt.expected {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func TestCLIErrorHandler_CategoryHelp(t *testing.T) {
	handler := NewCLIErrorHandler(&bytes.Buffer{})

	for _, category := range []errors.ErrorCategory{
		errors.CategoryFile,
		errors.CategoryParse,
		errors.CategoryConfiguration,
		errors.CategoryNetwork,
		errors.CategoryReport,
		errors.CategoryInternal,
	} {
		assert.NotEmpty(t, handler.getCategoryHelp(category), "category %s", category)
	}
	assert.Contains(t, handler.getCategoryHelp(errors.CategoryNetwork), "--timeout")
}
