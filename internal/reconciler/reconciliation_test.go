package reconciler

import (
	"context"
	"path/filepath"
	"testing"

	"fleet-reconciliation-service/internal/filter"
	"fleet-reconciliation-service/internal/matcher"
	"fleet-reconciliation-service/internal/models"
	"fleet-reconciliation-service/internal/parsers"
	"fleet-reconciliation-service/pkg/errors"
	"fleet-reconciliation-service/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", name)
}

func newTestService(t *testing.T, config *matcher.Config) *ReconciliationService {
	t.Helper()
	reader, err := parsers.NewSheetReader(nil, nil, logger.Discard())
	require.NoError(t, err)
	service, err := NewReconciliationService(reader, config, logger.Discard())
	require.NoError(t, err)
	return service
}

func loadFixtures(t *testing.T, config *matcher.Config) *Snapshot {
	t.Helper()
	snapshot, err := newTestService(t, config).Load(context.Background(), &ReconciliationRequest{
		Assignments: parsers.AssignmentSource(fixture("assignments.csv")),
		Maintenance: parsers.MaintenanceSource(fixture("maintenance.csv")),
	})
	require.NoError(t, err)
	return snapshot
}

func TestNewReconciliationService(t *testing.T) {
	_, err := NewReconciliationService(nil, nil, nil)
	assert.Error(t, err)

	reader, err := parsers.NewSheetReader(nil, nil, logger.Discard())
	require.NoError(t, err)

	_, err = NewReconciliationService(reader, &matcher.Config{JoinMode: matcher.JoinMode(7)}, nil)
	require.Error(t, err)
	re, ok := errors.AsReconcilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CategoryConfiguration, re.Category)

	service, err := NewReconciliationService(reader, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, matcher.JoinRaw, service.GetConfiguration().JoinMode)
}

func TestLoad_RequiresAssignments(t *testing.T) {
	_, err := newTestService(t, nil).Load(context.Background(), &ReconciliationRequest{})
	require.Error(t, err)
	re, ok := errors.AsReconcilerError(err)
	require.True(t, ok)
	assert.Equal(t, errors.CodeMissingConfig, re.Code)
}

func TestLoad_Fixtures(t *testing.T) {
	snapshot := loadFixtures(t, nil)

	assert.Equal(t, 8, snapshot.Stats.AssignmentRows)
	assert.Equal(t, 3, snapshot.Stats.MaintenanceRows)
	assert.Equal(t, 2, snapshot.Stats.SkippedRows)
	assert.Len(t, snapshot.Issues, 2)
	assert.Equal(t, matcher.JoinRaw, snapshot.JoinMode)
	require.Len(t, snapshot.Results, 8)

	view := snapshot.View(filter.NewState())
	summary := view.Summary

	assert.Equal(t, 8, summary.Total)
	assert.Equal(t, 4, summary.Numeric)
	assert.Equal(t, 1, summary.Daily)
	assert.Equal(t, 1, summary.Monthly)
	assert.Equal(t, 1, summary.Leasing)
	assert.Equal(t, map[string]int{"staff": 1}, summary.Other)
	assert.Equal(t, 2, summary.Mismatches)
	assert.Equal(t, 1, summary.ReadyToSwitchBack)
	assert.Equal(t, 2, summary.ViewDuplicates)

	require.Len(t, view.Duplicates, 1)
	assert.Equal(t, "DUP_4521", view.Duplicates[0].GroupID)
}

func TestSnapshot_ViewScopesTotalsOnly(t *testing.T) {
	snapshot := loadFixtures(t, nil)

	view := snapshot.View(filter.NewState().WithMismatchOnly(true))
	require.Len(t, view.Results, 2)
	assert.Equal(t, "4522", view.Results[0].Record.BookingNumber)
	assert.Equal(t, matcher.StatusReady, view.Results[0].Status())
	assert.Equal(t, "4523", view.Results[1].Record.BookingNumber)
	assert.Equal(t, matcher.StatusMismatch, view.Results[1].Status())

	assert.Equal(t, 2, view.Summary.Total)
	assert.Equal(t, 4, view.Summary.Numeric)
	assert.Equal(t, 2, view.Summary.Mismatches)
	assert.Equal(t, 0, view.Summary.ViewDuplicates)

	// snapshot results are never flagged by a view
	for _, result := range snapshot.Results {
		assert.False(t, result.IsDuplicateBooking)
	}
}

func TestSnapshot_Search(t *testing.T) {
	snapshot := loadFixtures(t, nil)

	view := snapshot.View(filter.NewState().WithSearch("sara ali").WithReadyOnly(true))
	require.Len(t, view.Results, 2)
	assert.True(t, view.Results[0].IsDuplicateBooking)
	assert.True(t, view.Results[1].IsDuplicateBooking)
}

func TestSnapshot_DailyReport(t *testing.T) {
	snapshot := loadFixtures(t, nil)

	report := snapshot.DailyReport(filter.NewState().WithSelectedDate("2024-12-31"))
	assert.Equal(t, 4, report.TotalCars)
	assert.Len(t, report.Booked, 4)
	assert.Equal(t, "Camry", report.ModelCounts[0].Model)
	assert.Equal(t, 2, report.ModelCounts[0].Count)
}

func TestSnapshot_Facets(t *testing.T) {
	snapshot := loadFixtures(t, nil)

	facets := snapshot.Facets([]models.Column{models.ColumnPickupBranch})
	assert.Equal(t, map[models.Column][]string{
		models.ColumnPickupBranch: {"airport", "downtown"},
	}, facets)

	all := snapshot.Facets(nil)
	assert.Len(t, all, len(models.AssignmentColumns()))
}

func TestReconcile_JoinModes(t *testing.T) {
	assignments := models.NewAssignmentRecords([]models.Row{
		{"Booking Number": "1", "EJAR": "A1", "INVYGO": "xyz 999"},
	})
	maintenance := []*models.MaintenanceRecord{{Vehicle: "XYZ999", DateIn: "2024-01-01"}}

	raw := newTestService(t, nil).Reconcile(assignments, maintenance)
	assert.False(t, raw.Results[0].IsReadyToSwitchBack)

	normalized := newTestService(t, &matcher.Config{JoinMode: matcher.JoinNormalized}).Reconcile(assignments, maintenance)
	assert.True(t, normalized.Results[0].IsReadyToSwitchBack)
	assert.Equal(t, matcher.JoinNormalized, normalized.JoinMode)
}
