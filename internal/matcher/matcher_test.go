package matcher

import (
	"testing"

	"fleet-reconciliation-service/internal/classifier"
	"fleet-reconciliation-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func booking(booking, ejar, invygo string) *models.AssignmentRecord {
	return models.NewAssignmentRecord(0, models.Row{
		"Booking Number": booking,
		"EJAR":           ejar,
		"INVYGO":         invygo,
	})
}

func repair(vehicle, dateIn string) *models.MaintenanceRecord {
	return &models.MaintenanceRecord{Vehicle: vehicle, DateIn: dateIn}
}

func TestEngine_Mismatch(t *testing.T) {
	tests := []struct {
		name     string
		record   *models.AssignmentRecord
		mismatch bool
	}{
		{"normalized equal", booking("4521", "ABC 123", "abc123"), false},
		{"different vehicles", booking("4521", "ABC123", "XYZ999"), true},
		{"missing ejar", booking("4521", "", "XYZ999"), false},
		{"missing invygo", booking("4521", "ABC123", " "), false},
		{"daily booking", booking("daily-7", "ABC123", "XYZ999"), false},
		{"other booking", booking("staff", "ABC123", "XYZ999"), false},
		{"empty booking", booking("", "ABC123", "XYZ999"), false},
	}

	engine := NewEngine(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.ReconcileRecord(tt.record)
			assert.Equal(t, tt.mismatch, result.IsMismatch)
			assert.False(t, result.IsReadyToSwitchBack)
		})
	}
}

func TestEngine_Readiness(t *testing.T) {
	mismatch := booking("4521", "ABC123", "XYZ999")

	tests := []struct {
		name        string
		maintenance []*models.MaintenanceRecord
		ready       bool
		status      Status
	}{
		{"no maintenance row", nil, false, StatusMismatch},
		{"open repair", []*models.MaintenanceRecord{repair("XYZ999", "")}, false, StatusMismatch},
		{"closed repair", []*models.MaintenanceRecord{repair("XYZ999", "2024-12-30")}, true, StatusReady},
		{"other vehicle closed", []*models.MaintenanceRecord{repair("ABC123", "2024-12-30")}, false, StatusMismatch},
		{"first match wins", []*models.MaintenanceRecord{repair("XYZ999", ""), repair("XYZ999", "2024-12-30")}, false, StatusMismatch},
		{"first match closed", []*models.MaintenanceRecord{repair("XYZ999", "2024-12-30"), repair("XYZ999", "")}, true, StatusReady},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(nil)
			engine.LoadMaintenance(tt.maintenance)
			result := engine.ReconcileRecord(mismatch)

			assert.True(t, result.IsMismatch)
			assert.Equal(t, tt.ready, result.IsReadyToSwitchBack)
			assert.Equal(t, tt.status, result.Status())
		})
	}
}

func TestEngine_ReadinessRequiresMismatch(t *testing.T) {
	engine := NewEngine(nil)
	engine.LoadMaintenance([]*models.MaintenanceRecord{repair("abc123", "2024-12-30")})

	result := engine.ReconcileRecord(booking("4521", "ABC 123", "abc123"))
	require.NotNil(t, result.Maintenance)
	assert.False(t, result.IsMismatch)
	assert.False(t, result.IsReadyToSwitchBack)
	assert.Equal(t, StatusOK, result.Status())
}

func TestEngine_RawJoinIsExact(t *testing.T) {
	record := booking("4521", "ABC123", "xyz 999")
	maintenance := []*models.MaintenanceRecord{repair("XYZ999", "2024-12-30")}

	raw := NewEngine(DefaultConfig())
	raw.LoadMaintenance(maintenance)
	result := raw.ReconcileRecord(record)
	assert.True(t, result.IsMismatch)
	assert.Nil(t, result.Maintenance)
	assert.False(t, result.IsReadyToSwitchBack)

	normalized := NewEngine(&Config{JoinMode: JoinNormalized})
	normalized.LoadMaintenance(maintenance)
	result = normalized.ReconcileRecord(record)
	assert.True(t, result.IsReadyToSwitchBack)
}

func TestEngine_Reconcile(t *testing.T) {
	records := models.NewAssignmentRecords([]models.Row{
		{"Booking Number": "100", "EJAR": "A1", "INVYGO": "B1"},
		{"Booking Number": "Monthly 3", "EJAR": "A2", "INVYGO": "B2"},
		{"Booking Number": "Sponsor", "EJAR": "A3", "INVYGO": "A3"},
	})
	results := Reconcile(append(records, nil), []*models.MaintenanceRecord{repair("B1", "1/1/2025")})

	require.Len(t, results, 3)
	assert.Equal(t, classifier.CategoryNumeric, results[0].Category)
	assert.True(t, results[0].IsReadyToSwitchBack)
	assert.Equal(t, classifier.CategoryMonthly, results[1].Category)
	assert.Equal(t, classifier.CategoryOther, results[2].Category)
	assert.Equal(t, "sponsor", results[2].OtherKey)
	for i, result := range results {
		assert.Same(t, records[i], result.Record)
	}
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.NoError(t, (&Config{JoinMode: JoinNormalized}).Validate())
	assert.Error(t, (&Config{JoinMode: JoinMode(9)}).Validate())
	assert.Equal(t, "Raw", JoinRaw.String())
	assert.Equal(t, "Normalized", JoinNormalized.String())
	assert.Equal(t, "Unknown", JoinMode(9).String())
}
