package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRow() Row {
	return Row{
		"Contract No.":   "C-1001",
		"Booking Number": "4521",
		"Customer":       "Sara Ali",
		"Pick-up Branch": "Downtown",
		"EJAR":           "ABC 123",
		"Model ( Ejar )": "Sedan",
		"INVYGO":         "abc123",
		"Model":          "Sedan",
		"Pick-up Date":   "31-12-2024 10:00",
		"Notes":          "VIP",
	}
}

func TestNewAssignmentRecord(t *testing.T) {
	row := sampleRow()
	record := NewAssignmentRecord(3, row)

	assert.Equal(t, 3, record.Index)
	assert.Equal(t, "C-1001", record.ContractNumber)
	assert.Equal(t, "4521", record.BookingNumber)
	assert.Equal(t, "Sara Ali", record.Customer)
	assert.Equal(t, "Downtown", record.PickupBranch)
	assert.Equal(t, "ABC 123", record.EjarID)
	assert.Equal(t, "Sedan", record.EjarModel)
	assert.Equal(t, "abc123", record.InvygoID)
	assert.Equal(t, "Sedan", record.InvygoModel)
	assert.Equal(t, "31-12-2024 10:00", record.PickupDate)

	// the record keeps its own copy of the row
	row["Booking Number"] = "changed"
	assert.Equal(t, "4521", record.Field(ColumnBookingNumber))
	assert.Equal(t, "4521", record.Row().Get(ColumnBookingNumber))
}

func TestAssignmentRecord_MissingFields(t *testing.T) {
	record := NewAssignmentRecord(0, Row{})

	for _, column := range AssignmentColumns() {
		assert.Empty(t, record.Field(column), column.String())
	}
	assert.Empty(t, record.Field("Unknown"))

	var nilRow Row
	assert.Empty(t, nilRow.Get(ColumnEjar))
	assert.Nil(t, nilRow.Clone())
}

func TestAssignmentRecord_FieldFallsBackToRow(t *testing.T) {
	record := NewAssignmentRecord(0, sampleRow())
	assert.Equal(t, "VIP", record.Field("Notes"))
}

func TestAssignmentRecord_Values(t *testing.T) {
	record := NewAssignmentRecord(0, sampleRow())
	assert.ElementsMatch(t, []string{
		"C-1001", "4521", "Sara Ali", "Downtown", "ABC 123", "Sedan", "abc123", "Sedan", "31-12-2024 10:00", "VIP",
	}, record.Values())

	// records built without a row still expose their typed fields
	bare := &AssignmentRecord{BookingNumber: "7", EjarID: "X1"}
	assert.Contains(t, bare.Values(), "7")
	assert.Contains(t, bare.Values(), "X1")
	assert.Equal(t, "X1", bare.Row().Get(ColumnEjar))
}

func TestAssignmentRecord_StableKey(t *testing.T) {
	a := NewAssignmentRecord(0, Row{"Contract No.": "C-1", "Booking Number": "10"})
	b := NewAssignmentRecord(7, Row{"Contract No.": "C-1", "Booking Number": "10", "EJAR": "other"})
	c := NewAssignmentRecord(0, Row{"Contract No.": "C-11", "Booking Number": "0"})

	assert.Equal(t, a.StableKey(), b.StableKey(), "key must not depend on position")
	assert.NotEqual(t, a.StableKey(), c.StableKey(), "field boundary must be part of the key")
	assert.Len(t, a.StableKey(), 64)
}

func TestNewAssignmentRecords(t *testing.T) {
	records := NewAssignmentRecords([]Row{{"Booking Number": "1"}, {"Booking Number": "2"}})
	require.Len(t, records, 2)
	assert.Equal(t, 0, records[0].Index)
	assert.Equal(t, 1, records[1].Index)
	assert.Equal(t, "2", records[1].BookingNumber)
}

func TestMaintenanceRecord(t *testing.T) {
	records := NewMaintenanceRecords([]Row{
		{"Vehicle": "XYZ999", "Date IN": "2024-12-30", "Date OUT": "2024-12-01"},
		{"Vehicle": "XYZ998", "Date IN": "", "Date OUT": "2024-12-02"},
	})
	require.Len(t, records, 2)

	assert.Equal(t, "XYZ999", records[0].Vehicle)
	assert.True(t, records[0].IsClosing())
	assert.False(t, records[1].IsClosing())

	var missing *MaintenanceRecord
	assert.False(t, missing.IsClosing())
}
