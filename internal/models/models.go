package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Column is the header name of a field in one of the source sheets.
type Column string

// Assignment and fleet ledger columns, as they appear in the booking sheet.
const (
	ColumnContractNumber Column = "Contract No."
	ColumnBookingNumber  Column = "Booking Number"
	ColumnCustomer       Column = "Customer"
	ColumnPickupBranch   Column = "Pick-up Branch"
	ColumnEjar           Column = "EJAR"
	ColumnEjarModel      Column = "Model ( Ejar )"
	ColumnInvygo         Column = "INVYGO"
	ColumnModel          Column = "Model"
	ColumnPickupDate     Column = "Pick-up Date"
)

// Maintenance log columns.
const (
	ColumnVehicle Column = "Vehicle"
	ColumnDateIn  Column = "Date IN"
	ColumnDateOut Column = "Date OUT"
)

// String returns the header text of the column
func (c Column) String() string {
	return string(c)
}

// AssignmentColumns lists the booking sheet columns in display order.
func AssignmentColumns() []Column {
	return []Column{
		ColumnContractNumber,
		ColumnBookingNumber,
		ColumnCustomer,
		ColumnPickupBranch,
		ColumnEjar,
		ColumnEjarModel,
		ColumnInvygo,
		ColumnModel,
		ColumnPickupDate,
	}
}

// MaintenanceColumns lists the maintenance log columns.
func MaintenanceColumns() []Column {
	return []Column{ColumnVehicle, ColumnDateIn, ColumnDateOut}
}

// Row is one parsed source line keyed by trimmed header name.
type Row map[string]string

// Get returns the value stored under the column, or "" when absent
func (r Row) Get(column Column) string {
	if r == nil {
		return ""
	}
	return r[string(column)]
}

// Clone returns an independent copy of the row
func (r Row) Clone() Row {
	if r == nil {
		return nil
	}
	out := make(Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// AssignmentRecord is one booking row carrying both the assignment ledger
// (EJAR) and the fleet ledger (INVYGO) view of the vehicle.
//
// Records are never mutated after ingestion. Index is the position in the
// ingested collection and is not stable across ingestions; use StableKey
// when a persistent identity is needed.
type AssignmentRecord struct {
	Index          int    `json:"index" yaml:"index"`
	ContractNumber string `json:"contract_number" yaml:"contract_number"`
	BookingNumber  string `json:"booking_number" yaml:"booking_number"`
	Customer       string `json:"customer" yaml:"customer"`
	PickupBranch   string `json:"pickup_branch" yaml:"pickup_branch"`
	EjarID         string `json:"ejar" yaml:"ejar"`
	EjarModel      string `json:"ejar_model" yaml:"ejar_model"`
	InvygoID       string `json:"invygo" yaml:"invygo"`
	InvygoModel    string `json:"model" yaml:"model"`
	PickupDate     string `json:"pickup_date" yaml:"pickup_date"`

	row Row
}

// NewAssignmentRecord builds a record from a parsed row. The row is copied
// so later changes to the caller's map are not observed.
func NewAssignmentRecord(index int, row Row) *AssignmentRecord {
	return &AssignmentRecord{
		Index:          index,
		ContractNumber: row.Get(ColumnContractNumber),
		BookingNumber:  row.Get(ColumnBookingNumber),
		Customer:       row.Get(ColumnCustomer),
		PickupBranch:   row.Get(ColumnPickupBranch),
		EjarID:         row.Get(ColumnEjar),
		EjarModel:      row.Get(ColumnEjarModel),
		InvygoID:       row.Get(ColumnInvygo),
		InvygoModel:    row.Get(ColumnModel),
		PickupDate:     row.Get(ColumnPickupDate),
		row:            row.Clone(),
	}
}

// NewAssignmentRecords converts an ordered row collection into records,
// assigning positional indices.
func NewAssignmentRecords(rows []Row) []*AssignmentRecord {
	records := make([]*AssignmentRecord, len(rows))
	for i, row := range rows {
		records[i] = NewAssignmentRecord(i, row)
	}
	return records
}

// Field returns the value of a column. Known columns come from the typed
// fields; anything else falls back to the source row.
func (r *AssignmentRecord) Field(column Column) string {
	switch column {
	case ColumnContractNumber:
		return r.ContractNumber
	case ColumnBookingNumber:
		return r.BookingNumber
	case ColumnCustomer:
		return r.Customer
	case ColumnPickupBranch:
		return r.PickupBranch
	case ColumnEjar:
		return r.EjarID
	case ColumnEjarModel:
		return r.EjarModel
	case ColumnInvygo:
		return r.InvygoID
	case ColumnModel:
		return r.InvygoModel
	case ColumnPickupDate:
		return r.PickupDate
	default:
		return r.row.Get(column)
	}
}

// Values returns every field value of the record, including columns of the
// source row that have no typed field. Order is unspecified.
func (r *AssignmentRecord) Values() []string {
	if r.row != nil {
		values := make([]string, 0, len(r.row))
		for _, v := range r.row {
			values = append(values, v)
		}
		return values
	}

	columns := AssignmentColumns()
	values := make([]string, 0, len(columns))
	for _, column := range columns {
		values = append(values, r.Field(column))
	}
	return values
}

// Row returns a copy of the source row
func (r *AssignmentRecord) Row() Row {
	if r.row == nil {
		row := make(Row)
		for _, column := range AssignmentColumns() {
			row[string(column)] = r.Field(column)
		}
		return row
	}
	return r.row.Clone()
}

// StableKey derives an identity that survives re-ingestion from the contract
// and booking numbers.
func (r *AssignmentRecord) StableKey() string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(r.ContractNumber) + "\x1f" + strings.TrimSpace(r.BookingNumber)))
	return hex.EncodeToString(sum[:])
}

// String returns a string representation of the record
func (r *AssignmentRecord) String() string {
	return fmt.Sprintf("AssignmentRecord{#%d Contract: %s, Booking: %s, EJAR: %s, INVYGO: %s}",
		r.Index, r.ContractNumber, r.BookingNumber, r.EjarID, r.InvygoID)
}

// MaintenanceRecord is one row of the maintenance log.
type MaintenanceRecord struct {
	Index   int    `json:"index" yaml:"index"`
	Vehicle string `json:"vehicle" yaml:"vehicle"`
	DateIn  string `json:"date_in" yaml:"date_in"`
	DateOut string `json:"date_out" yaml:"date_out"`
}

// NewMaintenanceRecord builds a maintenance record from a parsed row
func NewMaintenanceRecord(index int, row Row) *MaintenanceRecord {
	return &MaintenanceRecord{
		Index:   index,
		Vehicle: row.Get(ColumnVehicle),
		DateIn:  row.Get(ColumnDateIn),
		DateOut: row.Get(ColumnDateOut),
	}
}

// NewMaintenanceRecords converts an ordered row collection into records
func NewMaintenanceRecords(rows []Row) []*MaintenanceRecord {
	records := make([]*MaintenanceRecord, len(rows))
	for i, row := range rows {
		records[i] = NewMaintenanceRecord(i, row)
	}
	return records
}

// IsClosing reports whether the repair is recorded as completed.
func (m *MaintenanceRecord) IsClosing() bool {
	return m != nil && m.DateIn != ""
}

// String returns a string representation of the maintenance record
func (m *MaintenanceRecord) String() string {
	return fmt.Sprintf("MaintenanceRecord{Vehicle: %s, In: %s, Out: %s}", m.Vehicle, m.DateIn, m.DateOut)
}
