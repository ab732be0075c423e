package matcher

import (
	"fmt"

	"fleet-reconciliation-service/internal/classifier"
	"fleet-reconciliation-service/internal/models"
)

// Status is the display state of a reconciled record.
type Status string

const (
	// StatusOK means both ledgers agree or the record is not a fleet booking
	StatusOK Status = "ok"
	// StatusMismatch means the ledgers disagree and repair is not closed
	StatusMismatch Status = "mismatch"
	// StatusReady means the ledgers disagree and the repair is closed
	StatusReady Status = "ready"
)

// Result is the classification of one assignment record against the fleet
// ledger and the maintenance log.
type Result struct {
	Record      *models.AssignmentRecord  `json:"record"`
	Maintenance *models.MaintenanceRecord `json:"maintenance,omitempty"`

	Category classifier.Category `json:"category"`
	OtherKey string              `json:"other_key,omitempty"`

	EjarNormalized   string `json:"ejar_normalized"`
	InvygoNormalized string `json:"invygo_normalized"`

	IsMismatch          bool `json:"is_mismatch"`
	IsReadyToSwitchBack bool `json:"is_ready_to_switch_back"`

	// IsDuplicateBooking is relative to a view and is only set on results
	// returned by DetectDuplicates or MarkDuplicates.
	IsDuplicateBooking bool `json:"is_duplicate_booking"`
}

// Status returns the highlight state of the record
func (r *Result) Status() Status {
	switch {
	case r.IsReadyToSwitchBack:
		return StatusReady
	case r.IsMismatch:
		return StatusMismatch
	default:
		return StatusOK
	}
}

// IsNumeric reports whether the booking belongs to the fleet ledger
func (r *Result) IsNumeric() bool {
	return r.Category == classifier.CategoryNumeric
}

// String returns a string representation of the result
func (r *Result) String() string {
	return fmt.Sprintf("Result{#%d Booking: %s, Category: %s, Mismatch: %t, Ready: %t, Duplicate: %t}",
		r.Record.Index, r.Record.BookingNumber, r.Category, r.IsMismatch, r.IsReadyToSwitchBack, r.IsDuplicateBooking)
}

// Engine reconciles assignment records. It holds no state besides the
// maintenance index it was loaded with.
type Engine struct {
	Config           *Config
	MaintenanceIndex *MaintenanceIndex
}

// NewEngine creates a new engine with the specified configuration
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	return &Engine{
		Config:           config,
		MaintenanceIndex: NewMaintenanceIndex(nil, config.JoinMode),
	}
}

// LoadMaintenance replaces the maintenance log the engine joins against
func (e *Engine) LoadMaintenance(records []*models.MaintenanceRecord) {
	e.MaintenanceIndex = NewMaintenanceIndex(records, e.Config.JoinMode)
}

// Reconcile classifies every record, preserving input order.
func (e *Engine) Reconcile(records []*models.AssignmentRecord) []*Result {
	results := make([]*Result, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		results = append(results, e.ReconcileRecord(record))
	}
	return results
}

// ReconcileRecord classifies a single record. It never fails: absent fields
// normalize to the empty string and simply fail the mismatch conditions.
func (e *Engine) ReconcileRecord(record *models.AssignmentRecord) *Result {
	classification := classifier.Classify(record.BookingNumber)

	result := &Result{
		Record:           record,
		Category:         classification.Category,
		OtherKey:         classification.OtherKey,
		EjarNormalized:   models.Normalize(record.EjarID),
		InvygoNormalized: models.Normalize(record.InvygoID),
	}

	result.IsMismatch = classification.IsNumeric() &&
		result.EjarNormalized != "" &&
		result.InvygoNormalized != "" &&
		result.EjarNormalized != result.InvygoNormalized

	result.Maintenance = e.MaintenanceIndex.Lookup(record.InvygoID)
	result.IsReadyToSwitchBack = result.IsMismatch && result.Maintenance.IsClosing()

	return result
}

// Reconcile is a convenience wrapper that builds a default engine over the
// maintenance log and reconciles the assignment records against it.
func Reconcile(assignments []*models.AssignmentRecord, maintenance []*models.MaintenanceRecord) []*Result {
	engine := NewEngine(nil)
	engine.LoadMaintenance(maintenance)
	return engine.Reconcile(assignments)
}
