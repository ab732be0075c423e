package reconciler

import (
	"time"

	"fleet-reconciliation-service/internal/analytics"
	"fleet-reconciliation-service/internal/filter"
	"fleet-reconciliation-service/internal/matcher"
	"fleet-reconciliation-service/internal/models"
	"fleet-reconciliation-service/pkg/errors"
)

// Snapshot is the reconciled state of one ingestion. Its collections are
// never modified after construction.
type Snapshot struct {
	Assignments []*models.AssignmentRecord
	Maintenance []*models.MaintenanceRecord
	Results     []*matcher.Result
	Issues      []*errors.RowIssue
	Stats       ProcessingStats
	JoinMode    matcher.JoinMode
	LoadedAt    time.Time
}

// ViewResult is everything a consumer needs to display one view
type ViewResult struct {
	State       filter.State             `json:"-" yaml:"-"`
	Results     []*matcher.Result        `json:"results" yaml:"results"`
	Duplicates  []matcher.DuplicateGroup `json:"duplicates" yaml:"duplicates"`
	Summary     *analytics.Summary       `json:"summary" yaml:"summary"`
	GeneratedAt time.Time                `json:"generated_at" yaml:"generated_at"`
}

// NewSnapshot reconciles the records against the maintenance log
func NewSnapshot(assignments []*models.AssignmentRecord, maintenance []*models.MaintenanceRecord, config *matcher.Config) *Snapshot {
	engine := matcher.NewEngine(config)
	engine.LoadMaintenance(maintenance)

	start := time.Now()
	results := engine.Reconcile(assignments)

	return &Snapshot{
		Assignments: assignments,
		Maintenance: maintenance,
		Results:     results,
		JoinMode:    engine.Config.JoinMode,
		LoadedAt:    start,
		Stats: ProcessingStats{
			AssignmentRows:    len(assignments),
			MaintenanceRows:   len(maintenance),
			ReconcileDuration: time.Since(start),
		},
	}
}

// View filters the snapshot, flags duplicates within the resulting view
// and computes its summary. It is recomputed from scratch on every call.
func (s *Snapshot) View(state filter.State) *ViewResult {
	view := filter.Apply(s.Results, state)
	flagged, groups := matcher.DetectDuplicates(view)

	return &ViewResult{
		State:       state,
		Results:     flagged,
		Duplicates:  groups,
		Summary:     analytics.Aggregate(s.Results, flagged),
		GeneratedAt: time.Now(),
	}
}

// DailyReport builds the daily report for the state's selected date
func (s *Snapshot) DailyReport(state filter.State) *analytics.Daily {
	return analytics.DailyReport(s.Results, state.SelectedDate())
}

// Facets lists the facet options of the columns over the whole snapshot
func (s *Snapshot) Facets(columns []models.Column) map[models.Column][]string {
	if len(columns) == 0 {
		columns = models.AssignmentColumns()
	}
	return filter.FacetOptions(s.Results, columns)
}
