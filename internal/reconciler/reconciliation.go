// Package reconciler ties ingestion to the reconciliation core. A service
// loads both sheets and produces a Snapshot; every view, summary and daily
// report is then derived from the snapshot on demand.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"fleet-reconciliation-service/internal/matcher"
	"fleet-reconciliation-service/internal/models"
	"fleet-reconciliation-service/internal/parsers"
	"fleet-reconciliation-service/pkg/errors"
	"fleet-reconciliation-service/pkg/logger"
)

// ReconciliationService loads sources and reconciles them
type ReconciliationService struct {
	reader         *parsers.SheetReader
	matchingConfig *matcher.Config
	logger         logger.Logger
}

// ReconciliationRequest names the sheets of one ingestion
type ReconciliationRequest struct {
	Assignments parsers.Source
	Maintenance parsers.Source
}

// Validate validates the reconciliation request
func (r *ReconciliationRequest) Validate() error {
	if !r.Assignments.IsSet() {
		return errors.ConfigurationError(errors.CodeMissingConfig, "assignments", nil, nil)
	}
	return nil
}

// ProcessingStats describes one ingestion
type ProcessingStats struct {
	AssignmentRows    int           `json:"assignment_rows" yaml:"assignment_rows"`
	MaintenanceRows   int           `json:"maintenance_rows" yaml:"maintenance_rows"`
	SkippedRows       int           `json:"skipped_rows" yaml:"skipped_rows"`
	LoadDuration      time.Duration `json:"load_duration" yaml:"load_duration"`
	ReconcileDuration time.Duration `json:"reconcile_duration" yaml:"reconcile_duration"`
}

// NewReconciliationService creates a new reconciliation service
func NewReconciliationService(
	reader *parsers.SheetReader,
	matchingConfig *matcher.Config,
	log logger.Logger,
) (*ReconciliationService, error) {
	if reader == nil {
		return nil, fmt.Errorf("sheet reader is required")
	}
	if matchingConfig == nil {
		matchingConfig = matcher.DefaultConfig()
	}
	if err := matchingConfig.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "join_mode", matchingConfig.JoinMode, err)
	}
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	return &ReconciliationService{
		reader:         reader,
		matchingConfig: matchingConfig,
		logger:         log.WithComponent("reconciler"),
	}, nil
}

// Load fetches both sheets and reconciles them into a new snapshot. The
// previous snapshot, if any, is not touched: ingestions replace data
// wholesale.
func (rs *ReconciliationService) Load(ctx context.Context, request *ReconciliationRequest) (*Snapshot, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}

	op := logger.NewOperationLogger("load", rs.logger).WithFields(logger.Fields{
		"assignments": request.Assignments.Location,
		"maintenance": request.Maintenance.Location,
		"join_mode":   rs.matchingConfig.JoinMode.String(),
	})

	loadStart := time.Now()
	sources, err := rs.reader.LoadSources(ctx, request.Assignments, request.Maintenance)
	if err != nil {
		op.Error(err, "Failed to load sources")
		return nil, err
	}
	loadDuration := time.Since(loadStart)

	snapshot := NewSnapshot(
		sources.Assignments.AssignmentRecords(),
		sources.Maintenance.MaintenanceRecords(),
		rs.matchingConfig,
	)
	snapshot.Issues = sources.Issues()
	snapshot.Stats.SkippedRows = len(snapshot.Issues)
	snapshot.Stats.LoadDuration = loadDuration

	if len(snapshot.Issues) > 0 {
		op.Warning(fmt.Sprintf("Skipped %d malformed rows", len(snapshot.Issues)))
	}
	op.WithFields(logger.Fields{
		"assignment_rows":  snapshot.Stats.AssignmentRows,
		"maintenance_rows": snapshot.Stats.MaintenanceRows,
	}).Success("Sources reconciled")

	return snapshot, nil
}

// Reconcile builds a snapshot from records that were already loaded
func (rs *ReconciliationService) Reconcile(assignments []*models.AssignmentRecord, maintenance []*models.MaintenanceRecord) *Snapshot {
	return NewSnapshot(assignments, maintenance, rs.matchingConfig)
}

// GetConfiguration returns the matching configuration
func (rs *ReconciliationService) GetConfiguration() *matcher.Config {
	return rs.matchingConfig
}
