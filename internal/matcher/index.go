package matcher

import (
	"fleet-reconciliation-service/internal/models"
)

// MaintenanceIndex provides vehicle lookups over the maintenance log
type MaintenanceIndex struct {
	// byVehicle maps the join key to the first record seen for it
	byVehicle map[string]*models.MaintenanceRecord

	// AllRecords holds the indexed records in ingestion order
	AllRecords []*models.MaintenanceRecord

	mode JoinMode
}

// NewMaintenanceIndex indexes maintenance records by vehicle. When several
// records share a vehicle the earliest one in ingestion order wins.
func NewMaintenanceIndex(records []*models.MaintenanceRecord, mode JoinMode) *MaintenanceIndex {
	index := &MaintenanceIndex{
		byVehicle:  make(map[string]*models.MaintenanceRecord, len(records)),
		AllRecords: records,
		mode:       mode,
	}

	for _, record := range records {
		if record == nil {
			continue
		}
		key := index.key(record.Vehicle)
		if _, exists := index.byVehicle[key]; !exists {
			index.byVehicle[key] = record
		}
	}

	return index
}

// Lookup returns the maintenance record joined to a fleet identifier, or nil
func (mi *MaintenanceIndex) Lookup(vehicle string) *models.MaintenanceRecord {
	if mi == nil {
		return nil
	}
	return mi.byVehicle[mi.key(vehicle)]
}

// Len returns the number of distinct join keys
func (mi *MaintenanceIndex) Len() int {
	if mi == nil {
		return 0
	}
	return len(mi.byVehicle)
}

func (mi *MaintenanceIndex) key(vehicle string) string {
	if mi.mode == JoinNormalized {
		return models.Normalize(vehicle)
	}
	return vehicle
}
