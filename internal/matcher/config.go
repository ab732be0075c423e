// Package matcher provides the reconciliation engine that joins booking
// records against the fleet identifier and the maintenance log.
//
// For every assignment record the engine computes:
//   - the booking category (see package classifier)
//   - whether the assignment ledger (EJAR) and the fleet ledger (INVYGO)
//     disagree on the vehicle, comparing normalized identifiers
//   - whether a disagreeing vehicle has a closing maintenance record and is
//     therefore ready to be switched back
//
// The maintenance join compares the raw fleet identifier by exact string
// equality while the mismatch check compares normalized identifiers. The
// asymmetry is inherited from the booking sheets and is kept by default;
// JoinNormalized is an explicit opt-in that changes it.
//
// Example usage:
//
//	engine := matcher.NewEngine(matcher.DefaultConfig())
//	engine.LoadMaintenance(maintenance)
//	results := engine.Reconcile(assignments)
//	flagged, groups := matcher.DetectDuplicates(results)
package matcher

import "fmt"

// JoinMode selects how assignment records are joined to maintenance records.
type JoinMode int

const (
	// JoinRaw matches the fleet identifier to the maintenance vehicle by
	// exact, unnormalized string equality.
	JoinRaw JoinMode = iota

	// JoinNormalized matches both sides after Normalize. This changes the
	// readiness outcome for identifiers that differ only in case or spacing.
	JoinNormalized
)

// String returns the string representation of JoinMode
func (m JoinMode) String() string {
	switch m {
	case JoinRaw:
		return "Raw"
	case JoinNormalized:
		return "Normalized"
	default:
		return "Unknown"
	}
}

// Config holds options for the reconciliation engine
type Config struct {
	JoinMode JoinMode `json:"join_mode"`
}

// DefaultConfig returns the configuration matching the booking sheets'
// behaviour.
func DefaultConfig() *Config {
	return &Config{
		JoinMode: JoinRaw,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.JoinMode {
	case JoinRaw, JoinNormalized:
		return nil
	default:
		return fmt.Errorf("invalid join mode: %d", c.JoinMode)
	}
}
