// Package filter narrows a reconciled dataset down to the view a consumer
// is looking at.
//
// Two modes exist and they do not compose. When a search term is set the
// view is every record with any field containing the term; facets and
// toggles are ignored. Otherwise facets are applied (AND across columns,
// OR within a column) followed by the mismatch-only and ready-only toggles.
package filter

import (
	"sort"
	"strings"

	"fleet-reconciliation-service/internal/models"
)

// State is the complete selection driving a view. It is a value: every
// With method returns a new State and leaves the receiver unchanged.
type State struct {
	search       string
	facets       map[models.Column][]string
	mismatchOnly bool
	readyOnly    bool
	selectedDate models.CalendarKey
}

// NewState returns an empty selection
func NewState() State {
	return State{}
}

// Search returns the raw search text
func (s State) Search() string { return s.search }

// MismatchOnly reports whether only mismatched records are kept
func (s State) MismatchOnly() bool { return s.mismatchOnly }

// ReadyOnly reports whether only records ready to switch back are kept
func (s State) ReadyOnly() bool { return s.readyOnly }

// SelectedDate returns the date used by the daily report
func (s State) SelectedDate() models.CalendarKey { return s.selectedDate }

// Facet returns a copy of the normalized values selected for a column
func (s State) Facet(column models.Column) []string {
	values := s.facets[column]
	if len(values) == 0 {
		return nil
	}
	return append([]string(nil), values...)
}

// FacetColumns returns the columns with at least one selected value,
// sorted by name.
func (s State) FacetColumns() []models.Column {
	columns := make([]models.Column, 0, len(s.facets))
	for column, values := range s.facets {
		if len(values) > 0 {
			columns = append(columns, column)
		}
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i] < columns[j] })
	return columns
}

// IsSearchMode reports whether the search term takes over the view
func (s State) IsSearchMode() bool {
	return strings.TrimSpace(s.search) != ""
}

// WithSearch returns a copy of the state with the search term replaced
func (s State) WithSearch(term string) State {
	next := s.clone()
	next.search = term
	return next
}

// WithFacet returns a copy of the state with the selection for one column
// replaced. Values are normalized and de-duplicated; an empty selection
// clears the facet.
func (s State) WithFacet(column models.Column, values ...string) State {
	next := s.clone()

	seen := make(map[string]bool, len(values))
	var selected []string
	for _, v := range values {
		n := models.Normalize(v)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		selected = append(selected, n)
	}

	if len(selected) == 0 {
		delete(next.facets, column)
		return next
	}
	if next.facets == nil {
		next.facets = make(map[models.Column][]string)
	}
	next.facets[column] = selected
	return next
}

// WithMismatchOnly returns a copy of the state with the mismatch toggle set
func (s State) WithMismatchOnly(enabled bool) State {
	next := s.clone()
	next.mismatchOnly = enabled
	return next
}

// WithReadyOnly returns a copy of the state with the readiness toggle set
func (s State) WithReadyOnly(enabled bool) State {
	next := s.clone()
	next.readyOnly = enabled
	return next
}

// WithSelectedDate returns a copy of the state with the report date set
func (s State) WithSelectedDate(date models.CalendarKey) State {
	next := s.clone()
	next.selectedDate = date
	return next
}

// Reset clears the search, facets and toggles. The selected date belongs
// to the daily report and is kept.
func (s State) Reset() State {
	return State{selectedDate: s.selectedDate}
}

func (s State) clone() State {
	next := s
	if s.facets != nil {
		next.facets = make(map[models.Column][]string, len(s.facets))
		for column, values := range s.facets {
			next.facets[column] = append([]string(nil), values...)
		}
	}
	return next
}
