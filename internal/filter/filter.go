package filter

import (
	"sort"
	"strings"

	"fleet-reconciliation-service/internal/matcher"
	"fleet-reconciliation-service/internal/models"
)

// Apply returns the results of the full dataset selected by the state, in
// their original order. The input slice is never modified.
func Apply(full []*matcher.Result, state State) []*matcher.Result {
	if state.IsSearchMode() {
		return search(full, models.Normalize(state.search))
	}

	view := make([]*matcher.Result, 0, len(full))
	for _, result := range full {
		if !matchesFacets(result, state.facets) {
			continue
		}
		if state.mismatchOnly && !result.IsMismatch {
			continue
		}
		if state.readyOnly && !result.IsReadyToSwitchBack {
			continue
		}
		view = append(view, result)
	}
	return view
}

func search(full []*matcher.Result, term string) []*matcher.Result {
	view := make([]*matcher.Result, 0)
	for _, result := range full {
		for _, value := range result.Record.Values() {
			if strings.Contains(models.Normalize(value), term) {
				view = append(view, result)
				break
			}
		}
	}
	return view
}

func matchesFacets(result *matcher.Result, facets map[models.Column][]string) bool {
	for column, selected := range facets {
		if len(selected) == 0 {
			continue
		}
		value := models.Normalize(result.Record.Field(column))
		found := false
		for _, s := range selected {
			if s == value {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// FacetOptions lists, for each column, the sorted distinct non-empty
// normalized values found across the full dataset. Option lists never
// depend on other active facets.
func FacetOptions(full []*matcher.Result, columns []models.Column) map[models.Column][]string {
	options := make(map[models.Column][]string, len(columns))
	for _, column := range columns {
		seen := make(map[string]bool)
		values := make([]string, 0)
		for _, result := range full {
			v := models.Normalize(result.Record.Field(column))
			if v == "" || seen[v] {
				continue
			}
			seen[v] = true
			values = append(values, v)
		}
		sort.Strings(values)
		options[column] = values
	}
	return options
}
