// Package analytics computes the counters and the daily model report shown
// alongside a reconciled view.
package analytics

import (
	"sort"

	"fleet-reconciliation-service/internal/classifier"
	"fleet-reconciliation-service/internal/matcher"
)

// Summary holds the published counters for a view.
//
// Total and the View* counters follow the filtered view. Every other
// counter is computed over the full ingested dataset and does not move
// when filters change.
type Summary struct {
	Total int `json:"total" yaml:"total"`

	Numeric int            `json:"numeric" yaml:"numeric"`
	Daily   int            `json:"daily" yaml:"daily"`
	Monthly int            `json:"monthly" yaml:"monthly"`
	Leasing int            `json:"leasing" yaml:"leasing"`
	Other   map[string]int `json:"other" yaml:"other"`

	Mismatches        int `json:"mismatches" yaml:"mismatches"`
	ReadyToSwitchBack int `json:"ready_to_switch_back" yaml:"ready_to_switch_back"`

	ViewMismatches        int `json:"view_mismatches" yaml:"view_mismatches"`
	ViewReadyToSwitchBack int `json:"view_ready_to_switch_back" yaml:"view_ready_to_switch_back"`
	ViewDuplicates        int `json:"view_duplicates" yaml:"view_duplicates"`
}

// OtherBucket is one entry of the Other map
type OtherBucket struct {
	Key   string `json:"key" yaml:"key" csv:"key"`
	Count int    `json:"count" yaml:"count" csv:"count"`
}

// Aggregate computes the summary of a view over the full dataset. Pass the
// view through matcher.MarkDuplicates first for ViewDuplicates to be
// populated.
func Aggregate(full, view []*matcher.Result) *Summary {
	summary := &Summary{
		Total: len(view),
		Other: make(map[string]int),
	}

	for _, result := range full {
		switch result.Category {
		case classifier.CategoryNumeric:
			summary.Numeric++
		case classifier.CategoryDaily:
			summary.Daily++
		case classifier.CategoryMonthly:
			summary.Monthly++
		case classifier.CategoryLeasing:
			summary.Leasing++
		case classifier.CategoryOther:
			summary.Other[result.OtherKey]++
		}

		if result.IsMismatch {
			summary.Mismatches++
		}
		if result.IsReadyToSwitchBack {
			summary.ReadyToSwitchBack++
		}
	}

	for _, result := range view {
		if result.IsMismatch {
			summary.ViewMismatches++
		}
		if result.IsReadyToSwitchBack {
			summary.ViewReadyToSwitchBack++
		}
		if result.IsDuplicateBooking {
			summary.ViewDuplicates++
		}
	}

	return summary
}

// OtherBuckets returns the Other map ordered by descending count, then key
func (s *Summary) OtherBuckets() []OtherBucket {
	buckets := make([]OtherBucket, 0, len(s.Other))
	for key, count := range s.Other {
		buckets = append(buckets, OtherBucket{Key: key, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		if buckets[i].Count != buckets[j].Count {
			return buckets[i].Count > buckets[j].Count
		}
		return buckets[i].Key < buckets[j].Key
	})
	return buckets
}

// Categorized returns the number of records with a non-empty booking number
func (s *Summary) Categorized() int {
	total := s.Numeric + s.Daily + s.Monthly + s.Leasing
	for _, count := range s.Other {
		total += count
	}
	return total
}
