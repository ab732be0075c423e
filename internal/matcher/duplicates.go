package matcher

import (
	"fmt"
)

// DuplicateGroup is a set of fleet bookings in the same view that share a
// booking number.
type DuplicateGroup struct {
	BookingNumber string    `json:"booking_number"`
	GroupID       string    `json:"group_id"`
	Results       []*Result `json:"results"`
}

// DetectDuplicates flags the results of a view whose numeric booking number
// occurs more than once in that view. Booking numbers are compared raw.
// Non-numeric bookings are never flagged.
//
// The input is not modified: the returned view holds copies with
// IsDuplicateBooking set, in the same order. Groups follow the order of
// first occurrence.
func DetectDuplicates(view []*Result) ([]*Result, []DuplicateGroup) {
	counts := make(map[string]int)
	for _, result := range view {
		if result.IsNumeric() {
			counts[result.Record.BookingNumber]++
		}
	}

	flagged := make([]*Result, len(view))
	groupIndex := make(map[string]int)
	var groups []DuplicateGroup

	for i, result := range view {
		copied := *result
		copied.IsDuplicateBooking = copied.IsNumeric() && counts[copied.Record.BookingNumber] > 1
		flagged[i] = &copied

		if !copied.IsDuplicateBooking {
			continue
		}

		booking := copied.Record.BookingNumber
		idx, exists := groupIndex[booking]
		if !exists {
			idx = len(groups)
			groupIndex[booking] = idx
			groups = append(groups, DuplicateGroup{
				BookingNumber: booking,
				GroupID:       fmt.Sprintf("DUP_%s", booking),
			})
		}
		groups[idx].Results = append(groups[idx].Results, &copied)
	}

	return flagged, groups
}

// MarkDuplicates is DetectDuplicates without the grouping.
func MarkDuplicates(view []*Result) []*Result {
	flagged, _ := DetectDuplicates(view)
	return flagged
}

// CountDuplicates returns how many results in the view are flagged
func CountDuplicates(view []*Result) int {
	count := 0
	for _, result := range view {
		if result.IsDuplicateBooking {
			count++
		}
	}
	return count
}
