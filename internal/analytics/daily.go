package analytics

import (
	"sort"
	"strings"

	"fleet-reconciliation-service/internal/matcher"
	"fleet-reconciliation-service/internal/models"
)

const (
	// UnspecifiedModel is the bucket for fleet bookings without a model
	UnspecifiedModel = "Unspecified"

	tiggoPattern = "tiggo 4 pro"
	tiggoDisplay = "Tiggo 4 2025"
)

// ModelCount is the number of fleet bookings of one model
type ModelCount struct {
	Model string `json:"model" yaml:"model" csv:"model"`
	Count int    `json:"count" yaml:"count" csv:"count"`
}

// BookedCar is a fleet vehicle picked up on the selected date
type BookedCar struct {
	Index         int    `json:"index" yaml:"index" csv:"-"`
	BookingNumber string `json:"booking_number" yaml:"booking_number" csv:"booking_number"`
	Model         string `json:"model" yaml:"model" csv:"model"`
	InvygoID      string `json:"invygo" yaml:"invygo" csv:"invygo"`
	PickupDate    string `json:"pickup_date" yaml:"pickup_date" csv:"pickup_date"`
}

// Daily is the daily report. ModelCounts and TotalCars cover every fleet
// booking; Booked is scoped to SelectedDate.
type Daily struct {
	SelectedDate models.CalendarKey `json:"selected_date" yaml:"selected_date"`
	ModelCounts  []ModelCount       `json:"model_counts" yaml:"model_counts"`
	TotalCars    int                `json:"total_cars" yaml:"total_cars"`
	Booked       []BookedCar        `json:"booked" yaml:"booked"`
}

// CanonicalModel maps a fleet model name to the name it is reported under
func CanonicalModel(model string) string {
	if strings.TrimSpace(model) == "" {
		return UnspecifiedModel
	}
	if strings.Contains(strings.ToLower(model), tiggoPattern) {
		return tiggoDisplay
	}
	return model
}

// DailyReport buckets the fleet bookings of the full dataset by model and
// lists the records picked up on the selected date. Records whose pickup
// date cannot be normalized never appear in Booked.
func DailyReport(full []*matcher.Result, selected models.CalendarKey) *Daily {
	report := &Daily{
		SelectedDate: selected,
		ModelCounts:  make([]ModelCount, 0),
		Booked:       make([]BookedCar, 0),
	}

	counts := make(map[string]int)
	for _, result := range full {
		if !result.IsNumeric() {
			continue
		}
		counts[CanonicalModel(result.Record.InvygoModel)]++
		report.TotalCars++
	}
	for model, count := range counts {
		report.ModelCounts = append(report.ModelCounts, ModelCount{Model: model, Count: count})
	}
	sort.Slice(report.ModelCounts, func(i, j int) bool {
		a, b := report.ModelCounts[i], report.ModelCounts[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.Model < b.Model
	})

	if selected == "" {
		return report
	}
	for _, result := range full {
		key, ok := models.NormalizeDate(result.Record.PickupDate)
		if !ok || key != selected {
			continue
		}
		report.Booked = append(report.Booked, BookedCar{
			Index:         result.Record.Index,
			BookingNumber: result.Record.BookingNumber,
			Model:         result.Record.InvygoModel,
			InvygoID:      result.Record.InvygoID,
			PickupDate:    result.Record.PickupDate,
		})
	}

	return report
}
