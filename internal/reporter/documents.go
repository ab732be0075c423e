package reporter

import (
	"sort"
	"time"

	"fleet-reconciliation-service/internal/analytics"
	"fleet-reconciliation-service/internal/filter"
	"fleet-reconciliation-service/internal/matcher"
	"fleet-reconciliation-service/internal/models"
	"fleet-reconciliation-service/internal/reconciler"
)

// ResultRow is the flattened export form of one reconciled record
type ResultRow struct {
	Index          int    `json:"index" yaml:"index" csv:"index"`
	ContractNumber string `json:"contract_number" yaml:"contract_number" csv:"contract_number"`
	BookingNumber  string `json:"booking_number" yaml:"booking_number" csv:"booking_number"`
	Customer       string `json:"customer" yaml:"customer" csv:"customer"`
	PickupBranch   string `json:"pickup_branch" yaml:"pickup_branch" csv:"pickup_branch"`
	Ejar           string `json:"ejar" yaml:"ejar" csv:"ejar"`
	EjarModel      string `json:"ejar_model" yaml:"ejar_model" csv:"ejar_model"`
	Invygo         string `json:"invygo" yaml:"invygo" csv:"invygo"`
	Model          string `json:"model" yaml:"model" csv:"model"`
	PickupDate     string `json:"pickup_date" yaml:"pickup_date" csv:"pickup_date"`
	Category       string `json:"category" yaml:"category" csv:"category"`
	Status         string `json:"status" yaml:"status" csv:"status"`
	Duplicate      bool   `json:"duplicate" yaml:"duplicate" csv:"duplicate"`
	RepairDateIn   string `json:"repair_date_in,omitempty" yaml:"repair_date_in,omitempty" csv:"repair_date_in"`
}

// NewResultRow flattens a result
func NewResultRow(result *matcher.Result) ResultRow {
	record := result.Record
	row := ResultRow{
		Index:          record.Index,
		ContractNumber: record.ContractNumber,
		BookingNumber:  record.BookingNumber,
		Customer:       record.Customer,
		PickupBranch:   record.PickupBranch,
		Ejar:           record.EjarID,
		EjarModel:      record.EjarModel,
		Invygo:         record.InvygoID,
		Model:          record.InvygoModel,
		PickupDate:     record.PickupDate,
		Category:       string(result.Category),
		Status:         string(result.Status()),
		Duplicate:      result.IsDuplicateBooking,
	}
	if result.Maintenance != nil {
		row.RepairDateIn = result.Maintenance.DateIn
	}
	return row
}

// ResultRows flattens a view
func ResultRows(results []*matcher.Result) []ResultRow {
	rows := make([]ResultRow, len(results))
	for i, result := range results {
		rows[i] = NewResultRow(result)
	}
	return rows
}

// FilterDocument describes the filter state a view was built with
type FilterDocument struct {
	Search       string              `json:"search,omitempty" yaml:"search,omitempty"`
	Facets       map[string][]string `json:"facets,omitempty" yaml:"facets,omitempty"`
	MismatchOnly bool                `json:"mismatch_only" yaml:"mismatch_only"`
	ReadyOnly    bool                `json:"ready_only" yaml:"ready_only"`
	SelectedDate string              `json:"selected_date,omitempty" yaml:"selected_date,omitempty"`
}

// NewFilterDocument captures a filter state
func NewFilterDocument(state filter.State) FilterDocument {
	doc := FilterDocument{
		Search:       state.Search(),
		MismatchOnly: state.MismatchOnly(),
		ReadyOnly:    state.ReadyOnly(),
		SelectedDate: state.SelectedDate().String(),
	}
	for _, column := range state.FacetColumns() {
		if doc.Facets == nil {
			doc.Facets = make(map[string][]string)
		}
		doc.Facets[column.String()] = state.Facet(column)
	}
	return doc
}

// DuplicateDocument is the export form of a duplicate group
type DuplicateDocument struct {
	GroupID       string `json:"group_id" yaml:"group_id"`
	BookingNumber string `json:"booking_number" yaml:"booking_number"`
	Indices       []int  `json:"indices" yaml:"indices"`
}

// ViewDocument is the structured report of one view
type ViewDocument struct {
	GeneratedAt  time.Time               `json:"generated_at" yaml:"generated_at"`
	Filters      FilterDocument          `json:"filters" yaml:"filters"`
	Summary      *analytics.Summary      `json:"summary" yaml:"summary"`
	OtherBuckets []analytics.OtherBucket `json:"other_buckets" yaml:"other_buckets"`
	Duplicates   []DuplicateDocument     `json:"duplicates,omitempty" yaml:"duplicates,omitempty"`
	Rows         []ResultRow             `json:"rows,omitempty" yaml:"rows,omitempty"`
}

func (rg *ReportGenerator) viewDocument(view *reconciler.ViewResult) *ViewDocument {
	doc := &ViewDocument{
		GeneratedAt:  view.GeneratedAt,
		Filters:      NewFilterDocument(view.State),
		Summary:      view.Summary,
		OtherBuckets: view.Summary.OtherBuckets(),
	}

	if rg.config.IncludeDuplicates {
		for _, group := range view.Duplicates {
			indices := make([]int, len(group.Results))
			for i, result := range group.Results {
				indices[i] = result.Record.Index
			}
			doc.Duplicates = append(doc.Duplicates, DuplicateDocument{
				GroupID:       group.GroupID,
				BookingNumber: group.BookingNumber,
				Indices:       indices,
			})
		}
	}

	if rg.config.IncludeResults {
		doc.Rows = ResultRows(rg.limit(view.Results))
	}

	return doc
}

// FacetRow is one selectable value of one column
type FacetRow struct {
	Column string `json:"column" yaml:"column" csv:"column"`
	Value  string `json:"value" yaml:"value" csv:"value"`
}

// FacetDocument lists the options of one column
type FacetDocument struct {
	Column  string   `json:"column" yaml:"column"`
	Options []string `json:"options" yaml:"options"`
}

// facetDocuments orders the facet map by the sheet's column order. Columns
// unknown to the booking sheet follow in name order.
func facetDocuments(facets map[models.Column][]string) []FacetDocument {
	docs := make([]FacetDocument, 0, len(facets))
	seen := make(map[models.Column]bool, len(facets))

	for _, column := range models.AssignmentColumns() {
		if options, ok := facets[column]; ok {
			docs = append(docs, FacetDocument{Column: column.String(), Options: options})
			seen[column] = true
		}
	}

	var rest []models.Column
	for column := range facets {
		if !seen[column] {
			rest = append(rest, column)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, column := range rest {
		docs = append(docs, FacetDocument{Column: column.String(), Options: facets[column]})
	}

	return docs
}

func facetRows(docs []FacetDocument) []FacetRow {
	var rows []FacetRow
	for _, doc := range docs {
		for _, option := range doc.Options {
			rows = append(rows, FacetRow{Column: doc.Column, Value: option})
		}
	}
	return rows
}
