package reporter

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"fleet-reconciliation-service/internal/analytics"
	"fleet-reconciliation-service/internal/filter"
	"fleet-reconciliation-service/internal/reconciler"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

// tableData is one console table
type tableData struct {
	Headers []string
	Rows    [][]string
	// Alignment per column; missing entries use the tablewriter default
	Alignment []tw.Align
}

func renderTable(w io.Writer, data tableData) error {
	config := tablewriter.Config{}
	if len(data.Alignment) > 0 {
		config.Header.Alignment = tw.CellAlignment{PerColumn: data.Alignment}
		config.Row.Alignment = tw.CellAlignment{PerColumn: data.Alignment}
	}

	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))

	headers := make([]any, len(data.Headers))
	for i, h := range data.Headers {
		headers[i] = h
	}
	table.Header(headers...)

	for _, row := range data.Rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}

	return table.Render()
}

func section(w io.Writer, title string) {
	fmt.Fprintf(w, "\n=== %s ===\n", strings.ToUpper(title))
}

// generateConsoleReport generates a human-readable console report
func (rg *ReportGenerator) generateConsoleReport(view *reconciler.ViewResult, writer io.Writer) error {
	fmt.Fprintf(writer, "FLEET RECONCILIATION REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n", view.GeneratedAt.Format(time.RFC3339))
	if description := describeFilters(view.State); description != "" {
		fmt.Fprintf(writer, "Filters: %s\n", description)
	}

	section(writer, "summary")
	if err := renderTable(writer, summaryTable(view.Summary)); err != nil {
		return err
	}

	if rg.config.IncludeOther && len(view.Summary.Other) > 0 {
		section(writer, "other bookings")
		if err := renderTable(writer, otherTable(view.Summary.OtherBuckets())); err != nil {
			return err
		}
	}

	if rg.config.IncludeResults {
		section(writer, "records")
		if len(view.Results) == 0 {
			fmt.Fprintln(writer, "No records match the current filters.")
		} else {
			rows := ResultRows(rg.limit(view.Results))
			if err := renderTable(writer, recordsTable(rows)); err != nil {
				return err
			}
			if hidden := len(view.Results) - len(rows); hidden > 0 {
				fmt.Fprintf(writer, "... and %d more records\n", hidden)
			}
		}
	}

	if rg.config.IncludeDuplicates && len(view.Duplicates) > 0 {
		section(writer, "duplicate bookings")
		data := tableData{
			Headers:   []string{"Group", "Booking", "Records"},
			Alignment: []tw.Align{tw.AlignLeft, tw.AlignLeft, tw.AlignLeft},
		}
		for _, group := range view.Duplicates {
			indices := make([]string, len(group.Results))
			for i, result := range group.Results {
				indices[i] = strconv.Itoa(result.Record.Index)
			}
			data.Rows = append(data.Rows, []string{group.GroupID, group.BookingNumber, strings.Join(indices, ", ")})
		}
		if err := renderTable(writer, data); err != nil {
			return err
		}
	}

	return nil
}

func summaryTable(summary *analytics.Summary) tableData {
	other := 0
	for _, count := range summary.Other {
		other += count
	}

	row := func(metric string, value int, scope string) []string {
		return []string{metric, strconv.Itoa(value), scope}
	}

	return tableData{
		Headers:   []string{"Metric", "Count", "Scope"},
		Alignment: []tw.Align{tw.AlignLeft, tw.AlignRight, tw.AlignLeft},
		Rows: [][]string{
			row("Records shown", summary.Total, "view"),
			row("Numeric bookings", summary.Numeric, "all"),
			row("Daily", summary.Daily, "all"),
			row("Monthly", summary.Monthly, "all"),
			row("Leasing", summary.Leasing, "all"),
			row("Other", other, "all"),
			row("Mismatches", summary.Mismatches, "all"),
			row("Ready to switch back", summary.ReadyToSwitchBack, "all"),
			row("Mismatches shown", summary.ViewMismatches, "view"),
			row("Ready to switch back shown", summary.ViewReadyToSwitchBack, "view"),
			row("Duplicate bookings shown", summary.ViewDuplicates, "view"),
		},
	}
}

func otherTable(buckets []analytics.OtherBucket) tableData {
	data := tableData{
		Headers:   []string{"Booking", "Count"},
		Alignment: []tw.Align{tw.AlignLeft, tw.AlignRight},
	}
	for _, bucket := range buckets {
		data.Rows = append(data.Rows, []string{titleCaser.String(bucket.Key), strconv.Itoa(bucket.Count)})
	}
	return data
}

func recordsTable(rows []ResultRow) tableData {
	data := tableData{
		Headers: []string{"#", "Booking", "Contract", "Customer", "Branch", "EJAR", "INVYGO", "Model", "Pick-up", "Category", "Status", "Dup"},
	}
	for _, row := range rows {
		duplicate := ""
		if row.Duplicate {
			duplicate = "yes"
		}
		data.Rows = append(data.Rows, []string{
			strconv.Itoa(row.Index),
			row.BookingNumber,
			row.ContractNumber,
			row.Customer,
			row.PickupBranch,
			row.Ejar,
			row.Invygo,
			row.Model,
			row.PickupDate,
			titleCaser.String(row.Category),
			statusLabel(row.Status),
			duplicate,
		})
	}
	return data
}

func statusLabel(status string) string {
	switch status {
	case "mismatch":
		return "MISMATCH"
	case "ready":
		return "READY"
	default:
		return ""
	}
}

func describeFilters(state filter.State) string {
	var parts []string
	if state.IsSearchMode() {
		parts = append(parts, fmt.Sprintf("search %q", state.Search()))
	} else {
		for _, column := range state.FacetColumns() {
			parts = append(parts, fmt.Sprintf("%s in [%s]", column, strings.Join(state.Facet(column), ", ")))
		}
	}
	if state.MismatchOnly() {
		parts = append(parts, "mismatches only")
	}
	if state.ReadyOnly() && !state.IsSearchMode() {
		parts = append(parts, "ready to switch back only")
	}
	return strings.Join(parts, "; ")
}

func (rg *ReportGenerator) generateConsoleDaily(daily *analytics.Daily, writer io.Writer) error {
	fmt.Fprintf(writer, "DAILY REPORT\n")

	section(writer, "fleet by model")
	counts := tableData{
		Headers:   []string{"Model", "Cars"},
		Alignment: []tw.Align{tw.AlignLeft, tw.AlignRight},
	}
	for _, mc := range daily.ModelCounts {
		counts.Rows = append(counts.Rows, []string{mc.Model, strconv.Itoa(mc.Count)})
	}
	counts.Rows = append(counts.Rows, []string{"Total", strconv.Itoa(daily.TotalCars)})
	if err := renderTable(writer, counts); err != nil {
		return err
	}

	if daily.SelectedDate == "" {
		fmt.Fprintln(writer, "\nNo date selected.")
		return nil
	}

	section(writer, "booked on "+daily.SelectedDate.String())
	if len(daily.Booked) == 0 {
		fmt.Fprintln(writer, "No cars picked up on this date.")
		return nil
	}

	booked := tableData{
		Headers: []string{"#", "Booking", "Model", "INVYGO", "Pick-up"},
	}
	for _, car := range daily.Booked {
		booked.Rows = append(booked.Rows, []string{
			strconv.Itoa(car.Index),
			car.BookingNumber,
			car.Model,
			car.InvygoID,
			car.PickupDate,
		})
	}
	return renderTable(writer, booked)
}

func (rg *ReportGenerator) generateConsoleFacets(docs []FacetDocument, writer io.Writer) error {
	data := tableData{
		Headers:   []string{"Column", "Options", "Values"},
		Alignment: []tw.Align{tw.AlignLeft, tw.AlignRight, tw.AlignLeft},
	}
	for _, doc := range docs {
		data.Rows = append(data.Rows, []string{doc.Column, strconv.Itoa(len(doc.Options)), strings.Join(doc.Options, ", ")})
	}
	return renderTable(writer, data)
}
