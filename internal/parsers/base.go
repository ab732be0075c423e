// Package parsers loads the booking sheet and the maintenance log from CSV
// exports, either local files or http(s) URLs such as a published
// spreadsheet export, or straight from a spreadsheet through the Google
// Sheets API (sheets://<spreadsheet-id>/<range>).
//
// Exports from spreadsheet tools are loose, so the header is not assumed
// to be on the first line: it is the first row with any non-blank cell.
// Every following row whose cell count differs from the header, or whose
// cells are all blank, is skipped and reported as a RowIssue. Header names
// and cells are trimmed.
//
// Example usage:
//
//	reader, err := parsers.NewSheetReader(parsers.DefaultParseConfig(), nil, log)
//	sources, err := reader.LoadSources(ctx,
//		parsers.AssignmentSource("bookings.csv"),
//		parsers.MaintenanceSource("https://example.com/export?format=csv"))
package parsers

import (
	"bytes"
	"context"
	"encoding/csv"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"fleet-reconciliation-service/internal/models"
	"fleet-reconciliation-service/pkg/errors"
	"fleet-reconciliation-service/pkg/logger"
)

// Sheet is one parsed source
type Sheet struct {
	Source     Source             `json:"source"`
	Header     []string           `json:"header"`
	HeaderLine int                `json:"header_line"`
	Rows       []models.Row       `json:"-"`
	Issues     []*errors.RowIssue `json:"issues,omitempty"`
}

// AssignmentRecords converts the rows into assignment records
func (s *Sheet) AssignmentRecords() []*models.AssignmentRecord {
	if s == nil {
		return nil
	}
	return models.NewAssignmentRecords(s.Rows)
}

// MaintenanceRecords converts the rows into maintenance records
func (s *Sheet) MaintenanceRecords() []*models.MaintenanceRecord {
	if s == nil {
		return nil
	}
	return models.NewMaintenanceRecords(s.Rows)
}

// Parse reads a sheet from r. The location of src is only used for error
// reporting.
func (sr *SheetReader) Parse(ctx context.Context, src Source, r io.Reader) (*Sheet, error) {
	reader := csv.NewReader(r)
	reader.Comma = sr.config.Delimiter
	reader.LazyQuotes = sr.config.LazyQuotes
	reader.FieldsPerRecord = -1

	b := sr.newSheetBuilder(src)
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			line := 0
			if pe, ok := err.(*csv.ParseError); ok {
				line = pe.Line
			}
			return nil, errors.ParseError(errors.CodeInvalidFormat, src.Location, line, err)
		}
		line, _ := reader.FieldPos(0)
		b.add(record, line)
	}

	return b.finish()
}

// ParseValues builds a sheet from cell values that were already split into
// rows, such as a Sheets API value range. Row i is reported as line i+1.
func (sr *SheetReader) ParseValues(ctx context.Context, src Source, values [][]string) (*Sheet, error) {
	b := sr.newSheetBuilder(src)
	for i, record := range values {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b.add(record, i+1)
	}
	return b.finish()
}

// sheetBuilder applies header detection and row skipping to raw records
type sheetBuilder struct {
	src       Source
	delimiter string
	sheet     *Sheet
	log       logger.Logger
}

func (sr *SheetReader) newSheetBuilder(src Source) *sheetBuilder {
	return &sheetBuilder{
		src:       src,
		delimiter: string(sr.config.Delimiter),
		sheet: &Sheet{
			Source: src,
			Rows:   make([]models.Row, 0),
		},
		log: sr.logger.WithField("source", src.Name),
	}
}

func (b *sheetBuilder) add(record []string, line int) {
	sheet := b.sheet
	cells := trimCells(record)

	if sheet.Header == nil {
		if isBlank(cells) {
			return
		}
		sheet.Header = cells
		sheet.HeaderLine = line
		b.log.WithField("header", cells).Debug("Detected header row")
		return
	}

	if len(cells) != len(sheet.Header) {
		sheet.Issues = append(sheet.Issues,
			errors.RowLengthIssue(b.src.Location, line, len(cells), len(sheet.Header), strings.Join(record, b.delimiter)))
		return
	}
	if isBlank(cells) {
		sheet.Issues = append(sheet.Issues, errors.BlankRowIssue(b.src.Location, line))
		return
	}

	row := make(models.Row, len(cells))
	for i, name := range sheet.Header {
		row[name] = cells[i]
	}
	sheet.Rows = append(sheet.Rows, row)
}

func (b *sheetBuilder) finish() (*Sheet, error) {
	sheet := b.sheet
	if sheet.Header == nil {
		return nil, errors.ParseError(errors.CodeNoHeader, b.src.Location, 0, nil)
	}

	if missing := errors.MissingColumnError(b.src.Location, b.src.Required, sheet.Header); missing != nil {
		return nil, missing
	}

	for _, issue := range sheet.Issues {
		b.log.WithFields(logger.Fields{
			"line": issue.Line,
			"code": issue.Code,
		}).Warn(issue.Reason)
	}

	return sheet, nil
}

// ParseBytes validates the encoding of data and parses it
func (sr *SheetReader) ParseBytes(ctx context.Context, src Source, data []byte) (*Sheet, error) {
	if sr.config.ValidateEncoding && !utf8.Valid(data) {
		return nil, errors.ParseError(errors.CodeEncodingError, src.Location, 0, nil)
	}
	return sr.Parse(ctx, src, bytes.NewReader(data))
}

func trimCells(record []string) []string {
	cells := make([]string, len(record))
	for i, cell := range record {
		cells[i] = strings.TrimFunc(cell, isTrimmable)
	}
	return cells
}

func isTrimmable(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

func isBlank(cells []string) bool {
	for _, cell := range cells {
		if cell != "" {
			return false
		}
	}
	return true
}
