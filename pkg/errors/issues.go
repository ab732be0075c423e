package errors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// RowIssue is a source row that was skipped during ingestion. Issues are
// recoverable: the rest of the sheet is still loaded.
type RowIssue struct {
	Source  string    `json:"source"`
	Line    int       `json:"line"`
	Code    ErrorCode `json:"code"`
	Reason  string    `json:"reason"`
	Content string    `json:"content,omitempty"`
}

// Error implements the error interface
func (i *RowIssue) Error() string {
	return fmt.Sprintf("%s:%d: %s", filepath.Base(i.Source), i.Line, i.Reason)
}

// RowLengthIssue reports a row whose cell count differs from the header
func RowLengthIssue(source string, line, got, want int, content string) *RowIssue {
	return &RowIssue{
		Source:  source,
		Line:    line,
		Code:    CodeRowLength,
		Reason:  fmt.Sprintf("row has %d cells, header has %d", got, want),
		Content: content,
	}
}

// BlankRowIssue reports a row with no non-blank cell
func BlankRowIssue(source string, line int) *RowIssue {
	return &RowIssue{
		Source: source,
		Line:   line,
		Code:   CodeBlankRow,
		Reason: "row is blank",
	}
}

// IssueCollector gathers row issues for one or more sources
type IssueCollector struct {
	issues []*RowIssue
}

// NewIssueCollector creates an empty collector
func NewIssueCollector() *IssueCollector {
	return &IssueCollector{issues: make([]*RowIssue, 0)}
}

// Add records an issue; nil is ignored
func (c *IssueCollector) Add(issue *RowIssue) {
	if issue != nil {
		c.issues = append(c.issues, issue)
	}
}

// Issues returns the collected issues in the order they were added
func (c *IssueCollector) Issues() []*RowIssue {
	return c.issues
}

// HasIssues returns true if any issue has been collected
func (c *IssueCollector) HasIssues() bool {
	return len(c.issues) > 0
}

// CountByCode returns the number of issues per code
func (c *IssueCollector) CountByCode() map[ErrorCode]int {
	counts := make(map[ErrorCode]int)
	for _, issue := range c.issues {
		counts[issue.Code]++
	}
	return counts
}

// MissingColumnError reports required columns absent from a header row.
// Header names are compared after trimming, case-sensitively, because
// column lookups are exact.
func MissingColumnError(source string, required []string, header []string) *ReconcilerError {
	missing := findMissingColumns(required, header)
	if len(missing) == 0 {
		return nil
	}

	return New(CategoryParse, CodeMissingColumn,
		fmt.Sprintf("missing required columns in %s: %s", source, strings.Join(missing, ", "))).
		WithSuggestion("check the header row of the sheet, column names must match exactly").
		WithContext("source", source).
		WithContext("missing", missing).
		WithContext("header", header)
}

func findMissingColumns(required, header []string) []string {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[strings.TrimSpace(col)] = true
	}

	var missing []string
	for _, col := range required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// FormatIssuesForUser summarises row issues grouped by source. At most
// perSource issues are listed for each source.
func FormatIssuesForUser(issues []*RowIssue, perSource int) string {
	if len(issues) == 0 {
		return "No rows skipped"
	}

	bySource := make(map[string][]*RowIssue)
	var sources []string
	for _, issue := range issues {
		if _, seen := bySource[issue.Source]; !seen {
			sources = append(sources, issue.Source)
		}
		bySource[issue.Source] = append(bySource[issue.Source], issue)
	}
	sort.Strings(sources)

	lines := []string{fmt.Sprintf("Skipped %d rows:", len(issues))}
	for _, source := range sources {
		list := bySource[source]
		lines = append(lines, fmt.Sprintf("  %s (%d rows)", filepath.Base(source), len(list)))
		for i, issue := range list {
			if i == perSource {
				lines = append(lines, fmt.Sprintf("    ... and %d more", len(list)-perSource))
				break
			}
			lines = append(lines, fmt.Sprintf("    line %d: %s", issue.Line, issue.Reason))
		}
	}
	return strings.Join(lines, "\n")
}
