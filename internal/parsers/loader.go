package parsers

import (
	"context"

	"golang.org/x/sync/errgroup"

	"fleet-reconciliation-service/pkg/errors"
)

// Sources holds both sheets of one ingestion
type Sources struct {
	Assignments *Sheet
	Maintenance *Sheet
}

// Issues returns the skipped rows of both sheets
func (s *Sources) Issues() []*errors.RowIssue {
	var issues []*errors.RowIssue
	if s.Assignments != nil {
		issues = append(issues, s.Assignments.Issues...)
	}
	if s.Maintenance != nil {
		issues = append(issues, s.Maintenance.Issues...)
	}
	return issues
}

// LoadSources reads both sources concurrently and returns once both are
// loaded. The first failure cancels the other read. A maintenance source
// without a location yields an empty maintenance sheet.
func (sr *SheetReader) LoadSources(ctx context.Context, assignments, maintenance Source) (*Sources, error) {
	g, gctx := errgroup.WithContext(ctx)
	out := &Sources{}

	g.Go(func() error {
		sheet, err := sr.Read(gctx, assignments)
		if err != nil {
			return err
		}
		out.Assignments = sheet
		return nil
	})

	if maintenance.IsSet() {
		g.Go(func() error {
			sheet, err := sr.Read(gctx, maintenance)
			if err != nil {
				return err
			}
			out.Maintenance = sheet
			return nil
		})
	} else {
		out.Maintenance = &Sheet{Source: maintenance}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
