package pvextract

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/merge"
	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
	"github.com/ukaji3/pvextract-go/pkg/pvextract/parser"
	"github.com/ukaji3/pvextract-go/pkg/pvextract/source"
)

// Result is the outcome of an extraction run.
type Result struct {
	// Table holds one merged record per student.
	Table *models.Table
	// Diagnostics lists the pages that failed, in page order.
	Diagnostics []*PageError

	PageCount      int // pages in the document
	PagesProcessed int // data pages handled, whatever the outcome
	PagesSkipped   int
	PagesFailed    int
}

// Extract reads the grade tables of every data page of the document at path,
// in parallel, and merges them into one table.
//
// Only opening the document can fail the run. A page that has no table or
// fails to parse contributes nothing and is reported in Result.Diagnostics.
func Extract(ctx context.Context, path string, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, err
	}
	pageCount, err := opts.Opener.PageCount(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}

	indices := opts.PageRange.Indices(pageCount)
	outcomes := make([]pageOutcome, len(indices))
	var done atomic.Int64

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for slot, idx := range indices {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			out := runPage(ctx, path, idx, opts)
			outcomes[slot] = out
			report := PageReport{
				Page:     idx + 1,
				Outcome:  out.kind,
				Students: out.records.Len(),
				Done:     int(done.Add(1)),
				Total:    len(indices),
			}
			if out.err != nil {
				report.Err = out.err
			}
			opts.OnPage(report)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{PageCount: pageCount}
	pages := make([]*models.PageRecords, 0, len(outcomes))
	for _, out := range outcomes {
		res.PagesProcessed++
		switch out.kind {
		case OutcomeSkipped:
			res.PagesSkipped++
		case OutcomeFailed:
			res.PagesFailed++
			res.Diagnostics = append(res.Diagnostics, out.err)
		}
		pages = append(pages, out.records)
	}
	res.Table = merge.Reduce(pages)
	return res, nil
}

type pageOutcome struct {
	kind    Outcome
	records *models.PageRecords
	err     *PageError
}

// runPage parses one page and classifies the way it ended. It never fails.
func runPage(ctx context.Context, path string, idx int, opts Options) pageOutcome {
	page := idx + 1
	log := opts.Logger.With("page", page)

	recs, component, err := parseWithTimeout(ctx, path, idx, opts)
	switch {
	case err == nil:
		log.Debug("page parsed", "students", recs.Len())
		return pageOutcome{kind: OutcomeParsed, records: recs}
	case source.IsSkip(err):
		log.Warn("page ignored", "reason", err.Error())
		return pageOutcome{kind: OutcomeSkipped, records: models.NewPageRecords(page)}
	default:
		pe := NewPageError(page, component, err)
		log.Error("page failed", "component", component, "error", err)
		return pageOutcome{kind: OutcomeFailed, records: models.NewPageRecords(page), err: pe}
	}
}

func parseWithTimeout(ctx context.Context, path string, idx int, opts Options) (*models.PageRecords, string, error) {
	if opts.PageTimeout <= 0 {
		return parsePage(opts.Opener, path, idx)
	}

	ctx, cancel := context.WithTimeout(ctx, opts.PageTimeout)
	defer cancel()

	type result struct {
		recs      *models.PageRecords
		component string
		err       error
	}
	ch := make(chan result, 1)
	go func() {
		recs, component, err := parsePage(opts.Opener, path, idx)
		ch <- result{recs, component, err}
	}()

	select {
	case r := <-ch:
		return r.recs, r.component, r.err
	case <-ctx.Done():
		return nil, "timeout", ctx.Err()
	}
}

// parsePage opens its own handle on the document, so that no reader state is
// shared between pages.
func parsePage(opener source.Opener, path string, idx int) (recs *models.PageRecords, component string, err error) {
	component = "open"
	defer func() {
		if r := recover(); r != nil {
			recs, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	doc, err := opener.Open(path)
	if err != nil {
		return nil, component, err
	}
	defer doc.Close()

	component = "detect"
	grid, err := doc.Grid(idx)
	if err != nil {
		return nil, component, err
	}

	component = "parse"
	recs, err = parser.ParsePage(grid, idx+1)
	return recs, component, err
}
