// Package pvextract extracts per-student grade records from multi-page grade
// reports and merges them into one table.
package pvextract

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/source"
)

// PageRange selects the pages holding grade tables. Report templates open
// with a cover page and close with a statistics page.
type PageRange struct {
	// SkipLeading is the number of pages ignored at the start.
	SkipLeading int
	// SkipTrailing is the number of pages ignored at the end.
	SkipTrailing int
}

// DefaultPageRange skips the cover and the statistics page.
func DefaultPageRange() PageRange {
	return PageRange{SkipLeading: 1, SkipTrailing: 1}
}

// Indices returns the 0-based indices of the data pages of a document with
// pageCount pages.
func (r PageRange) Indices(pageCount int) []int {
	first := max(r.SkipLeading, 0)
	last := pageCount - max(r.SkipTrailing, 0)
	if last <= first {
		return nil
	}
	out := make([]int, 0, last-first)
	for i := first; i < last; i++ {
		out = append(out, i)
	}
	return out
}

// Outcome is the way a page task ended.
type Outcome string

const (
	OutcomeParsed  Outcome = "parsed"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// PageReport describes one finished page task.
type PageReport struct {
	Page     int // 1-based page number
	Outcome  Outcome
	Students int
	Err      error
	Done     int // page tasks finished so far, this one included
	Total    int
}

// Options configures extraction behavior.
type Options struct {
	// PageRange selects the data pages. The zero value keeps every page;
	// DefaultOptions skips the cover and statistics pages.
	PageRange PageRange
	// Workers bounds the number of pages parsed at once.
	// Defaults to the number of CPUs.
	Workers int
	// PageTimeout aborts a page task that takes longer. Zero means no limit.
	PageTimeout time.Duration
	// Opener opens the document. Defaults to source.NewPDF().
	Opener source.Opener
	// Logger receives page diagnostics. Defaults to slog.Default().
	Logger *slog.Logger
	// OnPage is called after every page task, from the task goroutine.
	OnPage func(PageReport)
}

// DefaultOptions returns default extraction options.
func DefaultOptions() Options {
	return Options{
		PageRange: DefaultPageRange(),
		Workers:   runtime.NumCPU(),
	}
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = runtime.NumCPU()
	}
	if o.Opener == nil {
		o.Opener = source.NewPDF()
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.OnPage == nil {
		o.OnPage = func(PageReport) {}
	}
	return o
}
