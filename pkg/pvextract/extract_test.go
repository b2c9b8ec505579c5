package pvextract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
	"github.com/ukaji3/pvextract-go/pkg/pvextract/parser"
	"github.com/ukaji3/pvextract-go/pkg/pvextract/source"
)

var (
	cover = models.PageGrid{{"Procès-verbal"}, {"session 1"}}
	stats = models.PageGrid{{"Statistiques"}, {"moyenne"}}
)

func reportFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pv.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))
	return path
}

func testOptions(opener source.Opener) Options {
	opts := DefaultOptions()
	opts.Opener = opener
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return opts
}

func TestExtract(t *testing.T) {
	page2 := models.PageGrid{
		{"ID", "Résultat", "UE1 I"},
		{"N:12345\nDupont", "12.5 / 20\nACQ something", "15 / 15"},
		{"N:222\nMartin", "AB\nDEF", "AB 0"},
		{"note max\n20", "20", "20"},
	}
	page3 := models.PageGrid{
		{"ID", "Résultat", "UE2 L Anglais"},
		{"N:333\nBernard", "8\nAJ", "8"},
		{"N:12345\nDupont", "13\nADM", "16.5"},
	}
	opener := &source.Static{Pages: []models.PageGrid{cover, page2, page3, stats}}

	res, err := Extract(context.Background(), reportFile(t), testOptions(opener))
	require.NoError(t, err)

	assert.Equal(t, 4, res.PageCount)
	assert.Equal(t, 2, res.PagesProcessed)
	assert.Empty(t, res.Diagnostics)
	assert.Equal(t, []string{"12345", "222", "333"}, res.Table.IDs())
	assert.Equal(t, []string{models.FieldName, models.FieldAverage, models.FieldResult, "UE1 I", "UE2 L Anglais"}, res.Table.Columns())

	rec, _ := res.Table.Get("12345")
	avg, _ := rec.Get(models.FieldAverage)
	assert.Equal(t, models.Number(13), avg, "later page wins")
	ue1, _ := rec.Get("UE1 I")
	assert.Equal(t, models.Number(15), ue1)

	rec, _ = res.Table.Get("222")
	avg, _ = rec.Get(models.FieldAverage)
	assert.Equal(t, models.Number(0), avg)
	ue1, _ = rec.Get("UE1 I")
	assert.Equal(t, models.Status("AB 0"), ue1)
}

func TestExtractPageOrderNotCompletionOrder(t *testing.T) {
	header := []string{"ID", "UE1 I"}
	pages := []models.PageGrid{cover}
	for i := 0; i < 16; i++ {
		pages = append(pages, models.PageGrid{header, {"N:1\nAlpha", models.FormatNumber(float64(i))}})
	}
	pages = append(pages, stats)

	opts := testOptions(&slowOpener{Static: source.Static{Pages: pages}})
	opts.Workers = 8
	res, err := Extract(context.Background(), reportFile(t), opts)
	require.NoError(t, err)

	rec, _ := res.Table.Get("1")
	v, _ := rec.Get("UE1 I")
	assert.Equal(t, models.Number(15), v)
}

func TestExtractTwoPagesIsEmpty(t *testing.T) {
	opener := &source.Static{Pages: []models.PageGrid{cover, stats}}

	res, err := Extract(context.Background(), reportFile(t), testOptions(opener))
	require.NoError(t, err)
	assert.Equal(t, 0, res.Table.Len())
	assert.Equal(t, 0, res.PagesProcessed)
}

func TestExtractIsolatesPageFailures(t *testing.T) {
	good := models.PageGrid{{"ID", "UE1 I"}, {"N:1\nAlpha", "12"}}
	bad := models.PageGrid{{"ID", "UE1 I"}, {"N:2\nBeta", "twelve"}}
	opener := &source.Static{Pages: []models.PageGrid{cover, bad, nil, good, stats}}

	var mu sync.Mutex
	var reports []PageReport
	opts := testOptions(opener)
	opts.OnPage = func(r PageReport) {
		mu.Lock()
		defer mu.Unlock()
		reports = append(reports, r)
	}

	res, err := Extract(context.Background(), reportFile(t), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"1"}, res.Table.IDs())
	assert.Equal(t, 3, res.PagesProcessed)
	assert.Equal(t, 1, res.PagesSkipped)
	assert.Equal(t, 1, res.PagesFailed)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, 2, res.Diagnostics[0].Page)
	assert.Equal(t, "parse", res.Diagnostics[0].Component)
	assert.ErrorIs(t, res.Diagnostics[0], parser.ErrUnparseableGrade)

	require.Len(t, reports, 3)
	outcomes := map[int]Outcome{}
	for _, r := range reports {
		outcomes[r.Page] = r.Outcome
		assert.Equal(t, 3, r.Total)
	}
	assert.Equal(t, map[int]Outcome{2: OutcomeFailed, 3: OutcomeSkipped, 4: OutcomeParsed}, outcomes)
}

func TestExtractRecoversPanics(t *testing.T) {
	opener := &panicOpener{Static: source.Static{Pages: []models.PageGrid{cover, {{"ID"}}, stats}}}

	res, err := Extract(context.Background(), reportFile(t), testOptions(opener))
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "detect", res.Diagnostics[0].Component)
}

func TestExtractPageTimeout(t *testing.T) {
	opener := &slowOpener{Static: source.Static{Pages: []models.PageGrid{cover, {{"ID"}}, stats}}, delay: time.Second}
	opts := testOptions(opener)
	opts.PageTimeout = 10 * time.Millisecond

	res, err := Extract(context.Background(), reportFile(t), opts)
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, "timeout", res.Diagnostics[0].Component)
	assert.ErrorIs(t, res.Diagnostics[0], context.DeadlineExceeded)
}

func TestExtractRunFatalErrors(t *testing.T) {
	opts := testOptions(&source.Static{})

	_, err := Extract(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"), opts)
	assert.ErrorIs(t, err, ErrFileNotFound)

	opts.Opener = brokenOpener{}
	_, err = Extract(context.Background(), reportFile(t), opts)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestExtractCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opener := &source.Static{Pages: []models.PageGrid{cover, {{"ID"}}, stats}}
	_, err := Extract(ctx, reportFile(t), testOptions(opener))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPageRangeIndices(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3}, DefaultPageRange().Indices(5))
	assert.Empty(t, DefaultPageRange().Indices(2))
	assert.Empty(t, DefaultPageRange().Indices(0))
	assert.Equal(t, []int{0, 1}, PageRange{}.Indices(2))
	assert.Equal(t, []int{2}, PageRange{SkipLeading: 2, SkipTrailing: -1}.Indices(3))
}

// slowOpener delays later pages more, so tasks finish out of page order.
type slowOpener struct {
	source.Static
	delay time.Duration
}

func (o *slowOpener) Open(path string) (source.Document, error) {
	doc, err := o.Static.Open(path)
	return slowDoc{Document: doc, delay: o.delay}, err
}

type slowDoc struct {
	source.Document
	delay time.Duration
}

func (d slowDoc) Grid(i int) (models.PageGrid, error) {
	if d.delay > 0 {
		time.Sleep(d.delay)
	} else {
		time.Sleep(time.Duration(20-i) * time.Millisecond)
	}
	return d.Document.Grid(i)
}

type panicOpener struct {
	source.Static
}

func (o *panicOpener) Open(string) (source.Document, error) {
	return panicDoc{}, nil
}

type panicDoc struct{}

func (panicDoc) Grid(int) (models.PageGrid, error) { panic("corrupt content stream") }
func (panicDoc) Close() error                      { return nil }

type brokenOpener struct{}

func (brokenOpener) PageCount(string) (int, error) { return 0, errors.New("no xref table") }
func (brokenOpener) Open(string) (source.Document, error) {
	return nil, errors.New("no xref table")
}
