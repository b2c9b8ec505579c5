package source

import (
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/reader"
	"github.com/tsawler/tabula/tables"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
)

// lineTolerance is the vertical distance (points) under which two fragments
// of a cell belong to the same text line.
const lineTolerance = 2.0

// PDF opens report PDFs. Page count and structure are checked with pdfcpu,
// text is read with tabula. The table is rebuilt from text positions; pages
// whose text does not form one are handed to tabula's geometric detector.
type PDF struct {
	// Layout tunes the text-position table reconstruction.
	Layout Layout
	// Detector overrides the table detection settings.
	Detector tables.Config
}

var _ Opener = (*PDF)(nil)

// NewPDF returns a PDF opener with the default detector configuration.
func NewPDF() *PDF {
	return &PDF{Layout: DefaultLayout(), Detector: tables.DefaultConfig()}
}

// PageCount validates the document and returns its number of pages.
func (p *PDF) PageCount(path string) (int, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, fmt.Errorf("read page count: %w", err)
	}
	return n, nil
}

// Open opens an independent reader on the document.
func (p *PDF) Open(path string) (Document, error) {
	r, err := reader.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	d := tables.NewGeometricDetector()
	if err := d.Configure(p.Detector); err != nil {
		r.Close()
		return nil, fmt.Errorf("configure detector: %w", err)
	}
	return &pdfDoc{r: r, layout: p.Layout, detector: d}, nil
}

type pdfDoc struct {
	r        *reader.Reader
	layout   Layout
	detector *tables.GeometricDetector
}

func (d *pdfDoc) Grid(pageIndex int) (models.PageGrid, error) {
	page, err := d.r.GetPage(pageIndex)
	if err != nil {
		return nil, fmt.Errorf("get page: %w", err)
	}
	frags, err := d.r.ExtractTextFragments(page)
	if err != nil {
		return nil, fmt.Errorf("extract text: %w", err)
	}

	width, _ := page.Width()
	height, _ := page.Height()
	mp := model.NewPage(width, height)
	mp.Number = pageIndex + 1
	hasText := false
	for _, f := range frags {
		if strings.TrimSpace(f.Text) != "" {
			hasText = true
		}
		mp.RawText = append(mp.RawText, model.TextFragment{
			Text:     f.Text,
			BBox:     model.NewBBox(f.X, f.Y, f.Width, f.Height),
			FontSize: f.FontSize,
			FontName: f.FontName,
		})
	}
	if !hasText {
		return nil, ErrNoText
	}
	if grid := d.layout.Grid(mp.RawText); grid != nil {
		return grid, nil
	}

	found, err := d.detector.Detect(mp)
	if err != nil {
		return nil, fmt.Errorf("detect tables: %w", err)
	}
	table := largest(found)
	if table == nil {
		return nil, ErrNoTable
	}
	return GridFromTable(table, mp.RawText), nil
}

func (d *pdfDoc) Close() error {
	return d.r.Close()
}

func largest(found []*model.Table) *model.Table {
	var best *model.Table
	for _, t := range found {
		if t == nil || t.RowCount() == 0 {
			continue
		}
		if best == nil || t.RowCount()*t.ColCount() > best.RowCount()*best.ColCount() {
			best = t
		}
	}
	return best
}

// GridFromTable converts a detected table into cell texts. Fragments inside a
// cell are laid out line by line, top to bottom, lines joined with "\n".
func GridFromTable(t *model.Table, frags []model.TextFragment) models.PageGrid {
	grid := make(models.PageGrid, len(t.Rows))
	for i, row := range t.Rows {
		grid[i] = make([]string, len(row))
		for j, cell := range row {
			grid[i][j] = cellText(cell, frags)
		}
	}
	return grid
}

func cellText(cell model.Cell, frags []model.TextFragment) string {
	if cell.BBox.IsEmpty() {
		return cell.Text
	}
	var in []model.TextFragment
	for _, f := range frags {
		if cell.BBox.Contains(f.BBox.Center()) {
			in = append(in, f)
		}
	}
	if len(in) == 0 {
		return cell.Text
	}
	return joinLines(in, lineTolerance)
}
