package source

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/tabula/model"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
)

// minLayoutColumns is the smallest header accepted as a report table: the
// identity column plus at least one grade or summary column.
const minLayoutColumns = 2

// Layout rebuilds the report table from text positions alone. The header row
// is the topmost text line with the most columns; its cells fix the column
// x-ranges, and the lines below it are grouped into rows by vertical gaps.
type Layout struct {
	// LineTolerance is the vertical distance, in points, under which two
	// fragments share a text line.
	LineTolerance float64
	// WordGap, in ems, joins neighbouring header fragments into one column.
	WordGap float64
	// RowGap, in ems, is the gap between text lines that starts a new row.
	// Lines of a multi-line cell are closer than this.
	RowGap float64
}

// DefaultLayout returns the layout settings used for report PDFs.
func DefaultLayout() Layout {
	return Layout{LineTolerance: lineTolerance, WordGap: 1.0, RowGap: 1.6}
}

type textLine struct {
	y     float64
	size  float64
	frags []model.TextFragment // left to right
}

type span struct{ left, right float64 }

// Grid returns the table found in frags, or nil when the text does not form
// a header followed by at least one row.
func (l Layout) Grid(frags []model.TextFragment) models.PageGrid {
	lines := l.lines(frags)

	header, bounds := -1, []float64(nil)
	for i, line := range lines {
		if b := l.bounds(line); header < 0 || len(b) > len(bounds) {
			header, bounds = i, b
		}
	}
	if header < 0 || len(bounds)+1 < minLayoutColumns {
		return nil
	}

	rows := l.rows(lines[header:])
	if len(rows) < 2 {
		return nil
	}
	grid := make(models.PageGrid, len(rows))
	for i, row := range rows {
		cells := make([][]model.TextFragment, len(bounds)+1)
		for _, line := range row {
			for _, f := range line.frags {
				col := sort.SearchFloat64s(bounds, f.BBox.Center().X)
				cells[col] = append(cells[col], f)
			}
		}
		grid[i] = make([]string, len(cells))
		for col, in := range cells {
			grid[i][col] = joinLines(in, l.LineTolerance)
		}
	}
	return grid
}

// lines groups non-blank fragments into text lines, top line first.
func (l Layout) lines(frags []model.TextFragment) []textLine {
	in := make([]model.TextFragment, 0, len(frags))
	for _, f := range frags {
		if strings.TrimSpace(f.Text) != "" {
			in = append(in, f)
		}
	}
	// PDF y grows upwards.
	sort.SliceStable(in, func(a, b int) bool { return in[a].BBox.Y > in[b].BBox.Y })

	var out []textLine
	for _, f := range in {
		n := len(out)
		if n == 0 || math.Abs(f.BBox.Y-out[n-1].y) > l.LineTolerance {
			out = append(out, textLine{y: f.BBox.Y})
			n++
		}
		out[n-1].frags = append(out[n-1].frags, f)
		out[n-1].size = max(out[n-1].size, fontSize(f))
	}
	for _, line := range out {
		sort.SliceStable(line.frags, func(a, b int) bool { return line.frags[a].BBox.X < line.frags[b].BBox.X })
	}
	return out
}

// bounds returns the x positions separating the columns of a header line,
// taken halfway between neighbouring header cells.
func (l Layout) bounds(line textLine) []float64 {
	var spans []span
	for _, f := range line.frags {
		left, right := f.BBox.X, f.BBox.X+f.BBox.Width
		if n := len(spans); n > 0 && left-spans[n-1].right <= l.WordGap*fontSize(f) {
			spans[n-1].right = max(spans[n-1].right, right)
			continue
		}
		spans = append(spans, span{left, right})
	}
	out := make([]float64, 0, max(len(spans)-1, 0))
	for i := 1; i < len(spans); i++ {
		out = append(out, (spans[i-1].right+spans[i].left)/2)
	}
	return out
}

// rows splits lines, header line first, where the vertical gap exceeds RowGap.
func (l Layout) rows(lines []textLine) [][]textLine {
	var out [][]textLine
	for i, line := range lines {
		if i == 0 || lines[i-1].y-line.y > l.RowGap*max(lines[i-1].size, line.size) {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], line)
	}
	return out
}

func fontSize(f model.TextFragment) float64 {
	return max(f.FontSize, f.BBox.Height)
}

// joinLines lays out the fragments of one cell line by line, top to bottom,
// words joined with " " and lines with "\n".
func joinLines(in []model.TextFragment, tolerance float64) string {
	if len(in) == 0 {
		return ""
	}
	in = append([]model.TextFragment(nil), in...)
	sort.SliceStable(in, func(a, b int) bool { return in[a].BBox.Y > in[b].BBox.Y })

	var lines [][]model.TextFragment
	lineY := math.Inf(1)
	for _, f := range in {
		if len(lines) == 0 || math.Abs(f.BBox.Y-lineY) > tolerance {
			lines = append(lines, nil)
			lineY = f.BBox.Y
		}
		lines[len(lines)-1] = append(lines[len(lines)-1], f)
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		sort.SliceStable(line, func(a, b int) bool { return line[a].BBox.X < line[b].BBox.X })
		words := make([]string, 0, len(line))
		for _, f := range line {
			if s := strings.TrimSpace(f.Text); s != "" {
				words = append(words, s)
			}
		}
		if len(words) > 0 {
			out = append(out, strings.Join(words, " "))
		}
	}
	return strings.Join(out, "\n")
}
