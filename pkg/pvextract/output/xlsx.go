// Package output renders extracted grade tables.
package output

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
)

const (
	// SheetName is the name of the single sheet of a rendered workbook.
	SheetName = "Sheet1"
	// SimpleSuffix is appended to the base name of the simple view file.
	SimpleSuffix = "-simple"

	widthPadding = 4
)

// FileName derives an output path from the source document path: the
// extension is replaced by ext, with suffix inserted before it.
func FileName(src, suffix, ext string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + suffix + ext
}

type styleKey struct {
	fill   string
	font   string
	bold   bool
	header bool
}

type sheetWriter struct {
	f       *excelize.File
	palette Palette
	styles  map[styleKey]int
}

// WriteXLSX renders a view of the table as a styled workbook at path.
// Column A holds the student numbers; the other columns follow view.Columns.
func WriteXLSX(path string, view models.View, palette Palette) error {
	f := excelize.NewFile()
	defer f.Close()

	w := &sheetWriter{f: f, palette: palette, styles: make(map[styleKey]int)}
	if err := w.write(view); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func (w *sheetWriter) write(view models.View) error {
	// Field "" is the student number column.
	fields := append([]string{""}, view.Columns...)
	widths := make([]int, len(fields))

	for col, field := range fields {
		colors := w.palette.Header(field)
		style, err := w.style(styleKey{fill: colors.Fill, font: colors.Font, bold: true, header: true})
		if err != nil {
			return err
		}
		if err := w.set(col+1, 1, models.Text(models.DisplayName(field)), style); err != nil {
			return err
		}
	}
	if err := w.f.SetRowHeight(SheetName, 1, w.palette.HeaderRow); err != nil {
		return err
	}

	for i, rec := range view.Table.Records() {
		row := i + 2
		fill := w.palette.RowFill(row)
		for col, field := range fields {
			v, ok := models.Text(rec.ID), true
			if field != "" {
				v, ok = rec.Get(field)
			}
			key := w.bodyKey(field, fill, v)
			style, err := w.style(key)
			if err != nil {
				return err
			}
			if !ok {
				v = models.Text("")
			}
			if err := w.set(col+1, row, v, style); err != nil {
				return err
			}
			if ok && !v.IsZero() {
				widths[col] = max(widths[col], utf8.RuneCountInString(v.String()))
			}
		}
	}

	for col, width := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(SheetName, name, name, float64(width+widthPadding)); err != nil {
			return err
		}
	}
	return nil
}

// bodyKey picks the style of a data cell. The Average column is filled by
// pass/fail, other numeric grades only change font color.
func (w *sheetWriter) bodyKey(field, fill string, v models.Value) styleKey {
	key := styleKey{fill: fill}
	f, isNum := v.Float()
	if !isNum || field == "" {
		return key
	}
	pass := f >= w.palette.PassMark
	if field == models.FieldAverage {
		key.bold = true
		key.fill = w.palette.FailFill
		if pass {
			key.fill = w.palette.PassFill
		}
		return key
	}
	key.font = w.palette.FailFont
	if pass {
		key.font = w.palette.PassFont
	}
	return key
}

func (w *sheetWriter) style(key styleKey) (int, error) {
	if id, ok := w.styles[key]; ok {
		return id, nil
	}
	s := &excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{key.fill}},
	}
	if key.font != "" || key.bold {
		s.Font = &excelize.Font{Bold: key.bold, Color: key.font}
	}
	if key.header {
		s.Alignment = &excelize.Alignment{WrapText: true, Horizontal: "center", Vertical: "center"}
	}
	id, err := w.f.NewStyle(s)
	if err != nil {
		return 0, fmt.Errorf("create style: %w", err)
	}
	w.styles[key] = id
	return id, nil
}

func (w *sheetWriter) set(col, row int, v models.Value, style int) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	switch v.Kind {
	case models.KindNumber:
		err = w.f.SetCellFloat(SheetName, cell, v.Num, -1, 64)
	default:
		if s := v.String(); s != "" {
			err = w.f.SetCellStr(SheetName, cell, s)
		}
	}
	if err != nil {
		return err
	}
	return w.f.SetCellStyle(SheetName, cell, cell, style)
}
