package parser

import (
	"fmt"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
)

// ParsePage extracts the partial student records of one page table.
// page is the 1-based page number, recorded on the result for diagnostics.
// The first error aborts the page: callers drop the whole page rather than
// keep a half-parsed one.
func ParsePage(grid models.PageGrid, page int) (*models.PageRecords, error) {
	out := models.NewPageRecords(page)
	if len(grid) == 0 {
		return out, nil
	}

	header := grid.Header()
	for rowIdx, row := range grid[1:] {
		if len(row) == 0 {
			continue
		}
		if IsFooter(row[0]) {
			break
		}
		if err := parseRow(out, header, row); err != nil {
			return models.NewPageRecords(page), fmt.Errorf("row %d: %w", rowIdx+1, err)
		}
	}
	return out, nil
}

func parseRow(out *models.PageRecords, header, row []string) error {
	id, name, err := ParseIdentity(row[0])
	if err != nil {
		return err
	}
	rec, created := out.GetOrCreate(id)
	if created {
		rec.Set(models.FieldName, models.Text(name))
	}

	for col := 1; col < len(row) && col < len(header); col++ {
		column := header[col]
		if column == "" {
			continue
		}
		if IsSummaryHeader(column) {
			avg, result, err := ParseSummary(row[col])
			if err != nil {
				return fmt.Errorf("column %q: %w", column, err)
			}
			rec.Set(models.FieldAverage, models.Number(avg))
			rec.Set(models.FieldResult, models.Text(result))
			continue
		}
		v, err := ParseGrade(row[col])
		if err != nil {
			return fmt.Errorf("column %q: %w", column, err)
		}
		rec.Set(column, v)
	}
	return nil
}
