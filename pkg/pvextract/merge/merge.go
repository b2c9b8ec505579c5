// Package merge combines the partial records of every page into one record
// per student.
package merge

import (
	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
)

// Reduce merges per-page records in the given page order.
//
// For a field seen again for the same student, the later page wins, unless
// the stored value is a list, in which case the new value is appended. Lists
// are never created here; an Average that ends up as a list is replaced by
// its mean.
func Reduce(pages []*models.PageRecords) *models.Table {
	table := models.NewTable()
	for _, page := range pages {
		for _, id := range page.IDs() {
			rec, _ := page.Get(id)
			existing, ok := table.Get(id)
			if !ok {
				table.Add(rec.Clone())
				continue
			}
			mergeInto(existing, rec)
		}
	}

	for _, rec := range table.Records() {
		averageLists(rec)
	}
	table.Refresh()
	return table
}

func mergeInto(dst, src *models.Record) {
	for _, field := range src.Fields() {
		v, _ := src.Get(field)
		cur, ok := dst.Get(field)
		if ok && cur.Kind == models.KindList {
			dst.Set(field, cur.Append(v))
			continue
		}
		dst.Set(field, v)
	}
}

func averageLists(rec *models.Record) {
	v, ok := rec.Get(models.FieldAverage)
	if !ok || v.Kind != models.KindList {
		return
	}
	if mean, ok := v.Mean(); ok {
		rec.Set(models.FieldAverage, models.Number(mean))
	}
}
