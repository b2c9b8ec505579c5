package output

import (
	"encoding/json"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
)

// Student is the JSON form of a record. Fields keep the column order of the
// view and omit columns the student has no value for.
type Student struct {
	ID     string  `json:"id"`
	Fields []Field `json:"fields"`
}

// Field is one typed value of a student record.
type Field struct {
	Name  string `json:"name"`
	Kind  string `json:"kind"`
	Value any    `json:"value"`
}

// Students converts a view into its JSON form.
func Students(view models.View) []Student {
	out := make([]Student, 0, view.Table.Len())
	for _, rec := range view.Table.Records() {
		s := Student{ID: rec.ID, Fields: make([]Field, 0, len(view.Columns))}
		for _, col := range view.Columns {
			v, ok := rec.Get(col)
			if !ok {
				continue
			}
			s.Fields = append(s.Fields, Field{Name: col, Kind: v.Kind.String(), Value: jsonValue(v)})
		}
		out = append(out, s)
	}
	return out
}

func jsonValue(v models.Value) any {
	switch v.Kind {
	case models.KindNumber:
		return v.Num
	case models.KindList:
		items := make([]any, len(v.Items))
		for i, item := range v.Items {
			items[i] = jsonValue(item)
		}
		return items
	default:
		return v.Str
	}
}

// ToJSON serializes a view to JSON.
func ToJSON(view models.View, pretty bool) ([]byte, error) {
	students := Students(view)
	if pretty {
		return json.MarshalIndent(students, "", "  ")
	}
	return json.Marshal(students)
}
