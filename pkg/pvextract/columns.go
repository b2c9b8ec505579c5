package pvextract

import (
	"unicode"
	"unicode/utf8"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
)

// simpleLeading is the number of leading columns always kept in the simple
// view (name, average, result as laid out in the report).
const simpleLeading = 3

// SimpleColumns selects the columns of the simple view: the leading columns,
// then every column whose display name is a bare 7-character module code,
// ends with a digit, or has the language category letter L.
func SimpleColumns(columns []string) []string {
	out := make([]string, 0, len(columns))
	for i, col := range columns {
		if i < simpleLeading || isSimpleColumn(col) {
			out = append(out, col)
		}
	}
	return out
}

func isSimpleColumn(field string) bool {
	name := models.DisplayName(field)
	if utf8.RuneCountInString(name) == 7 {
		return true
	}
	if last, _ := utf8.DecodeLastRuneInString(name); unicode.IsDigit(last) {
		return true
	}
	letter, ok := models.CategoryLetter(name)
	return ok && letter == 'L'
}

// SimpleView returns the simple projection of a table.
func SimpleView(t *models.Table) models.View {
	return t.Project(SimpleColumns(t.Columns()))
}
