package output

import (
	"maps"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
)

// Colors is a background/font color pair, as RGB hex without '#'.
type Colors struct {
	Fill string `yaml:"fill" json:"fill"`
	Font string `yaml:"font" json:"font"`
}

// Palette holds the colors of a rendered report. Header colors are chosen by
// the category letter of a column name. A Palette is a value: With returns a
// modified copy and never alters the receiver.
type Palette struct {
	categories map[rune]Colors
	fallback   Colors

	RowEven   string // background of even sheet rows
	RowOdd    string // background of odd sheet rows
	PassFill  string // Average background at or above the pass mark
	FailFill  string // Average background below the pass mark
	PassFont  string // grade font at or above the pass mark
	FailFont  string // grade font below the pass mark
	PassMark  float64
	HeaderRow float64 // header row height
}

// DefaultPalette returns the report colors.
func DefaultPalette() Palette {
	return Palette{
		categories: map[rune]Colors{
			'I': {Fill: "003050", Font: "FFFFFF"},
			'C': {Fill: "C20E1A", Font: "FFFFFF"},
			'E': {Fill: "868686", Font: "FFFFFF"},
			'P': {Fill: "612978", Font: "FFFFFF"},
			'M': {Fill: "8A2F84", Font: "FFFFFF"},
			'X': {Fill: "B39CC8", Font: "000000"},
			'T': {Fill: "B0D2BE", Font: "000000"},
			'L': {Fill: "009CDD", Font: "FFFFFF"},
			'B': {Fill: "A6C236", Font: "000000"},
			'V': {Fill: "CE5C37", Font: "000000"},
		},
		fallback:  Colors{Fill: "999999", Font: "FFFFFF"},
		RowEven:   "FFFFFF",
		RowOdd:    "FFEFD5",
		PassFill:  "99FF99",
		FailFill:  "FF9999",
		PassFont:  "228B22",
		FailFont:  "B22222",
		PassMark:  10,
		HeaderRow: 60,
	}
}

// With returns a copy of p where the category letter uses c.
func (p Palette) With(letter rune, c Colors) Palette {
	p.categories = maps.Clone(p.categories)
	if p.categories == nil {
		p.categories = make(map[rune]Colors)
	}
	p.categories[letter] = c
	return p
}

// WithDefault returns a copy of p using c for columns without a known
// category letter.
func (p Palette) WithDefault(c Colors) Palette {
	p.fallback = c
	return p
}

// Category returns the colors registered for a letter.
func (p Palette) Category(letter rune) (Colors, bool) {
	c, ok := p.categories[letter]
	return c, ok
}

// Default returns the colors of columns without a known category letter.
func (p Palette) Default() Colors {
	return p.fallback
}

// Header returns the header colors of a column, looked up with the category
// letter of its full name.
func (p Palette) Header(field string) Colors {
	if letter, ok := models.CategoryLetter(field); ok {
		if c, ok := p.categories[letter]; ok {
			return c
		}
	}
	return p.fallback
}

// RowFill returns the background of a 1-based sheet row.
func (p Palette) RowFill(row int) string {
	if row%2 == 0 {
		return p.RowEven
	}
	return p.RowOdd
}
