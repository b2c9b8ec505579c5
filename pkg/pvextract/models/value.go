// Package models defines data structures for grade report extraction.
package models

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind tags the variant held by a Value.
type Kind uint8

const (
	// KindText is free text such as a student name or a result code.
	KindText Kind = iota
	// KindNumber is a numeric grade or average.
	KindNumber
	// KindStatus is a non-numeric grade placeholder (AB, NACQ, DIS or empty),
	// kept verbatim.
	KindStatus
	// KindList accumulates values of the same field across pages.
	KindList
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumber:
		return "number"
	case KindStatus:
		return "status"
	case KindList:
		return "list"
	default:
		return "unknown"
	}
}

// Value is a tagged field value of a student record.
type Value struct {
	Kind  Kind
	Num   float64
	Str   string
	Items []Value
}

// Text returns a text value.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

// Status returns a status value holding s verbatim.
func Status(s string) Value { return Value{Kind: KindStatus, Str: s} }

// List returns a list value holding items.
func List(items ...Value) Value {
	return Value{Kind: KindList, Items: append([]Value(nil), items...)}
}

// Float returns the numeric content of v. ok is false for non-numeric values.
func (v Value) Float() (f float64, ok bool) {
	if v.Kind != KindNumber {
		return 0, false
	}
	return v.Num, true
}

// Append returns a list value with item added. v must be a list.
func (v Value) Append(item Value) Value {
	items := make([]Value, 0, len(v.Items)+1)
	items = append(items, v.Items...)
	items = append(items, item)
	return Value{Kind: KindList, Items: items}
}

// Mean returns the arithmetic mean of the numeric items of a list value.
// ok is false when v is not a list or holds no numeric item.
func (v Value) Mean() (mean float64, ok bool) {
	if v.Kind != KindList {
		return 0, false
	}
	var sum float64
	var n int
	for _, item := range v.Items {
		if f, isNum := item.Float(); isNum {
			sum += f
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// String renders the value the way it appears in an output cell.
// Integral numbers keep one decimal (15 renders as "15.0").
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		return FormatNumber(v.Num)
	case KindList:
		parts := make([]string, len(v.Items))
		for i, item := range v.Items {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return v.Str
	}
}

// IsZero reports whether v is the zero value of its kind.
func (v Value) IsZero() bool {
	switch v.Kind {
	case KindNumber:
		return v.Num == 0
	case KindList:
		return len(v.Items) == 0
	default:
		return v.Str == ""
	}
}

// FormatNumber formats f with the shortest representation, keeping a trailing
// ".0" for integral values.
func FormatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}

// DisplayName returns the part of a field name before its first whitespace.
func DisplayName(field string) string {
	if fields := strings.Fields(field); len(fields) > 0 {
		return fields[0]
	}
	return field
}

// CategoryLetter returns the rune at index 6 of a column name.
func CategoryLetter(name string) (rune, bool) {
	if utf8.RuneCountInString(name) <= 6 {
		return 0, false
	}
	i := 0
	for _, r := range name {
		if i == 6 {
			return r, true
		}
		i++
	}
	return 0, false
}
