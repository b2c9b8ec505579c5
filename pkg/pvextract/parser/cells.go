// Package parser turns the table of one report page into partial student
// records.
package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
)

// Cell grammar errors.
var (
	ErrMalformedIdentityCell = errors.New("malformed identity cell")
	ErrUnparseableGrade      = errors.New("unparseable grade")
	ErrMalformedSummaryCell  = errors.New("malformed summary cell")
)

const (
	footerPrefix  = "note max"
	summaryPrefix = "Résultat"
	absentPrefix  = "AB"
	notAcquired   = "NACQ"
	dispensed     = "DIS"
)

// ParseIdentity reads the student number and display name from the first cell
// of a row ("<label>:<id>\n<name>").
func ParseIdentity(text string) (id, name string, err error) {
	segments := strings.Split(text, "\n")
	if len(segments) < 2 {
		return "", "", fmt.Errorf("%w: %q has no name line", ErrMalformedIdentityCell, text)
	}
	idx := strings.LastIndex(segments[0], ":")
	if idx < 0 {
		return "", "", fmt.Errorf("%w: %q has no ':'", ErrMalformedIdentityCell, text)
	}
	return segments[0][idx+1:], segments[1], nil
}

// IsFooter reports whether a first-column cell ends the data rows of a page.
func IsFooter(text string) bool {
	return strings.HasPrefix(text, footerPrefix)
}

// IsSummaryHeader reports whether a column holds the average/result pair.
func IsSummaryHeader(header string) bool {
	return strings.HasPrefix(header, summaryPrefix)
}

// IsStatus reports whether the first line of a grade cell is a status code
// rather than a mark.
func IsStatus(s string) bool {
	return s == "" || s == notAcquired || s == dispensed || strings.HasPrefix(s, absentPrefix)
}

// ParseGrade interprets a grade cell. Status codes are kept verbatim ("AB 0"
// stays "AB 0"); anything else must carry a mark on its first line.
func ParseGrade(text string) (models.Value, error) {
	first := firstLine(text)
	if IsStatus(first) {
		return models.Status(first), nil
	}
	f, err := markFloat(first)
	if err != nil {
		return models.Value{}, fmt.Errorf("%w: %q", ErrUnparseableGrade, first)
	}
	return models.Number(f), nil
}

// ParseSummary interprets the average/result cell. An absent or empty average
// is 0.
func ParseSummary(text string) (average float64, result string, err error) {
	segments := strings.Split(text, "\n")
	if len(segments) < 2 {
		return 0, "", fmt.Errorf("%w: %q has no result line", ErrMalformedSummaryCell, text)
	}
	if avg := segments[0]; avg != "" && !strings.HasPrefix(avg, absentPrefix) {
		average, err = markFloat(avg)
		if err != nil {
			return 0, "", fmt.Errorf("%w: average %q", ErrUnparseableGrade, avg)
		}
	}
	return average, strings.Split(segments[1], " ")[0], nil
}

func firstLine(text string) string {
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		return text[:i]
	}
	return text
}

// markFloat parses the mark of a cell line: the last space-separated
// token, or the numerator when the line is written as "<mark> / <max>".
func markFloat(s string) (float64, error) {
	tokens := strings.Split(s, " ")
	for i, tok := range tokens {
		if tok == "/" && i > 0 {
			return strconv.ParseFloat(tokens[i-1], 64)
		}
	}
	return strconv.ParseFloat(tokens[len(tokens)-1], 64)
}
