package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
)

func TestParseIdentity(t *testing.T) {
	tests := []struct {
		input    string
		wantID   string
		wantName string
		wantErr  error
	}{
		{"N:12345\nDupont", "12345", "Dupont", nil},
		{"N° étudiant:22001234\nMartin Jeanne\nL1", "22001234", "Martin Jeanne", nil},
		{"a:b:777\nDoe", "777", "Doe", nil},
		{"12345\nDupont", "", "", ErrMalformedIdentityCell},
		{"N:12345", "", "", ErrMalformedIdentityCell},
		{"", "", "", ErrMalformedIdentityCell},
	}

	for _, tt := range tests {
		id, name, err := ParseIdentity(tt.input)
		if tt.wantErr != nil {
			assert.ErrorIs(t, err, tt.wantErr, "ParseIdentity(%q)", tt.input)
			continue
		}
		require.NoError(t, err, "ParseIdentity(%q)", tt.input)
		assert.Equal(t, tt.wantID, id)
		assert.Equal(t, tt.wantName, name)
	}
}

func TestParseGrade(t *testing.T) {
	tests := []struct {
		input    string
		expected models.Value
	}{
		{"15 / 15", models.Number(15)},
		{"15 / 20", models.Number(15)},
		{"12.5", models.Number(12.5)},
		{"Session 1 8.25\nrattrapage", models.Number(8.25)},
		{"AB 0", models.Status("AB 0")},
		{"ABJ", models.Status("ABJ")},
		{"NACQ", models.Status("NACQ")},
		{"DIS\nmotif", models.Status("DIS")},
		{"", models.Status("")},
		{"\n14", models.Status("")},
	}

	for _, tt := range tests {
		got, err := ParseGrade(tt.input)
		require.NoError(t, err, "ParseGrade(%q)", tt.input)
		assert.Equal(t, tt.expected, got, "ParseGrade(%q)", tt.input)
	}
}

func TestParseGradeRejectsGarbage(t *testing.T) {
	for _, input := range []string{"ACQ", "x / 20", "note"} {
		_, err := ParseGrade(input)
		assert.ErrorIs(t, err, ErrUnparseableGrade, "ParseGrade(%q)", input)
	}
}

func TestParseSummary(t *testing.T) {
	tests := []struct {
		input      string
		wantAvg    float64
		wantResult string
	}{
		{"12.5 / 20\nACQ something", 12.5, "ACQ"},
		{"Moy 9.75\nAJ", 9.75, "AJ"},
		{"AB\nDEF", 0, "DEF"},
		{"\nADM session 2", 0, "ADM"},
	}

	for _, tt := range tests {
		avg, result, err := ParseSummary(tt.input)
		require.NoError(t, err, "ParseSummary(%q)", tt.input)
		assert.Equal(t, tt.wantAvg, avg)
		assert.Equal(t, tt.wantResult, result)
	}

	_, _, err := ParseSummary("12.5")
	assert.ErrorIs(t, err, ErrMalformedSummaryCell)

	_, _, err = ParseSummary("n/a\nACQ")
	assert.ErrorIs(t, err, ErrUnparseableGrade)
}

func TestCellPredicates(t *testing.T) {
	assert.True(t, IsFooter("note max\n20"))
	assert.False(t, IsFooter("N:1\nnote max"))
	assert.True(t, IsSummaryHeader("Résultat session 1"))
	assert.False(t, IsSummaryHeader("UE1 I"))
	assert.True(t, IsStatus("AB 0"))
	assert.False(t, IsStatus("ACQ"))
}
