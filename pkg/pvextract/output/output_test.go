package output

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/pvextract-go/pkg/pvextract/models"
)

func sampleTable() *models.Table {
	a := models.NewRecord("12345")
	a.Set(models.FieldName, models.Text("Dupont"))
	a.Set(models.FieldAverage, models.Number(12.5))
	a.Set(models.FieldResult, models.Text("ACQ"))
	a.Set("UE1101I Informatique", models.Number(15))
	a.Set("UE1102L Anglais", models.Number(8))

	b := models.NewRecord("222")
	b.Set(models.FieldName, models.Text("Martin-Lefebvre"))
	b.Set(models.FieldAverage, models.Number(7))
	b.Set(models.FieldResult, models.Text("AJ"))
	b.Set("UE1101I Informatique", models.Status("AB 0"))

	t := models.NewTable()
	t.Add(a)
	t.Add(b)
	return t
}

func openSheet(t *testing.T, path string) *excelize.File {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func cellStyle(t *testing.T, f *excelize.File, cell string) *excelize.Style {
	t.Helper()
	id, err := f.GetCellStyle(SheetName, cell)
	require.NoError(t, err)
	s, err := f.GetStyle(id)
	require.NoError(t, err)
	return s
}

func fillColor(s *excelize.Style) string {
	if len(s.Fill.Color) == 0 {
		return ""
	}
	return strings.ToUpper(s.Fill.Color[0])
}

func fontColor(s *excelize.Style) string {
	if s.Font == nil {
		return ""
	}
	return strings.ToUpper(s.Font.Color)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pv.xlsx")
	table := sampleTable()
	require.NoError(t, WriteXLSX(path, table.FullView(), DefaultPalette()))

	f := openSheet(t, path)
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"", "Name", "Average", "Result", "UE1101I", "UE1102L"}, rows[0])
	assert.Equal(t, "12345", rows[1][0])
	assert.Equal(t, "Dupont", rows[1][1])
	assert.Equal(t, "12.5", rows[1][2])
	assert.Equal(t, "AB 0", rows[2][4])

	// Header colors follow the category letter of the full column name.
	assert.Contains(t, fillColor(cellStyle(t, f, "E1")), "003050")
	assert.Contains(t, fillColor(cellStyle(t, f, "F1")), "009CDD")
	assert.Contains(t, fillColor(cellStyle(t, f, "B1")), "999999")
	header := cellStyle(t, f, "E1")
	require.NotNil(t, header.Alignment)
	assert.True(t, header.Alignment.WrapText)
	assert.Equal(t, "center", header.Alignment.Horizontal)

	height, err := f.GetRowHeight(SheetName, 1)
	require.NoError(t, err)
	assert.Equal(t, 60.0, height)

	// Average: filled by pass/fail.
	assert.Contains(t, fillColor(cellStyle(t, f, "C2")), "99FF99")
	assert.Contains(t, fillColor(cellStyle(t, f, "C3")), "FF9999")

	// Other grades: font color only, background follows row parity.
	assert.Contains(t, fontColor(cellStyle(t, f, "E2")), "228B22")
	assert.Contains(t, fillColor(cellStyle(t, f, "E2")), "FFFFFF")
	assert.Contains(t, fontColor(cellStyle(t, f, "F2")), "B22222")
	assert.Contains(t, fillColor(cellStyle(t, f, "E3")), "FFEFD5")

	width, err := f.GetColWidth(SheetName, "B")
	require.NoError(t, err)
	assert.Equal(t, float64(len("Martin-Lefebvre")+widthPadding), width)
	width, err = f.GetColWidth(SheetName, "E")
	require.NoError(t, err)
	assert.Equal(t, float64(len("AB 0")+widthPadding), width)
}

func TestWriteXLSXSimpleView(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pv-simple.xlsx")
	table := sampleTable()
	view := table.Project([]string{models.FieldName, "UE1102L Anglais"})
	require.NoError(t, WriteXLSX(path, view, DefaultPalette()))

	f := openSheet(t, path)
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, []string{"", "Name", "UE1102L"}, rows[0])
	assert.Equal(t, []string{"12345", "Dupont", "8"}, rows[1])
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "/tmp/pv L1.xlsx", FileName("/tmp/pv L1.pdf", "", ".xlsx"))
	assert.Equal(t, "pv-simple.xlsx", FileName("pv.pdf", SimpleSuffix, ".xlsx"))
	assert.Equal(t, "report.json", FileName("report", "", ".json"))
}

func TestPaletteIsImmutable(t *testing.T) {
	p := DefaultPalette()
	q := p.With('L', Colors{Fill: "000000", Font: "FFFFFF"}).With('Z', Colors{Fill: "111111", Font: "000000"})

	assert.Equal(t, "009CDD", p.Header("UE1102L Anglais").Fill)
	assert.Equal(t, "000000", q.Header("UE1102L Anglais").Fill)
	assert.Equal(t, "111111", q.Header("UE1102Z").Fill)
	assert.Equal(t, p.Default(), p.Header("UE1102Z"))
	assert.Equal(t, p.Default(), p.Header("short"))
	assert.Equal(t, "FFFFFF", p.RowFill(2))
	assert.Equal(t, "FFEFD5", p.RowFill(3))
}

func TestToJSON(t *testing.T) {
	table := sampleTable()
	data, err := ToJSON(table.Project([]string{models.FieldName, models.FieldAverage, "UE1102L Anglais"}), false)
	require.NoError(t, err)

	var got []Student
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.Equal(t, "12345", got[0].ID)
	assert.Equal(t, []Field{
		{Name: models.FieldName, Kind: "text", Value: "Dupont"},
		{Name: models.FieldAverage, Kind: "number", Value: 12.5},
		{Name: "UE1102L Anglais", Kind: "number", Value: 8.0},
	}, got[0].Fields)
	assert.Len(t, got[1].Fields, 2)
}
