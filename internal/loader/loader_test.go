package loader

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

const sampleCSV = `companyName,website,category,status,mission,vision,values,missionConfidence,visionConfidence,valuesConfidence,extractionSource,extractedFrom
Acme,https://acme.example,製造業,completed,Build things,See far,Integrity; Respect,0.9,0.8,0.7,website,https://acme.example/about
Beta,https://beta.example,IT,pending,,Lead,Honesty,0.5,,abc,perplexity,
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func createTestXLSX(t *testing.T, sheets map[string][][]string) string {
	t.Helper()
	f := xlsx.NewFile()
	for name, rows := range sheets {
		sheet, err := f.AddSheet(name)
		require.NoError(t, err)
		for _, rowData := range rows {
			row := sheet.AddRow()
			for _, cellData := range rowData {
				cell := row.AddCell()
				cell.SetString(cellData)
			}
		}
	}
	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, f.Save(path))
	return path
}

func TestReadCSV_Basic(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.Len(t, tbl.Columns, 12)
	assert.Equal(t, "companyName", tbl.Columns[0])
	require.Equal(t, 2, tbl.Len())

	first := tbl.Rows[0]
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, "Acme", first.Get("companyName"))
	assert.Equal(t, "製造業", first.Get("category"))
	assert.Equal(t, "Integrity; Respect", first.Get("values"))
	assert.Empty(t, first.Overflow)

	second := tbl.Rows[1]
	assert.Equal(t, 2, second.Number)
	assert.Equal(t, "", second.Get("mission"))
	assert.Equal(t, "abc", second.Get("valuesConfidence"))
}

func TestReadCSV_StripsBOM(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("\ufeffcompanyName,category\nAcme,IT\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"companyName", "category"}, tbl.Columns)
	assert.True(t, tbl.Has("companyName"))
	assert.Equal(t, "Acme", tbl.Rows[0].Get("companyName"))
}

func TestReadCSV_RejectsInvalidUTF8(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("companyName\n\xff\xfe\xfd\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid UTF-8")
}

func TestReadCSV_RejectsMalformedQuotes(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("companyName,mission\nAcme,\"unterminated\n"))
	assert.Error(t, err)
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestReadCSV_HeaderOnly(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("companyName,mission\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestReadCSV_RaggedRows(t *testing.T) {
	input := "a,b,c\n1\n1,2,3,4,5\n"
	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	short := tbl.Rows[0]
	assert.Equal(t, "1", short.Get("a"))
	assert.Equal(t, "", short.Get("b"))
	assert.Equal(t, "", short.Get("c"))

	long := tbl.Rows[1]
	assert.Equal(t, "3", long.Get("c"))
	assert.Equal(t, []string{"4", "5"}, long.Overflow)
}

func TestReadCSV_TrimsHeaderAndKeepsEmptyRecords(t *testing.T) {
	input := " companyName , category ,\nAcme,IT,\n,,\nBeta,Retail,\n"
	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, []string{"companyName", "category"}, tbl.Columns)
	require.Equal(t, 3, tbl.Len())

	empty := tbl.Rows[1]
	assert.Equal(t, 2, empty.Number)
	assert.Equal(t, "", empty.Get("companyName"))
	assert.Equal(t, "", empty.Get("category"))

	assert.Equal(t, "Beta", tbl.Rows[2].Get("companyName"))
	assert.Equal(t, 3, tbl.Rows[2].Number)
}

func TestReadCSV_EmptyLinesAreNotRecords(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("companyName,category\nAcme,IT\n\n\nBeta,Retail\n"))
	require.NoError(t, err)

	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, 2, tbl.Rows[1].Number)
}

func TestReadCSV_MissingColumnReadsEmpty(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader("companyName,mission\nAcme,Build\n"))
	require.NoError(t, err)

	assert.False(t, tbl.Has("values"))
	assert.Equal(t, "", tbl.Rows[0].Get("values"))
}

func TestReadCSVFile_NotFound(t *testing.T) {
	_, err := ReadCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoad_DispatchesByExtension(t *testing.T) {
	csvPath := writeFile(t, "mvv.csv", sampleCSV)
	tbl, err := Load(csvPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())

	xlsxPath := createTestXLSX(t, map[string][][]string{
		"MVV": {
			{"companyName", "category", "mission"},
			{"Acme", "IT", "Build"},
		},
	})
	tbl, err = Load(xlsxPath, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, tbl.Len())
	assert.Equal(t, "Build", tbl.Rows[0].Get("mission"))
}

func TestReadXLSXFile_NamedSheet(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Data": {
			{"companyName", "values"},
			{"Acme", "Integrity; Respect"},
			{"", ""},
			{"Beta", "Honesty"},
		},
	})

	tbl, err := ReadXLSXFile(path, "Data")
	require.NoError(t, err)

	// Rows without content are dropped like empty CSV lines.
	require.Equal(t, 2, tbl.Len())
	assert.Equal(t, "Integrity; Respect", tbl.Rows[0].Get("values"))
	assert.Equal(t, "Beta", tbl.Rows[1].Get("companyName"))
	assert.Equal(t, 2, tbl.Rows[1].Number)
}

func TestReadXLSXFile_SheetNotFound(t *testing.T) {
	path := createTestXLSX(t, map[string][][]string{
		"Data": {{"companyName"}},
	})

	_, err := ReadXLSXFile(path, "Other")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `sheet "Other" not found`)
}

func TestReadXLSXFile_NotFound(t *testing.T) {
	_, err := ReadXLSXFile(filepath.Join(t.TempDir(), "missing.xlsx"), "")
	assert.Error(t, err)
}

func TestComputeStats(t *testing.T) {
	input := `companyName,category,status,mission,vision,values
A,IT,completed,m,v,x
B,Retail,completed,m,,x
C,IT,pending,,v,
D,,completed,m,v,x
E,Retail,failed,m,v,x
F,IT,completed,,,
`
	tbl, err := ReadCSV(strings.NewReader(input))
	require.NoError(t, err)

	s := ComputeStats(tbl)
	assert.Equal(t, 6, s.Rows)
	assert.Len(t, s.Columns, 6)
	assert.Equal(t, 4, s.Completed)
	assert.Equal(t, 2, s.Categories)
	assert.Equal(t, []CategoryCount{{"IT", 3}, {"Retail", 2}}, s.TopCategories)

	require.Len(t, s.Fill, 3)
	assert.Equal(t, FieldFill{Field: "mission", Filled: 4, Total: 6}, s.Fill[0])
	assert.Equal(t, FieldFill{Field: "vision", Filled: 4, Total: 6}, s.Fill[1])
	assert.Equal(t, FieldFill{Field: "values", Filled: 4, Total: 6}, s.Fill[2])
	assert.InDelta(t, 66.67, s.Fill[0].Rate(), 0.01)
}

func TestComputeStats_TopCategoriesBounded(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("companyName,category\n")
	for i := range 12 {
		for range i + 1 {
			sb.WriteString("x,cat")
			sb.WriteByte(byte('A' + i))
			sb.WriteString("\n")
		}
	}
	tbl, err := ReadCSV(strings.NewReader(sb.String()))
	require.NoError(t, err)

	s := ComputeStats(tbl)
	assert.Equal(t, 12, s.Categories)
	require.Len(t, s.TopCategories, topCategories)
	assert.Equal(t, CategoryCount{"catL", 12}, s.TopCategories[0])
	assert.Equal(t, CategoryCount{"catC", 3}, s.TopCategories[9])
}

func TestFieldFillRate_EmptyTable(t *testing.T) {
	assert.Zero(t, FieldFill{Field: "mission"}.Rate())
}
