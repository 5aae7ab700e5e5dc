package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/mvv-cli/internal/loader"
)

const header = "companyName,website,category,status,mission,vision,values,missionConfidence,visionConfidence,valuesConfidence,extractionSource,extractedFrom\n"

func mustTable(t *testing.T, csv string) *loader.Table {
	t.Helper()
	tbl, err := loader.ReadCSV(strings.NewReader(csv))
	require.NoError(t, err)
	return tbl
}

func TestTransformRow_Complete(t *testing.T) {
	tbl := mustTable(t, header+
		" Acme Corp ,https://acme.example,製造業,completed, Build things ,See far,Integrity; Respect; Excellence,0.9,0.8,0.7,website,https://acme.example/about\n")

	c, err := TransformRow(tbl.Rows[0])
	require.NoError(t, err)

	assert.Equal(t, "company_1", c.ID)
	assert.Equal(t, "Acme Corp", c.Name)
	assert.Equal(t, "https://acme.example", c.Website)
	assert.Equal(t, "製造業", c.Category)
	assert.Equal(t, "Build things", c.Mission)
	assert.Equal(t, "See far", c.Vision)
	assert.Equal(t, "Integrity、Respect、Excellence", c.Values)
	assert.Equal(t, "Mission: Build things | Vision: See far | Values: Integrity、Respect、Excellence", c.CombinedMVV)
	assert.InDelta(t, 0.9, c.ConfidenceScores.Mission, 1e-9)
	assert.InDelta(t, 0.8, c.ConfidenceScores.Vision, 1e-9)
	assert.InDelta(t, 0.7, c.ConfidenceScores.Values, 1e-9)
	assert.Equal(t, "website", c.ExtractionSource)
	assert.Equal(t, "https://acme.example/about", c.ExtractedFrom)
	assert.True(t, c.HasCompleteMVV)
}

func TestTransformRow_CompletenessFlag(t *testing.T) {
	tests := []struct {
		name                    string
		mission, vision, values string
		want                    bool
	}{
		{"all present", "m", "v", "x", true},
		{"no mission", "", "v", "x", false},
		{"no vision", "m", "", "x", false},
		{"no values", "m", "v", "", false},
		{"whitespace values", "m", "v", "   ", false},
		{"none", "", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustTable(t, "companyName,mission,vision,values\nAcme,\""+tt.mission+"\",\""+tt.vision+"\",\""+tt.values+"\"\n")
			c, err := TransformRow(tbl.Rows[0])
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.HasCompleteMVV)
		})
	}
}

func TestTransformRow_CombinedTextOmitsEmpty(t *testing.T) {
	tbl := mustTable(t, "mission,vision,values\n,See far,Honesty\n")
	c, err := TransformRow(tbl.Rows[0])
	require.NoError(t, err)

	assert.Equal(t, "Vision: See far | Values: Honesty", c.CombinedMVV)
	assert.False(t, c.HasCompleteMVV)
}

func TestTransformRow_UnparseableConfidenceDefaultsToZero(t *testing.T) {
	tbl := mustTable(t, header+"Acme,,IT,completed,m,v,x,high,,NaN,,\n")
	c, err := TransformRow(tbl.Rows[0])
	require.NoError(t, err)

	assert.Zero(t, c.ConfidenceScores.Mission)
	assert.Zero(t, c.ConfidenceScores.Vision)
	assert.Zero(t, c.ConfidenceScores.Values)
	assert.True(t, c.HasCompleteMVV)
}

func TestTransformRow_OverflowCellsFail(t *testing.T) {
	tbl := mustTable(t, "companyName,mission\nAcme,m,stray\n")
	_, err := TransformRow(tbl.Rows[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRecord))
}

func TestTransformRow_EmptyOverflowIgnored(t *testing.T) {
	tbl := mustTable(t, "companyName,mission\nAcme,m,, \n")
	c, err := TransformRow(tbl.Rows[0])
	require.NoError(t, err)
	assert.Equal(t, "Acme", c.Name)
}

func TestTransformRow_InvalidUTF8Fails(t *testing.T) {
	row := loader.Row{Number: 4, Fields: map[string]string{"mission": "ok", "values": "bad \xff"}}
	_, err := TransformRow(row)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidRecord))
	assert.Contains(t, err.Error(), "values")
}

func TestTransform_SkipsFailingRowsAndKeepsOrder(t *testing.T) {
	tbl := mustTable(t, header+
		"A,,IT,completed,m,v,x,,,,,\n"+
		"B,,IT,completed,m,v,x,,,,,,stray\n"+
		"C,,Retail,completed,m,,x,,,,,\n"+
		"D,,IT,completed,m,v,x,,,,,\n")

	res := Transform(tbl)

	require.Len(t, res.Companies, 3)
	assert.Equal(t, []string{"company_1", "company_3", "company_4"},
		[]string{res.Companies[0].ID, res.Companies[1].ID, res.Companies[2].ID})
	assert.Equal(t, "A", res.Companies[0].Name)
	assert.Equal(t, "D", res.Companies[2].Name)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 2, res.Skipped[0].Row)
	assert.Contains(t, res.Skipped[0].Error(), "row 2:")

	var recErr *RecordError
	assert.True(t, errors.As(error(res.Skipped[0]), &recErr))
	assert.True(t, errors.Is(res.Skipped[0], ErrInvalidRecord))
	assert.False(t, errors.Is(res.Skipped[0], ErrNotPreprocessed))
}

func TestTransform_MissingValuesColumn(t *testing.T) {
	tbl := mustTable(t, "companyName,category,mission,vision\nA,IT,m,v\nB,Retail,m2,v2\n")

	res := Transform(tbl)
	require.Len(t, res.Companies, 2)
	for _, c := range res.Companies {
		assert.Equal(t, "", c.Values)
		assert.False(t, c.HasCompleteMVV)
		assert.NotContains(t, c.CombinedMVV, "Values:")
	}
}

func TestTransform_EmptyTable(t *testing.T) {
	res := Transform(mustTable(t, header))
	assert.Empty(t, res.Companies)
	assert.NotNil(t, res.Companies)
	assert.Empty(t, res.Skipped)
}

func TestTransform_EmptyRecordCountsAsIncompleteCompany(t *testing.T) {
	tbl := mustTable(t, "companyName,category,mission,vision,values\n"+
		"A,IT,m,v,x\n"+
		",,,,\n"+
		"C,IT,m,v,x\n")

	res := Transform(tbl)
	require.Len(t, res.Companies, 3)
	assert.Empty(t, res.Skipped)

	empty := res.Companies[1]
	assert.Equal(t, "company_2", empty.ID)
	assert.Equal(t, "", empty.Name)
	assert.Equal(t, "", empty.CombinedMVV)
	assert.False(t, empty.HasCompleteMVV)
	assert.Equal(t, "company_3", res.Companies[2].ID)

	b, err := Aggregate(res.Companies, fixedTime)
	require.NoError(t, err)
	assert.Equal(t, 3, b.TotalCompanies)
	assert.Equal(t, 2, b.CompleteMVVCompanies)
	assert.Equal(t, "company_3", b.Companies[1].ID)
}

func TestTransformRow_InvalidUTF8InAnyTextColumnFails(t *testing.T) {
	for _, col := range []string{
		"companyName", "website", "category", "status", "mission", "vision", "values",
		"extractionSource", "extractedFrom",
	} {
		t.Run(col, func(t *testing.T) {
			row := loader.Row{Number: 1, Fields: map[string]string{
				"mission": "m", "vision": "v", "values": "x",
			}}
			row.Fields[col] = "bad \xfe"

			_, err := TransformRow(row)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRecord))
			assert.Contains(t, err.Error(), col)
		})
	}
}
