package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sample = Dataset{
	Title: "At-risk students",
	Columns: []Column{
		{Key: "name", Title: "Student"},
		{Key: "avg", Title: "Average", Numeric: true},
	},
	Rows: []map[string]string{
		{"name": "Camila Torres", "avg": "5.30"},
		{"name": "Núñez, Ana", "avg": "4.10"},
	},
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat(" PDF ")
	require.NoError(t, err)
	assert.Equal(t, FormatPDF, f)

	_, err = ParseFormat("xlsx")
	assert.Error(t, err)
}

func TestCSVRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sample)
	require.NoError(t, err)
	assert.Equal(t, "Student,Average\nCamila Torres,5.30\n\"Núñez, Ana\",4.10\n", string(out))
}

func TestRenderRejectsEmptyColumns(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
	_, err = NewPDFExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestRenderPDF(t *testing.T) {
	file, err := Render(FormatPDF, "at-risk", sample)
	require.NoError(t, err)
	assert.Equal(t, "at-risk.pdf", file.Name)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))
}

func TestRenderPDFWithoutRows(t *testing.T) {
	empty := sample
	empty.Rows = nil
	out, err := NewPDFExporter().Render(empty)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
