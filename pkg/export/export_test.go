package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"category", "unit"},
		Rows: []map[string]string{
			{"category": "core", "unit": "COS10009"},
			{"category": "other", "unit": "Elective (Year 3, Semester 1)"},
		},
	}

	out, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "category,unit\ncore,COS10009\nother,\"Elective (Year 3, Semester 1)\"\n", string(out))
}

func TestCSVExporterNeutralisesFormulas(t *testing.T) {
	data := Dataset{
		Headers: []string{"value"},
		Rows: []map[string]string{
			{"value": "=HYPERLINK(\"x\")"},
			{"value": "@SUM(A1)"},
			{"value": "-12.5"},
			{"value": "-cmd"},
		},
	}

	out, err := (&CSVExporter{BOM: true}).Render(data)
	require.NoError(t, err)
	assert.Equal(t, "\ufeffvalue\n\"'=HYPERLINK(\"\"x\"\")\"\n'@SUM(A1)\n-12.5\n'-cmd\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	doc := Document{
		Title:   "Graduation Report",
		Summary: []string{"Completed 4 of 5 required units."},
		Table: Dataset{
			Headers: []string{"category", "unit"},
			Rows:    []map[string]string{{"category": "core", "unit": "COS10009"}},
		},
	}

	out, err := NewPDFExporter().Render(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRejectsHeaderlessRows(t *testing.T) {
	_, err := NewPDFExporter().Render(Document{Table: Dataset{Rows: []map[string]string{{"a": "b"}}}})
	assert.Error(t, err)
}
