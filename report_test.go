package otfgrade

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportFileName(t *testing.T) {
	assert.Equal(t, "ClassGradebook_letter.csv", ReportFileName("ClassGradebook.csv"))
	assert.Equal(t, "ClassGradebook_letter.csv", ReportFileName(filepath.Join("data", "term1", "ClassGradebook.csv")))
	assert.Equal(t, "grades_letter.csv", ReportFileName("grades"))
	assert.Equal(t, "grades.2024_letter.csv", ReportFileName("grades.2024.txt"))
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, []string{"Ada", "Alan", "Grace"}, []Letter{A, F, B})
	require.NoError(t, err)

	assert.Equal(t, "Ada: A\nAlan: F\nGrace: B\n", buf.String())
}

func TestWriteReportMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, []string{"Ada", "Alan"}, []Letter{A})
	require.Error(t, err)
	assert.True(t, IsDataError(err))
	assert.Empty(t, buf.String())
}

func TestWriteReportFile(t *testing.T) {
	dir := t.TempDir()
	roster := []string{"Ada Lovelace", "Alan Turing", "Grace Hopper", "Edsger Dijkstra", "Barbara Liskov"}
	result := Classify(sampleGradebook, DefaultScheme())

	out, err := WriteReportFile(dir, filepath.Join("testdata", "ClassGradebook.csv"), roster, result.Letters)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ClassGradebook_letter.csv"), out)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace: B\nAlan Turing: C\nGrace Hopper: A\nEdsger Dijkstra: F\nBarbara Liskov: B\n", string(b))
}

func TestWriteReportFileBadDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	_, err := WriteReportFile(dir, "ClassGradebook.csv", []string{"Ada"}, []Letter{B})
	require.Error(t, err)
	assert.False(t, IsDataError(err))

	_, statErr := os.Stat(filepath.Join(dir, "ClassGradebook_letter.csv"))
	assert.True(t, os.IsNotExist(statErr))
}
