package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileReporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	reporter := NewFileReporter(path)

	reporter.Report(1, 10, "Fetching payments")
	reporter.Report(2, 10, "Resolving payment covers")

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var record struct {
		Step    int    `json:"step"`
		Total   int    `json:"total"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(data, &record))

	// Overwritten wholesale, so only the latest record remains.
	assert.Equal(t, 2, record.Step)
	assert.Equal(t, 10, record.Total)
	assert.Equal(t, "Resolving payment covers", record.Message)

	reporter.Clear()
	assert.NoFileExists(t, path)

	// A second clear is a no-op.
	reporter.Clear()
}

func TestMultiReporter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.json")
	multi := MultiReporter{LogReporter{}, NewFileReporter(path)}

	multi.Report(3, 10, "Building sales report")

	assert.FileExists(t, path)
}
