package export

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundleName(t *testing.T) {
	now := time.Unix(1700000000, 0)

	assert.Equal(t, "Example_ISP_2024-03-01_2024-03-31_1700000000.zip",
		BundleName("Example ISP", "2024-03-01", "2024-03-31", now))
	assert.Equal(t, "Net_Ltd_2024-03-01_2024-03-31_1700000000.zip",
		BundleName(`Net & "Ltd"`, "2024-03-01", "2024-03-31", now))
	assert.Equal(t, "export_2024-03-01_2024-03-31_1700000000.zip",
		BundleName("???", "2024-03-01", "2024-03-31", now))
}

func TestWriteBundle(t *testing.T) {
	dir := t.TempDir()

	first := filepath.Join(dir, "payments.csv")
	second := filepath.Join(dir, "sales.csv")
	require.NoError(t, os.WriteFile(first, []byte("payments"), 0o644))
	require.NoError(t, os.WriteFile(second, []byte("sales"), 0o644))

	outputPath := filepath.Join(dir, "bundle.zip")
	files := []BundleFile{
		{Path: first, Name: "payments.csv"},
		{Path: second, Name: "reports/sales.csv"},
		{Path: filepath.Join(dir, "gone.csv"), Name: "gone.csv"},
	}
	require.NoError(t, WriteBundle(outputPath, files))

	reader, err := zip.OpenReader(outputPath)
	require.NoError(t, err)
	defer reader.Close()

	names := make([]string, 0, len(reader.File))
	for _, entry := range reader.File {
		names = append(names, entry.Name)
	}
	assert.Equal(t, []string{"payments.csv", "reports/sales.csv"}, names)

	// Included sources are consumed.
	assert.NoFileExists(t, first)
	assert.NoFileExists(t, second)
}
