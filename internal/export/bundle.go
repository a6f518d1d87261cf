package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"ucrm-export/internal/logger"
)

// BundleFile pairs a file on disk with its name inside the archive.
type BundleFile struct {
	Path string
	Name string
}

var bundleNameUnsafe = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// BundleName derives the archive filename from the organization and range:
// {sanitized-org}_{from}_{to}_{unix}.zip.
func BundleName(organization, fromDate, toDate string, now time.Time) string {
	sanitized := bundleNameUnsafe.ReplaceAllString(strings.TrimSpace(organization), "_")
	sanitized = strings.Trim(sanitized, "_")
	if sanitized == "" {
		sanitized = "export"
	}
	return fmt.Sprintf("%s_%s_%s_%d.zip", sanitized, fromDate, toDate, now.Unix())
}

// WriteBundle packs the files into a zip archive at outputPath. Sources
// that no longer exist are skipped; each included source is deleted after
// the archive is finalized.
func WriteBundle(outputPath string, files []BundleFile) error {
	const op = "WriteBundle"
	log := logger.WithComponent("bundle")

	archive, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("%s: failed to create %s: %w", op, outputPath, err)
	}
	defer archive.Close()

	zipWriter := zip.NewWriter(archive)

	var included []string
	for _, file := range files {
		source, err := os.Open(file.Path)
		if os.IsNotExist(err) {
			log.Debug().Str("path", file.Path).Msg("Skipping missing bundle source")
			continue
		}
		if err != nil {
			return fmt.Errorf("%s: failed to open %s: %w", op, file.Path, err)
		}

		entry, err := zipWriter.Create(file.Name)
		if err != nil {
			source.Close()
			return fmt.Errorf("%s: failed to add %s: %w", op, file.Name, err)
		}
		if _, err := io.Copy(entry, source); err != nil {
			source.Close()
			return fmt.Errorf("%s: failed to copy %s: %w", op, file.Path, err)
		}
		source.Close()
		included = append(included, file.Path)
	}

	if err := zipWriter.Close(); err != nil {
		return fmt.Errorf("%s: failed to finalize archive: %w", op, err)
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("%s: failed to close archive: %w", op, err)
	}

	for _, path := range included {
		if err := os.Remove(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove bundled source file")
		}
	}
	return nil
}
