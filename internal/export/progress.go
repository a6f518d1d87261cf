package export

import (
	"encoding/json"
	"os"

	"ucrm-export/internal/logger"
)

// Reporter receives phase transitions of a running export.
type Reporter interface {
	Report(step, total int, message string)
}

// LogReporter writes progress to the structured log.
type LogReporter struct{}

func (LogReporter) Report(step, total int, message string) {
	lg := logger.WithComponent("export")
	lg.Info().
		Int("step", step).
		Int("total", total).
		Msg(message)
}

// FileReporter persists the latest progress record as a small JSON file so
// another process can poll it. The file is overwritten wholesale on each
// update; readers tolerate a stale record. Clear removes the file once the
// run ends.
type FileReporter struct {
	path string
}

// NewFileReporter reports progress into the file at path.
func NewFileReporter(path string) *FileReporter {
	return &FileReporter{path: path}
}

type progressRecord struct {
	Step    int    `json:"step"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

func (r *FileReporter) Report(step, total int, message string) {
	data, err := json.Marshal(progressRecord{Step: step, Total: total, Message: message})
	if err != nil {
		return
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		lg := logger.WithComponent("export")
		lg.Warn().Err(err).Str("path", r.path).Msg("Failed to write progress file")
	}
}

// Clear deletes the progress file. Safe to call when it does not exist.
func (r *FileReporter) Clear() {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		lg := logger.WithComponent("export")
		lg.Warn().Err(err).Str("path", r.path).Msg("Failed to remove progress file")
	}
}

// MultiReporter fans a progress update out to several reporters.
type MultiReporter []Reporter

func (m MultiReporter) Report(step, total int, message string) {
	for _, reporter := range m {
		reporter.Report(step, total, message)
	}
}
