package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/jcrsync/pkg/models"
)

// JSONFormatter formats output as JSON for automation and scripting
type JSONFormatter struct {
	writer  io.Writer
	vcs     []string
	preview []string
}

// JSONReportData represents the final report
type JSONReportData struct {
	OperationID string             `json:"operation_id"`
	Operation   string             `json:"operation"`
	FilterPath  string             `json:"filter_path"`
	Server      string             `json:"server"`
	Direction   string             `json:"direction,omitempty"`
	Status      string             `json:"status"`
	Duration    string             `json:"duration"`
	DurationMs  int64              `json:"duration_ms"`
	Bytes       int64              `json:"bytes,omitempty"`
	Size        string             `json:"size,omitempty"`
	Counts      map[string]int     `json:"counts,omitempty"`
	Entries     []models.DiffEntry `json:"entries,omitempty"`
	Diff        []string           `json:"diff,omitempty"`
	Files       []string           `json:"files,omitempty"`
	VCSStatus   []string           `json:"vcs_status,omitempty"`
	Warnings    []string           `json:"warnings,omitempty"`
}

// NewJSONFormatter creates a new JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Start initializes the formatter
func (f *JSONFormatter) Start(writer io.Writer, op *models.Operation, server string) error {
	if writer == nil {
		writer = os.Stdout
	}
	f.writer = writer
	return nil
}

// Progress keeps the lines the final report needs. Nothing is written
// before Complete so the output stays parseable.
func (f *JSONFormatter) Progress(update ProgressUpdate) error {
	switch update.Type {
	case UpdateVCSStatus:
		f.vcs = append(f.vcs, update.Lines...)
	case UpdatePreview:
		f.preview = update.Lines
	}
	return nil
}

// Complete writes the report as a single JSON document
func (f *JSONFormatter) Complete(report *models.Report) error {
	if f.writer == nil {
		f.writer = os.Stdout
	}

	data := JSONReportData{
		OperationID: report.OperationID,
		Operation:   string(report.Kind),
		FilterPath:  report.FilterPath,
		Server:      report.Server,
		Direction:   string(report.Direction),
		Status:      string(report.Status),
		Duration:    report.Duration.Round(time.Millisecond).String(),
		DurationMs:  report.Duration.Milliseconds(),
		Bytes:       report.Bytes,
		Entries:     report.Entries,
		Diff:        report.DiffLines,
		Files:       report.Files,
		VCSStatus:   f.vcs,
		Warnings:    report.Warnings,
	}
	if len(data.Files) == 0 {
		data.Files = f.preview
	}
	if report.Bytes > 0 {
		data.Size = FormatBytes(report.Bytes)
	}
	if len(report.Entries) > 0 {
		data.Counts = make(map[string]int)
		for _, entry := range report.Entries {
			data.Counts[string(entry.Status)]++
		}
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Error writes the error as a JSON document
func (f *JSONFormatter) Error(err error) error {
	if f.writer == nil {
		f.writer = os.Stderr
	}
	encoder := json.NewEncoder(f.writer)
	return encoder.Encode(map[string]string{"error": err.Error()})
}

// Name returns the formatter name
func (f *JSONFormatter) Name() string {
	return "json"
}
