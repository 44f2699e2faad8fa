package models

import (
	"time"
)

// Report represents the results of a transfer operation
type Report struct {
	// Operation details
	OperationID string        `json:"operation_id"`
	Kind        OperationKind `json:"kind"`
	FilterPath  string        `json:"filter_path"`
	Server      string        `json:"server"`
	Direction   Direction     `json:"direction,omitempty"`

	// Timing
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`

	// Entries holds the status classification (status only)
	Entries []DiffEntry `json:"entries,omitempty"`

	// DiffLines holds the unified diff output (diff only)
	DiffLines []string `json:"-"`

	// Files lists the archive entries that were transferred
	Files []string `json:"files,omitempty"`

	// Bytes is the size of the transferred archive
	Bytes int64 `json:"bytes,omitempty"`

	// Warnings collects non-fatal conditions
	Warnings []string `json:"warnings,omitempty"`

	Status ReportStatus `json:"status"`
}

// ReportStatus represents the overall result
type ReportStatus string

const (
	// StatusCompleted indicates the operation ran to completion
	StatusCompleted ReportStatus = "completed"
	// StatusAborted indicates the user declined the confirmation
	StatusAborted ReportStatus = "aborted"
	// StatusNoContent indicates the server returned nothing for the filter
	StatusNoContent ReportStatus = "no_content"
)

// NewReport starts a report for the operation
func NewReport(op *Operation, server string) *Report {
	return &Report{
		OperationID: op.ID,
		Kind:        op.Kind,
		FilterPath:  op.FilterPath,
		Server:      server,
		Direction:   op.Direction,
		StartTime:   time.Now(),
	}
}

// Finish stamps the end time and status
func (r *Report) Finish(status ReportStatus) *Report {
	r.EndTime = time.Now()
	r.Duration = r.EndTime.Sub(r.StartTime)
	r.Status = status
	return r
}

// Count returns the number of entries with the given status
func (r *Report) Count(status StatusCode) int {
	n := 0
	for _, e := range r.Entries {
		if e.Status == status {
			n++
		}
	}
	return n
}
