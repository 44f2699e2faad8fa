package models

import (
	"errors"
	"testing"
)

// ============== DiffEntry Tests ==============

func TestDiffEntryString(t *testing.T) {
	tests := []struct {
		entry    DiffEntry
		expected string
	}{
		{DiffEntry{Path: "/a/x.txt", Status: StatusModified}, "M       /a/x.txt"},
		{DiffEntry{Path: "/a/z.txt", Status: StatusAddedLocally}, "A       /a/z.txt"},
		{DiffEntry{Path: "/a/y.txt", Status: StatusDeletedLocally}, "D       /a/y.txt"},
		{DiffEntry{Path: "/b", Status: StatusConflictFileVsDir}, "~ df    /b"},
		{DiffEntry{Path: "/c", Status: StatusConflictDirVsFile}, "~ fd    /c"},
	}

	for _, tt := range tests {
		t.Run(string(tt.entry.Status), func(t *testing.T) {
			if got := tt.entry.String(); got != tt.expected {
				t.Errorf("String() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestStatusCodeIsConflict(t *testing.T) {
	if StatusModified.IsConflict() {
		t.Error("M should not be a conflict")
	}
	if !StatusConflictFileVsDir.IsConflict() || !StatusConflictDirVsFile.IsConflict() {
		t.Error("~ df and ~ fd should be conflicts")
	}
}

// ============== Operation Tests ==============

func TestOperation(t *testing.T) {
	t.Run("UniqueIDs", func(t *testing.T) {
		a := NewOperation(OpGet, ".")
		b := NewOperation(OpGet, ".")
		if a.ID == "" || a.ID == b.ID {
			t.Errorf("expected distinct non-empty IDs, got %q and %q", a.ID, b.ID)
		}
	})

	t.Run("ValidateUnresolved", func(t *testing.T) {
		op := NewOperation(OpPut, "x")
		err := op.Validate()
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Validate() error = %v, want ValidationError", err)
		}
		if verr.Field != "RepoRoot" {
			t.Errorf("Field = %s, want RepoRoot", verr.Field)
		}
	})

	t.Run("ValidateResolved", func(t *testing.T) {
		op := NewOperation(OpPut, "x")
		op.RepoRoot = "/tmp/jcr_root"
		op.FilterPath = "/apps"
		if err := op.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}

func TestDirectionLabel(t *testing.T) {
	if DirectionLocal.Label() != "local -> server" {
		t.Errorf("local label = %s", DirectionLocal.Label())
	}
	if DirectionServer.Label() != "server -> local" {
		t.Errorf("server label = %s", DirectionServer.Label())
	}
}

// ============== Report Tests ==============

func TestReport(t *testing.T) {
	op := NewOperation(OpStatus, ".")
	op.FilterPath = "/apps/site"
	report := NewReport(op, "http://localhost:4502")
	report.Entries = []DiffEntry{
		{Path: "/apps/site/a", Status: StatusModified},
		{Path: "/apps/site/b", Status: StatusModified},
		{Path: "/apps/site/c", Status: StatusAddedLocally},
	}
	report.Finish(StatusCompleted)

	if report.Count(StatusModified) != 2 {
		t.Errorf("Count(M) = %d, want 2", report.Count(StatusModified))
	}
	if report.Count(StatusDeletedLocally) != 0 {
		t.Errorf("Count(D) = %d, want 0", report.Count(StatusDeletedLocally))
	}
	if report.Status != StatusCompleted {
		t.Errorf("Status = %s, want completed", report.Status)
	}
	if report.EndTime.Before(report.StartTime) {
		t.Error("EndTime before StartTime")
	}
}

func TestUsageError(t *testing.T) {
	err := NewOutsideCheckoutError("/tmp/x")
	if err.Reason != ReasonOutsideCheckout {
		t.Errorf("Reason = %s", err.Reason)
	}
	if err.Error() != "not inside a vault checkout with a jcr_root base directory: /tmp/x" {
		t.Errorf("Error() = %s", err.Error())
	}
	if NewRootPathError().Reason != ReasonRootPath {
		t.Error("root path error has wrong reason")
	}
}
