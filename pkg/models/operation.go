package models

import (
	"time"

	"github.com/google/uuid"
)

// OperationKind identifies a user-facing transfer operation
type OperationKind string

const (
	// OpCheckout performs the initial checkout of a repository path
	OpCheckout OperationKind = "checkout"
	// OpPut uploads local content to the server
	OpPut OperationKind = "put"
	// OpGet downloads server content into the checkout
	OpGet OperationKind = "get"
	// OpStatus lists differing paths between server and checkout
	OpStatus OperationKind = "status"
	// OpDiff shows a unified diff between server and checkout
	OpDiff OperationKind = "diff"
)

// Direction defines which side of a diff is presented as the old version
type Direction string

const (
	// DirectionLocal shows local changes compared to the server (server is old)
	DirectionLocal Direction = "local"
	// DirectionServer shows server changes compared to the checkout (checkout is old)
	DirectionServer Direction = "server"
)

// Label returns the human readable arrow form of the direction
func (d Direction) Label() string {
	if d == DirectionServer {
		return "server -> local"
	}
	return "local -> server"
}

// Operation represents a single invocation of a transfer operation
type Operation struct {
	ID         string
	Kind       OperationKind
	LocalPath  string
	RepoRoot   string
	FilterPath string
	Direction  Direction
	CreatedAt  time.Time
}

// NewOperation creates an operation with a fresh identifier
func NewOperation(kind OperationKind, localPath string) *Operation {
	return &Operation{
		ID:        uuid.New().String(),
		Kind:      kind,
		LocalPath: localPath,
		CreatedAt: time.Now(),
	}
}

// Validate checks that the operation has been resolved against a checkout
func (op *Operation) Validate() error {
	if op.Kind == "" {
		return &ValidationError{Field: "Kind", Message: "operation kind is required"}
	}
	if op.RepoRoot == "" {
		return &ValidationError{Field: "RepoRoot", Message: "checkout root is required"}
	}
	if op.FilterPath == "" {
		return &ValidationError{Field: "FilterPath", Message: "filter path is required"}
	}
	return nil
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
