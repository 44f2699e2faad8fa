package models

// UsageReason categorizes usage errors
type UsageReason string

const (
	// ReasonMissingPath indicates a required path argument was not given
	ReasonMissingPath UsageReason = "missing_path"
	// ReasonInvalidPath indicates a malformed or nonexistent path
	ReasonInvalidPath UsageReason = "invalid_path"
	// ReasonRootPath indicates the repository root was used as an operand
	ReasonRootPath UsageReason = "root_path"
	// ReasonOutsideCheckout indicates the path has no jcr_root ancestor
	ReasonOutsideCheckout UsageReason = "outside_checkout"
	// ReasonInvalidFlag indicates a malformed flag value
	ReasonInvalidFlag UsageReason = "invalid_flag"
)

// UsageError reports an invalid invocation. It is always raised before any
// network call is made.
type UsageError struct {
	Reason  UsageReason
	Path    string
	Message string
}

func (e *UsageError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Message + ": " + e.Path
}

// NewRootPathError returns the error shared by all operations refusing the repository root
func NewRootPathError() *UsageError {
	return &UsageError{
		Reason:  ReasonRootPath,
		Message: "refusing to work on repository root (would be too slow or overwrite everything)",
	}
}

// NewOutsideCheckoutError returns the error for paths without a jcr_root ancestor
func NewOutsideCheckoutError(path string) *UsageError {
	return &UsageError{
		Reason:  ReasonOutsideCheckout,
		Path:    path,
		Message: "not inside a vault checkout with a jcr_root base directory",
	}
}
