package ideas

import "errors"

// Error classes. Call sites wrap these with fmt.Errorf("%w: ...") so callers
// can branch with errors.Is.
var (
	// ErrInvalidInput marks malformed or non-post URLs and empty subreddit lists.
	ErrInvalidInput = errors.New("invalid input")
	// ErrExternalService marks Reddit or model-provider transport, status and parse failures.
	ErrExternalService = errors.New("external service")
	// ErrIO marks local file read/write failures.
	ErrIO = errors.New("io")
	// ErrSheetsExport marks spreadsheet export failures. Never fatal to a run.
	ErrSheetsExport = errors.New("sheets export")
)
