package ports

import "fmt"

// SourceFormatError reports a malformed input document or table. A refresh
// that hits one aborts and leaves the previously published index in place.
type SourceFormatError struct {
	Source string // file or sheet that failed
	Detail string
}

func (e *SourceFormatError) Error() string {
	return fmt.Sprintf("source format: %s: %s", e.Source, e.Detail)
}

// SourceMissingError reports an expected source that could not be read.
// Same retention policy as SourceFormatError.
type SourceMissingError struct {
	Source string
	Err    error
}

func (e *SourceMissingError) Error() string {
	return fmt.Sprintf("source missing: %s: %v", e.Source, e.Err)
}

func (e *SourceMissingError) Unwrap() error { return e.Err }

// IndexNotReadyError is returned for queries attempted before any successful
// load. Surfaced to the caller, never retried internally — it distinguishes
// "engine unavailable" from a legitimate zero-match result.
type IndexNotReadyError struct{}

func (e *IndexNotReadyError) Error() string {
	return "index not ready: no corpus has been loaded"
}
