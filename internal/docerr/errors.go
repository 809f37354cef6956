// Package docerr defines the error kinds surfaced by the documentation
// pipeline. Per-file kinds are recorded on extractions; run-level kinds abort
// the stage that raised them.
package docerr

import (
	"errors"
	"fmt"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	// Run-level.
	KindTraversalFailed   Kind = "TRAVERSAL_FAILED"
	KindPersistenceFailed Kind = "PERSISTENCE_FAILED"
	KindCloneFailed       Kind = "CLONE_FAILED"
	KindInvalidConfig     Kind = "INVALID_CONFIG"

	// Per-file.
	KindUnsupportedLanguage Kind = "UNSUPPORTED_LANGUAGE"
	KindFileTooLarge        Kind = "FILE_TOO_LARGE"
	KindDecodeFallback      Kind = "DECODE_FALLBACK"
	KindReadFailed          Kind = "READ_FAILED"
	KindParseFailed         Kind = "PARSE_FAILED"
)

// Fatal reports whether a kind aborts the run rather than a single file.
func (k Kind) Fatal() bool {
	switch k {
	case KindTraversalFailed, KindPersistenceFailed, KindCloneFailed, KindInvalidConfig:
		return true
	}
	return false
}

// Describe returns a short human label used in rendered documents.
func (k Kind) Describe() string {
	switch k {
	case KindUnsupportedLanguage:
		return "unsupported language"
	case KindFileTooLarge:
		return "file too large"
	case KindDecodeFallback:
		return "decoded with replacement characters"
	case KindReadFailed:
		return "unreadable"
	case KindParseFailed:
		return "parser error"
	case KindTraversalFailed:
		return "traversal failed"
	case KindPersistenceFailed:
		return "write failed"
	case KindCloneFailed:
		return "clone failed"
	case KindInvalidConfig:
		return "invalid configuration"
	default:
		return string(k)
	}
}

// Error is a pipeline error tagged with a Kind and the stage that raised it.
type Error struct {
	Kind  Kind
	Stage string
	Path  string
	Err   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s]", e.Kind)
	if e.Stage != "" {
		msg += " " + e.Stage
	}
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error without an underlying cause.
func New(kind Kind, stage, path string) error {
	return &Error{Kind: kind, Stage: stage, Path: path}
}

// Wrap tags err with kind and stage. A nil err yields nil.
func Wrap(err error, kind Kind, stage, path string) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Stage: stage, Path: path, Err: err}
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}

// StageOf returns the stage recorded on err, or "" when absent.
func StageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Stage
	}
	return ""
}
