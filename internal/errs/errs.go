// Package errs defines the error taxonomy shared across the catalogue,
// tfidf, normalize, and kmeans packages.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies a failure into one of the dispositions the core
// distinguishes between. Callers use errors.Is against the sentinel
// values below, not against Kind directly.
type Kind int

const (
	// Io covers read/open/stat failures against the filesystem.
	Io Kind = iota
	// Parse covers malformed input: incomplete attributes, unsupported
	// missing-value tokens, unrecognised record syntax.
	Parse
	// InvalidArgument covers bad CLI flags or bad API arguments.
	InvalidArgument
	// ResourceExhausted covers allocation failure.
	ResourceExhausted
	// Invariant covers contract violations; these are treated as bugs.
	Invariant
	// EmptyInput covers a stage handed nothing to work on.
	EmptyInput
	// Cancelled covers cooperative cancellation via context.Context.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case Io:
		return "io"
	case Parse:
		return "parse"
	case InvalidArgument:
		return "invalid_argument"
	case ResourceExhausted:
		return "resource_exhausted"
	case Invariant:
		return "invariant"
	case EmptyInput:
		return "empty_input"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Sentinel values for errors.Is comparisons against a Kind without caring
// about the wrapped message.
var (
	Io_                = &kindError{kind: Io, msg: "io"}
	Parse_             = &kindError{kind: Parse, msg: "parse"}
	InvalidArgument_   = &kindError{kind: InvalidArgument, msg: "invalid argument"}
	ResourceExhausted_ = &kindError{kind: ResourceExhausted, msg: "resource exhausted"}
	Invariant_         = &kindError{kind: Invariant, msg: "invariant violation"}
	EmptyInput_        = &kindError{kind: EmptyInput, msg: "empty input"}
	Cancelled_         = &kindError{kind: Cancelled, msg: "cancelled"}
)

type kindError struct {
	kind Kind
	msg  string
}

func (e *kindError) Error() string { return e.msg }

// Is makes every error of a given Kind compare equal under errors.Is,
// regardless of message, so callers can write errors.Is(err, errs.EmptyInput_).
func (e *kindError) Is(target error) bool {
	var ke *kindError
	if errors.As(target, &ke) {
		return ke.kind == e.kind
	}
	return false
}

// New creates an error of the given kind with a formatted message.
func New(kind Kind, format string, args ...any) error {
	return &kindError{kind: kind, msg: fmt.Sprintf("%s: %s", kind, fmt.Sprintf(format, args...))}
}

// Wrap annotates err with a kind and a message, preserving it for errors.Unwrap.
func Wrap(kind Kind, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	msg := fmt.Sprintf(format, args...)
	return &wrapped{kindError: kindError{kind: kind, msg: fmt.Sprintf("%s: %s: %v", kind, msg, err)}, cause: err}
}

type wrapped struct {
	kindError
	cause error
}

func (w *wrapped) Unwrap() error { return w.cause }

// KindOf reports the Kind carried by err, if any, and whether one was found.
func KindOf(err error) (Kind, bool) {
	for e := err; e != nil; e = errors.Unwrap(e) {
		switch ke := e.(type) {
		case *kindError:
			return ke.kind, true
		case *wrapped:
			return ke.kind, true
		}
	}
	return 0, false
}
