package routeerr

import (
	"errors"
	"fmt"
	"time"
)

// Kind classifies a RouteError.
type Kind uint8

const (
	KindUnknown             Kind = iota // any other failure
	KindNotFound                        // no route matched the pathname
	KindRenderTargetMissing             // no outlet where one was required
	KindContentLoadFailed               // content producer failed or returned nothing
	KindContentRenderFailed             // outlet dispatch failed
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not-found"
	case KindRenderTargetMissing:
		return "render-target-missing"
	case KindContentLoadFailed:
		return "content-load-failed"
	case KindContentRenderFailed:
		return "content-render-failed"
	default:
		return "unknown"
	}
}

// Kind sentinels for errors.Is.
var (
	ErrUnknown             = &kindError{KindUnknown}
	ErrNotFound            = &kindError{KindNotFound}
	ErrRenderTargetMissing = &kindError{KindRenderTargetMissing}
	ErrContentLoadFailed   = &kindError{KindContentLoadFailed}
	ErrContentRenderFailed = &kindError{KindContentRenderFailed}
)

type kindError struct{ kind Kind }

func (e *kindError) Error() string { return "routeerr: " + e.kind.String() }

// RouteError is a classified navigation failure.
type RouteError struct {
	// Code is an HTTP-like status (int) or a symbolic code (string),
	// e.g. 404 or "CONTENT_LOAD_FAILED".
	Code any

	// Kind is the taxonomy bucket.
	Kind Kind

	// Message is a short description of the error.
	Message string

	// Timestamp is when the error was created.
	Timestamp time.Time

	// Original is the underlying cause, if any.
	Original error
}

// Error implements the error interface.
func (e *RouteError) Error() string {
	if e.Original != nil && e.Original.Error() != e.Message {
		return fmt.Sprintf("%v: %s: %v", e.Code, e.Message, e.Original)
	}
	return fmt.Sprintf("%v: %s", e.Code, e.Message)
}

// Unwrap returns the original error for errors.Is/As support.
func (e *RouteError) Unwrap() error {
	return e.Original
}

// Is matches the kind sentinels.
func (e *RouteError) Is(target error) bool {
	var k *kindError
	if errors.As(target, &k) {
		return k.kind == e.Kind
	}
	return false
}

// CodeString returns the code formatted for display and metric labels.
func (e *RouteError) CodeString() string {
	return fmt.Sprint(e.Code)
}

// New creates a RouteError of the given kind using its registered code and
// message.
func New(kind Kind, original error) *RouteError {
	tmpl := lookup(kind)
	return &RouteError{
		Code:      tmpl.Code,
		Kind:      kind,
		Message:   tmpl.Message,
		Timestamp: time.Now(),
		Original:  original,
	}
}

// NotFound creates a KindNotFound error for path.
func NotFound(path string) *RouteError {
	e := New(KindNotFound, nil)
	e.Message = fmt.Sprintf("%s: %s", e.Message, path)
	return e
}

// RenderTargetMissing creates a KindRenderTargetMissing error.
func RenderTargetMissing() *RouteError {
	return New(KindRenderTargetMissing, nil)
}

// ContentLoadFailed wraps a content producer failure.
func ContentLoadFailed(original error) *RouteError {
	return New(KindContentLoadFailed, original)
}

// ContentRenderFailed wraps an outlet dispatch failure.
func ContentRenderFailed(original error) *RouteError {
	return New(KindContentRenderFailed, original)
}

// Coder is implemented by errors that carry their own code.
type Coder interface {
	ErrorCode() any
}

// Wrap classifies err. A *RouteError anywhere in the chain is returned
// unchanged; anything else becomes KindUnknown, keeping the code of a Coder
// and the message of err when present.
func Wrap(err error) *RouteError {
	if err == nil {
		return nil
	}
	var rerr *RouteError
	if errors.As(err, &rerr) {
		return rerr
	}

	out := New(KindUnknown, err)
	var coder Coder
	if errors.As(err, &coder) {
		if code := coder.ErrorCode(); code != nil {
			out.Code = code
		}
	}
	if msg := err.Error(); msg != "" {
		out.Message = msg
	}
	return out
}

// FromPanic converts a recovered panic value into a RouteError.
func FromPanic(v any) *RouteError {
	if err, ok := v.(error); ok {
		return Wrap(err)
	}
	return Wrap(fmt.Errorf("panic: %v", v))
}
