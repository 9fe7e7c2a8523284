package errors

import (
	"errors"
	"fmt"

	"github.com/tsubalang/tsubac/internal/schema"
	"github.com/tsubalang/tsubac/internal/span"
)

// schemaCompileErrorV1 is the schema tag stamped on every CompileError when
// it is rendered to JSON (e.g. by an IDE-facing diagnostics consumer).
const schemaCompileErrorV1 = schema.ErrorV1

// CompileError is the one type every user-facing rejection in the core must
// be raised as. Only this package may construct a bare runtime error (and
// only for its own "unknown code" invariant checks in DomainOf).
type CompileError struct {
	Schema  string         `json:"schema"`
	Code    Code           `json:"code"`
	Message string         `json:"message"`
	Span    *span.Span     `json:"span,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// New constructs a CompileError for a registered code. It panics if the
// code is not in the registry: an unregistered code reaching here is a bug
// in the compiler, not a user mistake, and §4.1 requires the registry to
// reject unknown codes rather than silently accept them.
func New(code Code, message string, at *span.Span) *CompileError {
	if !Contains(code) {
		panic("errors: raising unregistered diagnostic code " + code)
	}
	return &CompileError{Schema: schemaCompileErrorV1, Code: code, Message: message, Span: at}
}

// WithData attaches structured context (e.g. the offending identifier, the
// two mismatched arities) to a CompileError and returns it for chaining.
func (e *CompileError) WithData(key string, value any) *CompileError {
	if e.Data == nil {
		e.Data = map[string]any{}
	}
	e.Data[key] = value
	return e
}

// Error implements the error interface with the one-line rendering spec §7
// mandates for compile errors: "<source-file>:<line>:<col>: <code>: <message>".
// Line comes from the token the span was built from (internal/parser's
// curSpan/spanFrom); col is the span's Start column. Spans synthesized on
// the target side (no source line to report) fall through to the bare
// code/message form via the IsZero check below.
func (e *CompileError) Error() string {
	if e.Span == nil || e.Span.IsZero() {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s: %s", e.Span.File, e.Span.Line, e.Span.Start, e.Code, e.Message)
}

// Domain returns the diagnostic domain this error's code belongs to.
func (e *CompileError) Domain() Domain {
	return DomainOf(e.Code)
}

// As lets callers recover a *CompileError from a wrapped error chain, e.g.
// after it has passed through fmt.Errorf("...: %w", err).
func As(err error) (*CompileError, bool) {
	var ce *CompileError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}
