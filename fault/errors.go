// Package fault is the structured error taxonomy shared by every wfledger package.
//
// Callers should branch on Kind/Code rather than matching error strings.
// Error() strings are human-readable and may evolve.
package fault

import "errors"

// Kind is a stable category for programmatic error handling.
type Kind string

const (
	KindKeyLoad            Kind = "KeyLoad"
	KindInvalidKeyMaterial Kind = "InvalidKeyMaterial"
	KindSigning            Kind = "Signing"
	KindVerification       Kind = "Verification"
	KindPayloadEncode      Kind = "PayloadEncode"
	KindPayloadDecode      Kind = "PayloadDecode"
	KindEmptyBatch         Kind = "EmptyBatch"
	KindWireDecode         Kind = "WireDecode"
	KindTransport          Kind = "Transport"
	KindResponseParse      Kind = "ResponseParse"
	KindConfig             Kind = "Config"
)

// Scope says how far a failure reaches.
type Scope int

const (
	// ScopeRequest failures abort the current request only.
	ScopeRequest Scope = iota
	// ScopeProcess failures leave nothing to recover; the process should exit.
	ScopeProcess
)

func (s Scope) String() string {
	if s == ScopeProcess {
		return "process"
	}
	return "request"
}

// Scope returns the reach of failures of this kind.
// Only key loading and configuration failures are fatal to the process.
func (k Kind) Scope() Scope {
	switch k {
	case KindKeyLoad, KindConfig:
		return ScopeProcess
	default:
		return ScopeRequest
	}
}

// Error is the structured error type.
//
// Code is a stable identifier (e.g. WFL-KEY-001, WFL-ENV-101) naming the
// violated rule. Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New returns a structured error without a cause.
func New(kind Kind, code, msg string) error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

// Wrap returns a structured error carrying cause. A nil cause behaves like New.
func Wrap(kind Kind, code, msg string, cause error) error {
	if cause == nil {
		return New(kind, code, msg)
	}
	return &Error{Kind: kind, Code: code, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) an *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// KindOf returns the Kind of a structured error, or "" if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Kind
}

// CodeOf returns the stable Code for a structured error, or "" if unknown.
func CodeOf(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.Code
}

// IsProcessFatal reports whether err should terminate the process.
// Unstructured errors are treated as request-scoped.
func IsProcessFatal(err error) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind.Scope() == ScopeProcess
}
