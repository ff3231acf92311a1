// Package acerr defines the structured error type shared by the aircommit
// core packages.
package acerr

import "errors"

// Kind is a stable category for programmatic error handling.
//
// These categories are intended to remain stable across versions.
// Callers should branch on Kind/RuleID rather than matching error strings.
//
// NOTE: Error() strings are intentionally kept human-readable and may evolve.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	// KindEncoding covers malformed text: bad bech32 alphabet or checksum,
	// unknown prefix tags, wrong payload lengths, invalid Base64.
	KindEncoding Kind = "Encoding"
	// KindCrypto covers invalid key material and failed verification.
	KindCrypto Kind = "Crypto"
	// KindFraming covers malformed frame headers, inconsistent totals and
	// missing parts of a multi-part transmission.
	KindFraming Kind = "Framing"
	// KindSignal covers undecodable audio: tones outside every frequency bin.
	KindSignal Kind = "Signal"
	// KindInternal flags invariant violations that indicate a bug.
	KindInternal Kind = "Internal"
)

// Error is the library's structured error type.
//
// RuleID is a stable identifier (e.g., AC-KEY-002, AC-FRAME-005) that names
// the violated invariant.
//
// Message is intended for humans; do not match on it.
type Error struct {
	Kind    Kind
	RuleID  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New returns a structured error with no cause.
func New(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

// Wrap returns a structured error wrapping cause.
func Wrap(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return New(kind, ruleID, msg)
	}
	return &Error{Kind: kind, RuleID: ruleID, Message: msg, Cause: cause}
}

// IsKind reports whether err is (or wraps) a *Error with the given Kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}

// RuleID returns the stable RuleID for a structured error, or "" if unknown.
func RuleID(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return ""
	}
	return e.RuleID
}
