package codec

import (
	"errors"
	"fmt"
)

// Kind is a stable category for programmatic error handling.
//
// Callers should branch on Kind/RuleID rather than matching error strings.
// Use errors.As to extract *Error for structured handling.
type Kind string

const (
	KindWidth   Kind = "Width"
	KindRange   Kind = "Range"
	KindAddress Kind = "Address"
	KindHex     Kind = "Hex"
	KindSchema  Kind = "Schema"
	KindABI     Kind = "ABI"
	KindDecode  Kind = "Decode"
)

// Error is the codec's structured error type.
//
// RuleID is a stable identifier (e.g., IDP-WIDTH-001, IDP-ADDR-002) naming the
// violated encoding rule. Message is intended for humans; do not match on it.
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
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NewError returns a structured error without a cause.
func NewError(kind Kind, ruleID, msg string) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: msg}
}

// Errorf is NewError with a formatted message.
func Errorf(kind Kind, ruleID, format string, args ...any) error {
	return &Error{Kind: kind, RuleID: ruleID, Message: fmt.Sprintf(format, args...)}
}

// WrapError returns a structured error carrying cause.
func WrapError(kind Kind, ruleID, msg string, cause error) error {
	if cause == nil {
		return NewError(kind, ruleID, msg)
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
