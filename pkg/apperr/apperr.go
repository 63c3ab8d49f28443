package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error from the core API boundary so handlers can map
// it to a distinct user-visible state.
type Kind int

const (
	// Transport covers network failures, timeouts and 5xx upstream replies.
	Transport Kind = iota
	// FeatureGated is an upstream 403 carrying a plan-upgrade message. It is
	// not a generic authorization failure: the panel shows an upsell prompt.
	FeatureGated
	// Decode means the upstream replied 2xx but the body did not match any
	// shape we accept.
	Decode
	// Upstream covers remaining non-2xx replies (404, 422, ...).
	Upstream
)

func (k Kind) String() string {
	switch k {
	case FeatureGated:
		return "feature_gated"
	case Decode:
		return "decode"
	case Upstream:
		return "upstream"
	default:
		return "transport"
	}
}

// Error is a classified error from the core API boundary.
type Error struct {
	Kind    Kind
	Status  int    // upstream HTTP status, 0 when none was received
	Mensaje string // safe to surface to the panel user
	Err     error  // underlying cause, may be nil
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Mensaje, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Mensaje)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New builds an Error of the given kind.
func New(kind Kind, mensaje string) *Error {
	return &Error{Kind: kind, Mensaje: mensaje}
}

// Wrap builds an Error of the given kind around a cause.
func Wrap(kind Kind, mensaje string, err error) *Error {
	return &Error{Kind: kind, Mensaje: mensaje, Err: err}
}

// Gated builds a FeatureGated error with the upstream's upsell message.
func Gated(mensaje string) *Error {
	return &Error{Kind: FeatureGated, Status: 403, Mensaje: mensaje}
}

// IsGated reports whether err is a feature-gate error.
func IsGated(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == FeatureGated
}

// KindOf returns the Kind of err, defaulting to Transport for unclassified
// errors so callers always get a retry-capable state.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Transport
}
