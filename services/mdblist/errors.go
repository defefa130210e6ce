package mdblist

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why an owned-lists lookup failed.
type ErrorKind string

const (
	KindMissingCredential       ErrorKind = "MissingCredential"
	KindInvalidCredential       ErrorKind = "InvalidCredential"
	KindUpstreamRejected        ErrorKind = "UpstreamRejected"
	KindUnexpectedResponseShape ErrorKind = "UnexpectedResponseShape"
	KindInvalidResponseFormat   ErrorKind = "InvalidResponseFormat"
	KindUpstreamUnreachable     ErrorKind = "UpstreamUnreachable"
)

// Sentinels for errors.Is; matching compares kinds only.
var (
	ErrMissingCredential       = &ResolveError{Kind: KindMissingCredential}
	ErrInvalidCredential       = &ResolveError{Kind: KindInvalidCredential}
	ErrUpstreamRejected        = &ResolveError{Kind: KindUpstreamRejected}
	ErrUnexpectedResponseShape = &ResolveError{Kind: KindUnexpectedResponseShape}
	ErrInvalidResponseFormat   = &ResolveError{Kind: KindInvalidResponseFormat}
	ErrUpstreamUnreachable     = &ResolveError{Kind: KindUpstreamUnreachable}
)

// ResolveError is returned by ResolveOwnedLists.
type ResolveError struct {
	Kind        ErrorKind
	Status      int    // upstream HTTP status, when one was received
	ContentType string // upstream Content-Type, for shape errors
	Excerpt     string // leading bytes of the upstream body
	Err         error
}

func (e *ResolveError) Error() string {
	switch e.Kind {
	case KindMissingCredential:
		return "MDBList API key is required"
	case KindInvalidCredential:
		return "invalid MDBList API key"
	case KindUpstreamRejected:
		if e.Excerpt != "" {
			return fmt.Sprintf("MDBList API error (%d) fetching lists: %s", e.Status, e.Excerpt)
		}
		return fmt.Sprintf("MDBList API error (%d) fetching lists", e.Status)
	case KindUnexpectedResponseShape:
		return fmt.Sprintf("unexpected MDBList response (expected JSON, got %q): %s", e.ContentType, e.Excerpt)
	case KindInvalidResponseFormat:
		if e.Err != nil {
			return fmt.Sprintf("invalid MDBList lists response format: %v", e.Err)
		}
		return "invalid MDBList lists response format"
	case KindUpstreamUnreachable:
		if e.Err != nil {
			return fmt.Sprintf("MDBList API unreachable: %v", e.Err)
		}
		return "MDBList API unreachable"
	default:
		return fmt.Sprintf("mdblist: %s", e.Kind)
	}
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

func (e *ResolveError) Is(target error) bool {
	t, ok := target.(*ResolveError)
	return ok && t.Kind == e.Kind
}

// KindOf extracts the classification of err, or "" when err is not a ResolveError.
func KindOf(err error) ErrorKind {
	var re *ResolveError
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}
