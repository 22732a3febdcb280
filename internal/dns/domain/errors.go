package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for name construction. These are a distinct error class:
// a name violating protocol limits is rejected, never silently truncated.
var (
	// ErrLabelTooLong indicates a single label exceeds 63 octets.
	ErrLabelTooLong = errors.New("domain label exceeds 63 octets")
	// ErrNameTooLong indicates the encoded name exceeds 255 octets.
	ErrNameTooLong = errors.New("domain name exceeds 255 octets")
	// ErrEmptyLabel indicates the name contains an empty label.
	ErrEmptyLabel = errors.New("domain name contains an empty label")
	// ErrNotSubdomain indicates a suffix substitution was attempted on a name
	// that is not below the suffix being replaced.
	ErrNotSubdomain = errors.New("name is not a subdomain of the given suffix")
)

// Resolution errors surfaced as SERVFAIL by the query server.
var (
	// ErrRedirectDepthExceeded is returned when a DNAME chain exceeds the
	// configured maximum depth, which indicates a circular redirection.
	ErrRedirectDepthExceeded = errors.New("redirect chain depth exceeded")
)

// ParseError reports a malformed zone file. A load that produces a ParseError
// is fatal: no partial zone is ever served.
type ParseError struct {
	File string
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
