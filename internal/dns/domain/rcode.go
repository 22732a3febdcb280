package domain

import "fmt"

// RCode represents a DNS response code indicating the result of a query.
type RCode uint8

// DNS response code constants (RFC 1035 §4.1.1; YXDOMAIN from RFC 2136 §2.2,
// reused here for names that violate protocol limits per RFC 6672 §2.2).
const (
	NOERROR  RCode = 0
	FORMERR  RCode = 1
	SERVFAIL RCode = 2
	NXDOMAIN RCode = 3
	NOTIMP   RCode = 4
	REFUSED  RCode = 5
	YXDOMAIN RCode = 6
)

// IsValid returns true if the RCode is within the supported response code range.
func (r RCode) IsValid() bool {
	return r <= YXDOMAIN
}

// String returns the textual representation of the RCode.
func (r RCode) String() string {
	switch r {
	case NOERROR:
		return "NOERROR"
	case FORMERR:
		return "FORMERR"
	case SERVFAIL:
		return "SERVFAIL"
	case NXDOMAIN:
		return "NXDOMAIN"
	case NOTIMP:
		return "NOTIMP"
	case REFUSED:
		return "REFUSED"
	case YXDOMAIN:
		return "YXDOMAIN"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(r))
	}
}
