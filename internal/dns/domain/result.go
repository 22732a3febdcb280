package domain

// ResolutionStatus classifies the outcome of resolving a question against
// authoritative zone data. Every status maps to a distinct, observable
// response code; nothing in the resolution path is silently swallowed.
type ResolutionStatus uint8

const (
	// StatusAnswer indicates matching records were found.
	StatusAnswer ResolutionStatus = iota
	// StatusNoData indicates the name exists but holds no records of the
	// queried type. Encoded as NOERROR with the zone SOA in authority.
	StatusNoData
	// StatusNXDomain indicates the name does not exist within a zone the
	// server is authoritative for.
	StatusNXDomain
	// StatusReferral indicates the name falls under a delegated subzone;
	// the authority section carries the delegation NS records.
	StatusReferral
	// StatusNotAuthoritative indicates the name is outside every loaded
	// zone. Encoded as REFUSED, distinct from NXDOMAIN.
	StatusNotAuthoritative
	// StatusNameTooLong indicates DNAME substitution synthesized a name
	// exceeding 255 octets. Encoded as YXDOMAIN per RFC 6672 §2.2; the
	// offending data is never emitted.
	StatusNameTooLong
	// StatusServFail indicates an internal resolution failure, such as a
	// DNAME chain exceeding the maximum depth.
	StatusServFail
)

// ResolutionResult is the outcome of resolving a single question.
// Answers and Authority are ordered as they should appear on the wire.
type ResolutionResult struct {
	Status    ResolutionStatus
	Answers   []ResourceRecord
	Authority []ResourceRecord
}

// RCode maps a resolution status to its wire response code.
func (s ResolutionStatus) RCode() RCode {
	switch s {
	case StatusAnswer, StatusNoData, StatusReferral:
		return NOERROR
	case StatusNXDomain:
		return NXDOMAIN
	case StatusNotAuthoritative:
		return REFUSED
	case StatusNameTooLong:
		return YXDOMAIN
	default:
		return SERVFAIL
	}
}

// IsPositive reports whether the result carries answer data that is safe to
// cache. Negative and error outcomes are never cached.
func (r ResolutionResult) IsPositive() bool {
	return r.Status == StatusAnswer && len(r.Answers) > 0
}

func (s ResolutionStatus) String() string {
	switch s {
	case StatusAnswer:
		return "answer"
	case StatusNoData:
		return "nodata"
	case StatusNXDomain:
		return "nxdomain"
	case StatusReferral:
		return "referral"
	case StatusNotAuthoritative:
		return "not_authoritative"
	case StatusNameTooLong:
		return "name_too_long"
	case StatusServFail:
		return "servfail"
	default:
		return "unknown"
	}
}
