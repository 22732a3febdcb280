package domain

import "fmt"

// DNSResponse represents a complete DNS response with answers, authority, and
// additional sections, following RFC 1035 §4.1.1 message structure.
type DNSResponse struct {
	ID            uint16
	RCode         RCode
	Authoritative bool
	Truncated     bool
	Question      Question
	Answers       []ResourceRecord
	Authority     []ResourceRecord
	Additional    []ResourceRecord
}

// NewDNSResponse constructs a DNSResponse and validates its fields.
func NewDNSResponse(q Question, rcode RCode, answers, authority, additional []ResourceRecord) (DNSResponse, error) {
	resp := DNSResponse{
		ID:            q.ID,
		RCode:         rcode,
		Authoritative: true,
		Question:      q,
		Answers:       answers,
		Authority:     authority,
		Additional:    additional,
	}
	if err := resp.Validate(); err != nil {
		return DNSResponse{}, err
	}
	return resp, nil
}

// NewDNSErrorResponse creates an answerless DNSResponse carrying only a
// response code. Used for SERVFAIL, REFUSED, and YXDOMAIN conditions where
// no record data may be emitted.
func NewDNSErrorResponse(q Question, rcode RCode) DNSResponse {
	return DNSResponse{
		ID:            q.ID,
		RCode:         rcode,
		Authoritative: true,
		Question:      q,
	}
}

// Validate checks whether the DNSResponse fields are structurally valid.
func (resp DNSResponse) Validate() error {
	if !resp.RCode.IsValid() {
		return fmt.Errorf("invalid RCode: %d", resp.RCode)
	}
	for i, rr := range resp.Answers {
		if err := rr.Validate(); err != nil {
			return fmt.Errorf("invalid answer record at index %d: %w", i, err)
		}
	}
	for i, rr := range resp.Authority {
		if err := rr.Validate(); err != nil {
			return fmt.Errorf("invalid authority record at index %d: %w", i, err)
		}
	}
	for i, rr := range resp.Additional {
		if err := rr.Validate(); err != nil {
			return fmt.Errorf("invalid additional record at index %d: %w", i, err)
		}
	}
	return nil
}

// IsError returns true if the response indicates an error condition.
func (resp DNSResponse) IsError() bool {
	return resp.RCode != NOERROR
}

// HasAnswers returns true if the response contains answer records.
func (resp DNSResponse) HasAnswers() bool {
	return len(resp.Answers) > 0
}
