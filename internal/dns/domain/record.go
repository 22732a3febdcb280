package domain

import (
	"fmt"
)

// ResourceRecord represents an authoritative DNS resource record served from
// a zone. Records are immutable after load; the TTL is preserved exactly as
// declared for wire responses.
type ResourceRecord struct {
	Name  Name
	Type  RRType
	Class RRClass
	TTL   uint32
	Data  []byte // wire-encoded RDATA
	Text  string // presentation form of the RDATA
}

// NewResourceRecord constructs a ResourceRecord and validates its fields.
// The owner name is already absolute and canonical by construction of Name.
func NewResourceRecord(name Name, rrtype RRType, class RRClass, ttl uint32, data []byte, text string) (ResourceRecord, error) {
	rr := ResourceRecord{
		Name:  name,
		Type:  rrtype,
		Class: class,
		TTL:   ttl,
		Data:  data,
		Text:  text,
	}
	if err := rr.Validate(); err != nil {
		return ResourceRecord{}, err
	}
	return rr, nil
}

// Validate checks whether the ResourceRecord fields are valid.
func (rr ResourceRecord) Validate() error {
	if !rr.Type.IsValid() {
		return fmt.Errorf("invalid RRType: %d", rr.Type)
	}
	if rr.Type == RRTypeANY {
		return fmt.Errorf("ANY is a query type, not a record type")
	}
	if !rr.Class.IsValid() {
		return fmt.Errorf("invalid RRClass: %d", rr.Class)
	}
	if rr.Text == "" && len(rr.Data) == 0 {
		return fmt.Errorf("either Text or Data must be set")
	}
	return nil
}

// Key returns the index key string derived from the record's owner name,
// type, and class.
func (rr ResourceRecord) Key() string {
	return recordKey(rr.Name, rr.Type, rr.Class)
}

// recordKey returns a consistent index key derived from a name, type, and class.
// Uses pipe (|) as separator to avoid conflicts with colons in IPv6 addresses.
func recordKey(name Name, t RRType, c RRClass) string {
	return fmt.Sprintf("%s|%d|%d", name.String(), t, c)
}
