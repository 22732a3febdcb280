// Package wire encodes and decodes DNS messages in the RFC 1035 wire format:
// header, question, and record sections, with name compression on output and
// transport-appropriate size ceilings.
package wire

import (
	"errors"

	"github.com/haukened/az-dns/internal/dns/domain"
)

// Transport size ceilings (RFC 1035 §2.3.4, §4.2.2). A response that cannot
// fit the ceiling is truncated with TC set, telling the client to retry over
// a reliable transport. This is distinct from YXDOMAIN, where the answer is
// structurally invalid and retrying will not help.
const (
	MaxUDPMessageSize = 512
	MaxTCPMessageSize = 65535
)

// Decode errors the transport maps to response codes.
var (
	// ErrMalformedMessage indicates a query that could not be parsed (FORMERR).
	ErrMalformedMessage = errors.New("malformed DNS message")
	// ErrUnsupportedQuery indicates a parseable query for an unsupported
	// type or class (NOTIMP).
	ErrUnsupportedQuery = errors.New("unsupported query type or class")
)

// DNSCodec converts between wire format and domain objects.
type DNSCodec interface {
	// DecodeQuery parses a query message into a Question.
	DecodeQuery(data []byte) (domain.Question, error)

	// EncodeResponse serializes a response, compressing names and enforcing
	// maxSize. Responses that exceed the ceiling are truncated at a record
	// boundary with the TC bit set.
	EncodeResponse(resp domain.DNSResponse, maxSize int) ([]byte, error)

	// EncodeQuery serializes a Question into a query message.
	EncodeQuery(q domain.Question) ([]byte, error)

	// DecodeResponse parses a response message, following compression
	// pointers.
	DecodeResponse(data []byte) (domain.DNSResponse, error)
}

// HeaderID extracts the message ID from a raw packet so error responses can
// echo it even when the rest of the message is unparseable.
func HeaderID(data []byte) (uint16, bool) {
	if len(data) < 2 {
		return 0, false
	}
	return uint16(data[0])<<8 | uint16(data[1]), true
}
