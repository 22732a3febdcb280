// Package transport provides network transport implementations for the DNS
// server. It handles the conversion between wire format and domain objects,
// allowing the service layer to work purely with domain types while
// supporting multiple transport protocols.
package transport

import (
	"context"

	"github.com/haukened/az-dns/internal/dns/services/resolver"
)

// ServerTransport defines the interface for DNS server transport
// implementations. Different transport types (UDP, TCP) implement this
// interface while providing the same request handling contract to the
// service layer.
type ServerTransport interface {
	// Start begins listening for requests and handling them via the provided
	// handler. The transport handles all network protocol concerns and wire
	// format conversion.
	Start(ctx context.Context, handler resolver.DNSResponder) error

	// Stop gracefully shuts down the transport, closing connections and
	// cleaning up resources.
	Stop() error

	// Address returns the network address the transport is bound to.
	Address() string
}

// TransportType represents the transport protocols the server can listen on.
type TransportType string

const (
	// TransportUDP is standard DNS over UDP (RFC 1035 §4.2.1).
	TransportUDP TransportType = "udp"

	// TransportTCP is DNS over TCP with two-octet length framing
	// (RFC 1035 §4.2.2).
	TransportTCP TransportType = "tcp"
)

// SupportedTransports returns the transport types the server can serve.
func SupportedTransports() []TransportType {
	return []TransportType{TransportUDP, TransportTCP}
}

// IsTransportSupported checks if a given transport type is supported.
func IsTransportSupported(transportType TransportType) bool {
	for _, t := range SupportedTransports() {
		if t == transportType {
			return true
		}
	}
	return false
}
