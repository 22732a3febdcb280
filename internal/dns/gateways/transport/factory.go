package transport

import (
	"fmt"
	"time"

	"github.com/haukened/az-dns/internal/dns/common/log"
	"github.com/haukened/az-dns/internal/dns/gateways/wire"
)

// NewTransport creates a transport instance for the given type. The timeout
// bounds how long a single query may take end to end; zero disables the
// per-query deadline.
func NewTransport(transportType TransportType, addr string, codec wire.DNSCodec, logger log.Logger, timeout time.Duration) (ServerTransport, error) {
	switch transportType {
	case TransportUDP:
		return NewUDPTransport(addr, codec, logger, timeout), nil

	case TransportTCP:
		return NewTCPTransport(addr, codec, logger, timeout), nil

	default:
		return nil, fmt.Errorf("unsupported transport type: %s", transportType)
	}
}
