package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/haukened/az-dns/internal/dns/common/log"
	"github.com/haukened/az-dns/internal/dns/domain"
	"github.com/haukened/az-dns/internal/dns/gateways/wire"
	"github.com/haukened/az-dns/internal/dns/services/resolver"
)

// UDPTransport implements ServerTransport for standard DNS over UDP
// (RFC 1035). It handles UDP socket management, packet reception and
// transmission, and wire format conversion while delegating DNS logic to
// the service layer.
type UDPTransport struct {
	addr    string
	conn    *net.UDPConn
	codec   wire.DNSCodec
	logger  log.Logger
	timeout time.Duration

	// Synchronization for graceful shutdown
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
}

// NewUDPTransport creates a new UDP transport instance.
func NewUDPTransport(addr string, codec wire.DNSCodec, logger log.Logger, timeout time.Duration) *UDPTransport {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &UDPTransport{
		addr:    addr,
		codec:   codec,
		logger:  logger,
		timeout: timeout,
		stopCh:  make(chan struct{}),
	}
}

var _ ServerTransport = (*UDPTransport)(nil)

// Start begins listening for UDP DNS queries on the configured address.
// It binds to the UDP socket and starts the packet handling loop.
func (t *UDPTransport) Start(ctx context.Context, handler resolver.DNSResponder) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return fmt.Errorf("UDP transport already running")
	}

	udpAddr, err := net.ResolveUDPAddr("udp", t.addr)
	if err != nil {
		return fmt.Errorf("failed to resolve UDP address %s: %w", t.addr, err)
	}

	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return fmt.Errorf("failed to bind UDP socket on %s: %w", t.addr, err)
	}

	t.conn = conn
	t.running = true

	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   conn.LocalAddr().String(),
	}, "DNS transport started")

	go t.listenLoop(ctx, handler)

	return nil
}

// Stop gracefully shuts down the UDP transport.
func (t *UDPTransport) Stop() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return nil
	}

	close(t.stopCh)

	var closeErr error
	if t.conn != nil {
		closeErr = t.conn.Close()
		if closeErr != nil {
			t.logger.Warn(map[string]any{
				"error": closeErr.Error(),
			}, "Error closing UDP connection")
		}
	}

	t.running = false

	t.logger.Info(map[string]any{
		"transport": "udp",
		"address":   t.addr,
	}, "DNS transport stopped")

	return closeErr
}

// Address returns the network address the transport is bound to.
func (t *UDPTransport) Address() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.conn != nil {
		return t.conn.LocalAddr().String()
	}
	return t.addr
}

// listenLoop continuously reads UDP packets and dispatches each to its own
// goroutine.
func (t *UDPTransport) listenLoop(ctx context.Context, handler resolver.DNSResponder) {
	buffer := make([]byte, wire.MaxUDPMessageSize)

	for {
		select {
		case <-ctx.Done():
			t.logger.Debug(nil, "UDP transport stopping due to context cancellation")
			return
		case <-t.stopCh:
			t.logger.Debug(nil, "UDP transport stopping due to stop signal")
			return
		default:
			n, clientAddr, err := t.conn.ReadFromUDP(buffer)
			if err != nil {
				t.mu.RLock()
				running := t.running
				t.mu.RUnlock()

				if !running {
					return // Normal shutdown
				}

				t.logger.Warn(map[string]any{
					"error": err.Error(),
				}, "Failed to read UDP packet")
				continue
			}

			packet := make([]byte, n)
			copy(packet, buffer[:n])
			go t.handlePacket(ctx, packet, clientAddr, handler)
		}
	}
}

// handlePacket processes a single UDP DNS packet.
func (t *UDPTransport) handlePacket(ctx context.Context, data []byte, clientAddr *net.UDPAddr, handler resolver.DNSResponder) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	query, err := t.codec.DecodeQuery(data)
	var response domain.DNSResponse
	if err != nil {
		resp, ok := decodeErrorResponse(data, query, err)
		if !ok {
			t.logger.Warn(map[string]any{
				"client": clientAddr.String(),
				"error":  err.Error(),
				"size":   len(data),
			}, "Dropping unparseable DNS query")
			return
		}
		response = resp
		t.logger.Debug(map[string]any{
			"client": clientAddr.String(),
			"error":  err.Error(),
			"rcode":  response.RCode.String(),
		}, "Rejecting DNS query")
	} else {
		t.logger.Debug(map[string]any{
			"client":   clientAddr.String(),
			"query_id": query.ID,
			"name":     query.Name.String(),
			"type":     query.Type.String(),
		}, "Received DNS query")

		response = handler.HandleQuery(ctx, query, clientAddr)
	}

	responseData, err := t.codec.EncodeResponse(response, wire.MaxUDPMessageSize)
	if err != nil {
		t.logger.Error(map[string]any{
			"client":   clientAddr.String(),
			"query_id": response.ID,
			"error":    err.Error(),
		}, "Failed to encode DNS response")
		return
	}

	if _, err := t.conn.WriteToUDP(responseData, clientAddr); err != nil {
		t.logger.Error(map[string]any{
			"client":   clientAddr.String(),
			"query_id": response.ID,
			"error":    err.Error(),
		}, "Failed to send DNS response")
		return
	}

	t.logger.Debug(map[string]any{
		"client":   clientAddr.String(),
		"query_id": response.ID,
		"rcode":    response.RCode.String(),
		"answers":  len(response.Answers),
		"size":     len(responseData),
	}, "Sent DNS response")
}

// decodeErrorResponse builds an error response for a query that failed to
// decode: NOTIMP for a parseable query of an unsupported type or class,
// FORMERR for anything else the header ID can be recovered from.
func decodeErrorResponse(data []byte, query domain.Question, err error) (domain.DNSResponse, bool) {
	if errors.Is(err, wire.ErrUnsupportedQuery) {
		resp := domain.NewDNSErrorResponse(query, domain.NOTIMP)
		resp.Authoritative = false
		return resp, true
	}
	id, ok := wire.HeaderID(data)
	if !ok {
		return domain.DNSResponse{}, false
	}
	resp := domain.NewDNSErrorResponse(domain.Question{ID: id}, domain.FORMERR)
	resp.Authoritative = false
	return resp, true
}
