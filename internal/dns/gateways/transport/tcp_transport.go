package transport

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/haukened/az-dns/internal/dns/common/log"
	"github.com/haukened/az-dns/internal/dns/domain"
	"github.com/haukened/az-dns/internal/dns/gateways/wire"
	"github.com/haukened/az-dns/internal/dns/services/resolver"
)

// tcpIdleTimeout bounds how long a connection may sit between messages
// before the server closes it.
const tcpIdleTimeout = 10 * time.Second

// TCPTransport implements ServerTransport for DNS over TCP (RFC 1035
// §4.2.2). Each message is prefixed with a two-octet length field, and a
// single connection may carry multiple queries in sequence.
type TCPTransport struct {
	addr     string
	listener net.Listener
	codec    wire.DNSCodec
	logger   log.Logger
	timeout  time.Duration

	// Synchronization for graceful shutdown
	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewTCPTransport creates a new TCP transport instance.
func NewTCPTransport(addr string, codec wire.DNSCodec, logger log.Logger, timeout time.Duration) *TCPTransport {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &TCPTransport{
		addr:    addr,
		codec:   codec,
		logger:  logger,
		timeout: timeout,
		stopCh:  make(chan struct{}),
	}
}

var _ ServerTransport = (*TCPTransport)(nil)

// Start begins listening for TCP DNS connections on the configured address.
func (t *TCPTransport) Start(ctx context.Context, handler resolver.DNSResponder) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return fmt.Errorf("TCP transport already running")
	}

	listener, err := net.Listen("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on TCP %s: %w", t.addr, err)
	}

	t.listener = listener
	t.running = true

	t.logger.Info(map[string]any{
		"transport": "tcp",
		"address":   listener.Addr().String(),
	}, "DNS transport started")

	go t.acceptLoop(ctx, handler)

	return nil
}

// Stop gracefully shuts down the TCP transport and waits for in-flight
// connections to finish.
func (t *TCPTransport) Stop() error {
	t.mu.Lock()

	if !t.running {
		t.mu.Unlock()
		return nil
	}

	close(t.stopCh)

	var closeErr error
	if t.listener != nil {
		closeErr = t.listener.Close()
	}
	t.running = false
	t.mu.Unlock()

	t.wg.Wait()

	t.logger.Info(map[string]any{
		"transport": "tcp",
		"address":   t.addr,
	}, "DNS transport stopped")

	return closeErr
}

// Address returns the network address the transport is bound to.
func (t *TCPTransport) Address() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.listener != nil {
		return t.listener.Addr().String()
	}
	return t.addr
}

// acceptLoop accepts connections and dispatches each to its own goroutine.
func (t *TCPTransport) acceptLoop(ctx context.Context, handler resolver.DNSResponder) {
	for {
		conn, err := t.listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return
			case <-t.stopCh:
				return
			default:
			}
			t.logger.Warn(map[string]any{
				"error": err.Error(),
			}, "Failed to accept TCP connection")
			continue
		}

		t.wg.Add(1)
		go func() {
			defer t.wg.Done()
			t.handleConn(ctx, conn, handler)
		}()
	}
}

// handleConn serves length-framed DNS messages from a single connection
// until the client closes it or a read deadline expires.
func (t *TCPTransport) handleConn(ctx context.Context, conn net.Conn, handler resolver.DNSResponder) {
	defer conn.Close()

	clientAddr := conn.RemoteAddr()
	lenBuf := make([]byte, 2)

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stopCh:
			return
		default:
		}

		if err := conn.SetReadDeadline(time.Now().Add(tcpIdleTimeout)); err != nil {
			return
		}
		if _, err := io.ReadFull(conn, lenBuf); err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
				if ne, ok := err.(net.Error); !ok || !ne.Timeout() {
					t.logger.Debug(map[string]any{
						"client": clientAddr.String(),
						"error":  err.Error(),
					}, "Failed to read TCP message length")
				}
			}
			return
		}

		msgLen := int(binary.BigEndian.Uint16(lenBuf))
		if msgLen == 0 {
			return
		}
		data := make([]byte, msgLen)
		if _, err := io.ReadFull(conn, data); err != nil {
			t.logger.Debug(map[string]any{
				"client": clientAddr.String(),
				"error":  err.Error(),
			}, "Failed to read TCP message body")
			return
		}

		if !t.serveMessage(ctx, conn, clientAddr, data, handler) {
			return
		}
	}
}

// serveMessage handles one framed query and writes the framed response.
// It reports whether the connection should stay open.
func (t *TCPTransport) serveMessage(ctx context.Context, conn net.Conn, clientAddr net.Addr, data []byte, handler resolver.DNSResponder) bool {
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
			return false
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

	responseData, err := t.codec.EncodeResponse(response, wire.MaxTCPMessageSize)
	if err != nil {
		t.logger.Error(map[string]any{
			"client":   clientAddr.String(),
			"query_id": response.ID,
			"error":    err.Error(),
		}, "Failed to encode DNS response")
		return false
	}

	framed := make([]byte, 2+len(responseData))
	binary.BigEndian.PutUint16(framed[:2], uint16(len(responseData)))
	copy(framed[2:], responseData)

	if _, err := conn.Write(framed); err != nil {
		t.logger.Error(map[string]any{
			"client":   clientAddr.String(),
			"query_id": response.ID,
			"error":    err.Error(),
		}, "Failed to send DNS response")
		return false
	}

	t.logger.Debug(map[string]any{
		"client":   clientAddr.String(),
		"query_id": response.ID,
		"rcode":    response.RCode.String(),
		"answers":  len(response.Answers),
		"size":     len(responseData),
	}, "Sent DNS response")

	return true
}
