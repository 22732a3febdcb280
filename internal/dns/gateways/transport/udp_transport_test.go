package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/az-dns/internal/dns/common/log"
	"github.com/haukened/az-dns/internal/dns/common/rrdata"
	"github.com/haukened/az-dns/internal/dns/domain"
	"github.com/haukened/az-dns/internal/dns/gateways/wire"
	"github.com/haukened/az-dns/internal/dns/services/resolver"
)

// echoResponder returns a fixed A record for every question.
type echoResponder struct{}

func (echoResponder) HandleQuery(_ context.Context, q domain.Question, _ net.Addr) domain.DNSResponse {
	data, _ := rrdata.Encode(domain.RRTypeA, "192.0.2.1")
	rr, _ := domain.NewResourceRecord(q.Name, domain.RRTypeA, q.Class, 300, data, "192.0.2.1")
	resp, _ := domain.NewDNSResponse(q, domain.NOERROR, []domain.ResourceRecord{rr}, nil, nil)
	return resp
}

var _ resolver.DNSResponder = echoResponder{}

func startUDP(t *testing.T) (*UDPTransport, wire.DNSCodec) {
	t.Helper()
	logger := log.NewNoopLogger()
	codec := wire.NewCodec(logger)
	tr := NewUDPTransport("127.0.0.1:0", codec, logger, time.Second)
	require.NoError(t, tr.Start(context.Background(), echoResponder{}))
	t.Cleanup(func() { _ = tr.Stop() })
	return tr, codec
}

func udpExchange(t *testing.T, addr string, packet []byte) []byte {
	t.Helper()
	conn, err := net.Dial("udp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(packet)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, wire.MaxUDPMessageSize)
	n, err := conn.Read(buf)
	require.NoError(t, err)
	return buf[:n]
}

func TestUDPTransportServesQueries(t *testing.T) {
	tr, codec := startUDP(t)

	q := domain.Question{
		ID:    42,
		Name:  domain.MustParseName("www.example.com."),
		Type:  domain.RRTypeA,
		Class: domain.RRClassIN,
	}
	packet, err := codec.EncodeQuery(q)
	require.NoError(t, err)

	raw := udpExchange(t, tr.Address(), packet)
	resp, err := codec.DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint16(42), resp.ID)
	assert.Equal(t, domain.NOERROR, resp.RCode)
	require.Len(t, resp.Answers, 1)
	assert.Equal(t, "192.0.2.1", resp.Answers[0].Text)
}

func TestUDPTransportRejectsMalformedQuery(t *testing.T) {
	tr, codec := startUDP(t)

	// a valid header with QDCOUNT=1 but a name running past the packet
	packet := make([]byte, 13)
	packet[0] = 0xBE
	packet[1] = 0xEF
	packet[5] = 1
	packet[12] = 9

	raw := udpExchange(t, tr.Address(), packet)
	resp, err := codec.DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint16(0xBEEF), resp.ID, "FORMERR echoes the query ID")
	assert.Equal(t, domain.FORMERR, resp.RCode)
	assert.Empty(t, resp.Answers)
}

func TestUDPTransportRejectsUnsupportedType(t *testing.T) {
	tr, codec := startUDP(t)

	q := domain.Question{
		ID:    7,
		Name:  domain.MustParseName("www.example.com."),
		Type:  domain.RRTypeA,
		Class: domain.RRClassIN,
	}
	packet, err := codec.EncodeQuery(q)
	require.NoError(t, err)
	packet[len(packet)-3] = 99 // unassigned QTYPE

	raw := udpExchange(t, tr.Address(), packet)
	resp, err := codec.DecodeResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, uint16(7), resp.ID)
	assert.Equal(t, domain.NOTIMP, resp.RCode)
}

func TestUDPTransportLifecycle(t *testing.T) {
	logger := log.NewNoopLogger()
	codec := wire.NewCodec(logger)
	tr := NewUDPTransport("127.0.0.1:0", codec, logger, time.Second)

	require.NoError(t, tr.Start(context.Background(), echoResponder{}))
	assert.Error(t, tr.Start(context.Background(), echoResponder{}), "double start must fail")

	require.NoError(t, tr.Stop())
	assert.NoError(t, tr.Stop(), "stop is idempotent")
}
