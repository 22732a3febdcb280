package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/az-dns/internal/dns/common/log"
	"github.com/haukened/az-dns/internal/dns/domain"
	"github.com/haukened/az-dns/internal/dns/gateways/transport"
	"github.com/haukened/az-dns/internal/dns/gateways/wire"
	"github.com/haukened/az-dns/internal/dns/repos/zone"
	"github.com/haukened/az-dns/internal/dns/services/resolver"
)

// longDNAMETarget is 254 octets encoded, so substituting any query name under
// the DNAME owner overflows the 255-octet limit.
var longDNAMETarget = strings.Repeat("a", 63) + "." + strings.Repeat("b", 63) + "." +
	strings.Repeat("c", 63) + "." + strings.Repeat("d", 60) + "."

func writeTestZone(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	zoneText := `$TTL 1h
$ORIGIN localdomain.
@    IN SOA ns.localdomain. hostmaster.localdomain. ( 1 1h 1h 1h 1h )
@    IN NS  ns
ns   IN A   127.0.0.1
www  IN A   127.0.0.2
d    IN DNAME ` + longDNAMETarget + `
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "localdomain.zone"), []byte(zoneText), 0o644))
	return dir
}

// startServer wires the full stack the way main does and serves it over UDP
// on an ephemeral port.
func startServer(t *testing.T) (string, wire.DNSCodec) {
	t.Helper()
	logger := log.NewNoopLogger()
	codec := wire.NewCodec(logger)

	store, err := zone.LoadZoneDirectory(writeTestZone(t), 300*time.Second)
	require.NoError(t, err)

	svc := resolver.NewResolver(resolver.ResolverOptions{
		Store:  store,
		Logger: logger,
	})

	tr := transport.NewUDPTransport("127.0.0.1:0", codec, logger, time.Second)
	require.NoError(t, tr.Start(context.Background(), svc))
	t.Cleanup(func() { _ = tr.Stop() })
	return tr.Address(), codec
}

func exchange(t *testing.T, addr string, codec wire.DNSCodec, q domain.Question) domain.DNSResponse {
	t.Helper()
	packet, err := codec.EncodeQuery(q)
	require.NoError(t, err)

	conn, err := net.Dial("udp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(packet)
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, wire.MaxUDPMessageSize)
	n, err := conn.Read(buf)
	require.NoError(t, err)

	resp, err := codec.DecodeResponse(buf[:n])
	require.NoError(t, err)
	return resp
}

func TestEndToEndQueries(t *testing.T) {
	addr, codec := startServer(t)

	tests := []struct {
		name       string
		qname      string
		rrtype     domain.RRType
		wantRCode  domain.RCode
		wantAnswer string
	}{
		{name: "A record", qname: "www.localdomain.", rrtype: domain.RRTypeA, wantRCode: domain.NOERROR, wantAnswer: "127.0.0.2"},
		{name: "NS at apex", qname: "localdomain.", rrtype: domain.RRTypeNS, wantRCode: domain.NOERROR, wantAnswer: "ns.localdomain"},
		{name: "nodata", qname: "www.localdomain.", rrtype: domain.RRTypeTXT, wantRCode: domain.NOERROR},
		{name: "nxdomain", qname: "missing.localdomain.", rrtype: domain.RRTypeA, wantRCode: domain.NXDOMAIN},
		{name: "refused outside zones", qname: "www.example.net.", rrtype: domain.RRTypeA, wantRCode: domain.REFUSED},
		{name: "yxdomain on DNAME overflow", qname: "sub.d.localdomain.", rrtype: domain.RRTypeA, wantRCode: domain.YXDOMAIN},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := domain.Question{
				ID:    uint16(100 + i),
				Name:  domain.MustParseName(tt.qname),
				Type:  tt.rrtype,
				Class: domain.RRClassIN,
			}
			resp := exchange(t, addr, codec, q)
			assert.Equal(t, q.ID, resp.ID)
			assert.Equal(t, tt.wantRCode, resp.RCode)
			if tt.wantAnswer != "" {
				require.NotEmpty(t, resp.Answers)
				assert.Equal(t, tt.wantAnswer, resp.Answers[0].Text)
			}
			if tt.wantRCode == domain.YXDOMAIN {
				assert.Empty(t, resp.Answers, "overflow responses carry no records")
				assert.Empty(t, resp.Authority)
			}
		})
	}
}
