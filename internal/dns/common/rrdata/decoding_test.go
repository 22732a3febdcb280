package rrdata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/az-dns/internal/dns/domain"
)

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		rrtype domain.RRType
		text   string
	}{
		{name: "A", rrtype: domain.RRTypeA, text: "192.0.2.1"},
		{name: "AAAA", rrtype: domain.RRTypeAAAA, text: "2001:db8::1"},
		{name: "NS", rrtype: domain.RRTypeNS, text: "ns1.example.com"},
		{name: "CNAME", rrtype: domain.RRTypeCNAME, text: "target.example.com"},
		{name: "PTR", rrtype: domain.RRTypePTR, text: "host.example.com"},
		{name: "DNAME", rrtype: domain.RRTypeDNAME, text: "dest.example.net"},
		{name: "MX", rrtype: domain.RRTypeMX, text: "10 mail.example.com"},
		{name: "TXT multiple segments", rrtype: domain.RRTypeTXT, text: "one; two"},
		{name: "SOA", rrtype: domain.RRTypeSOA, text: "ns1.example.com hostmaster.example.com 1 3600 600 604800 300"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Encode(tt.rrtype, tt.text)
			require.NoError(t, err)
			got, err := Decode(tt.rrtype, data)
			require.NoError(t, err)
			assert.Equal(t, tt.text, got)
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name   string
		rrtype domain.RRType
		data   []byte
	}{
		{name: "A wrong length", rrtype: domain.RRTypeA, data: []byte{192, 0, 2}},
		{name: "AAAA wrong length", rrtype: domain.RRTypeAAAA, data: []byte{0, 1, 2, 3}},
		{name: "NS unterminated name", rrtype: domain.RRTypeNS, data: []byte{3, 'f', 'o', 'o'}},
		{name: "NS truncated label", rrtype: domain.RRTypeNS, data: []byte{8, 'f', 'o'}},
		{name: "MX too short", rrtype: domain.RRTypeMX, data: []byte{0}},
		{name: "TXT truncated segment", rrtype: domain.RRTypeTXT, data: []byte{5, 'a', 'b'}},
		{name: "SOA short timer block", rrtype: domain.RRTypeSOA, data: []byte{0, 0, 1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.rrtype, tt.data)
			assert.Error(t, err)
		})
	}
}

func TestDecodeUnsupportedType(t *testing.T) {
	_, err := Decode(domain.RRType(99), []byte{1, 2, 3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not supported")
}

func TestDecodeDomainNameRejectsOversizedLabel(t *testing.T) {
	// length octet 64 is reserved for compression pointers at the message
	// level and never valid inside RDATA
	_, _, err := decodeDomainName([]byte{64, 'a'})
	assert.Error(t, err)
}
