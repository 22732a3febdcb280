package rrdata

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// encodeSOAData encodes an SOA record string into its binary representation.
// The presentation form carries seven fields:
// "mname rname serial refresh retry expire minimum", timers in seconds.
func encodeSOAData(data string) ([]byte, error) {
	parts := strings.Fields(data)
	if len(parts) != 7 {
		return nil, fmt.Errorf("invalid SOA record format (expected 7 fields): %s", data)
	}

	// mname is the primary name server for the zone
	mname, err := encodeDomainName(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid SOA mname: %v", err)
	}

	// rname is the zone administrator mailbox in domain-name form
	// ("hostmaster.example.com" means hostmaster@example.com)
	rname, err := encodeDomainName(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid SOA rname: %v", err)
	}

	// serial, refresh, retry, expire, minimum
	u32 := make([]byte, 20)
	for i := 0; i < 5; i++ {
		val, err := strconv.ParseUint(parts[i+2], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid SOA field %d: %v", i+2, err)
		}
		binary.BigEndian.PutUint32(u32[i*4:], uint32(val))
	}

	var encoded []byte
	encoded = append(encoded, mname...)
	encoded = append(encoded, rname...)
	encoded = append(encoded, u32...)
	return encoded, nil
}

// decodeSOAData decodes an SOA record into its seven-field presentation form.
func decodeSOAData(data []byte) (string, error) {
	mname, n, err := decodeDomainName(data)
	if err != nil {
		return "", fmt.Errorf("invalid SOA mname: %v", err)
	}
	rname, m, err := decodeDomainName(data[n:])
	if err != nil {
		return "", fmt.Errorf("invalid SOA rname: %v", err)
	}
	rest := data[n+m:]
	if len(rest) != 20 {
		return "", fmt.Errorf("invalid SOA timer block length: %d", len(rest))
	}
	fields := make([]string, 0, 7)
	fields = append(fields, mname, rname)
	for i := 0; i < 5; i++ {
		fields = append(fields, strconv.FormatUint(uint64(binary.BigEndian.Uint32(rest[i*4:])), 10))
	}
	return strings.Join(fields, " "), nil
}

// SOATimers holds the five SOA timer fields in host order.
type SOATimers struct {
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

// ParseSOATimers extracts the timer tuple from wire-format SOA RDATA.
func ParseSOATimers(data []byte) (SOATimers, error) {
	_, n, err := decodeDomainName(data)
	if err != nil {
		return SOATimers{}, fmt.Errorf("invalid SOA mname: %v", err)
	}
	_, m, err := decodeDomainName(data[n:])
	if err != nil {
		return SOATimers{}, fmt.Errorf("invalid SOA rname: %v", err)
	}
	rest := data[n+m:]
	if len(rest) != 20 {
		return SOATimers{}, fmt.Errorf("invalid SOA timer block length: %d", len(rest))
	}
	return SOATimers{
		Serial:  binary.BigEndian.Uint32(rest[0:]),
		Refresh: binary.BigEndian.Uint32(rest[4:]),
		Retry:   binary.BigEndian.Uint32(rest[8:]),
		Expire:  binary.BigEndian.Uint32(rest[12:]),
		Minimum: binary.BigEndian.Uint32(rest[16:]),
	}, nil
}
