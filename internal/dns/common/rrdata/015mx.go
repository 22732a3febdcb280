package rrdata

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
)

// encodeMXData encodes an MX record string into its binary representation.
func encodeMXData(data string) ([]byte, error) {
	// data = "10 mail.example.com."
	parts := strings.Fields(data)
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid MX record format (expected: preference exchange): %s", data)
	}
	pref, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid MX preference: %s", parts[0])
	}
	encoded := make([]byte, 2)
	binary.BigEndian.PutUint16(encoded, uint16(pref))
	exchange, err := encodeDomainName(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid MX exchange domain: %s", parts[1])
	}
	return append(encoded, exchange...), nil
}

// decodeMXData decodes an MX record into "preference exchange" form.
func decodeMXData(data []byte) (string, error) {
	if len(data) < 3 {
		return "", fmt.Errorf("invalid MX record length: %d", len(data))
	}
	pref := binary.BigEndian.Uint16(data[0:2])
	exchange, _, err := decodeDomainName(data[2:])
	if err != nil {
		return "", fmt.Errorf("invalid MX exchange: %v", err)
	}
	return fmt.Sprintf("%d %s", pref, exchange), nil
}
