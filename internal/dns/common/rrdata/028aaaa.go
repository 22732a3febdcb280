package rrdata

import (
	"fmt"
	"net"
)

// encodeAAAAData encodes an AAAA record string into its binary representation.
func encodeAAAAData(data string) ([]byte, error) {
	// data = "2001:db8::1"
	ip := net.ParseIP(data)
	if ip == nil || !isIPv6(ip) {
		return nil, fmt.Errorf("invalid AAAA record IP: %s", data)
	}
	return ip.To16(), nil
}

// decodeAAAAData decodes a 16-octet AAAA record into its text form.
func decodeAAAAData(data []byte) (string, error) {
	if len(data) != net.IPv6len {
		return "", fmt.Errorf("invalid AAAA record length: %d", len(data))
	}
	return net.IP(data).String(), nil
}
