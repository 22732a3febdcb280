// Package rrdata converts resource record data between its zone-file
// presentation form and its RFC 1035 wire form, one codec per record type.
// Wire forms produced here are uncompressed: compression pointers are a
// message-level concern, and RFC 3597 §4 forbids them in the RDATA of types
// defined after RFC 1035 (DNAME explicitly so, RFC 6672 §2.5).
package rrdata

import (
	"fmt"
	"net"
	"strings"
)

// encodeDomainName encodes a domain name into wire format
// (length-prefixed labels ending in a zero octet).
// Used by every record type whose RDATA carries a name.
func encodeDomainName(name string) ([]byte, error) {
	name = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(name)), ".")
	var encoded []byte
	if name != "" {
		for _, label := range strings.Split(name, ".") {
			if label == "" {
				return nil, fmt.Errorf("empty label in domain name: %q", name)
			}
			if len(label) > 63 {
				return nil, fmt.Errorf("label too long: %s", label)
			}
			encoded = append(encoded, byte(len(label)))
			encoded = append(encoded, label...)
		}
	}
	encoded = append(encoded, 0)
	if len(encoded) > 255 {
		return nil, fmt.Errorf("domain name too long: %q", name)
	}
	return encoded, nil
}

// decodeDomainName decodes an uncompressed wire-format domain name.
func decodeDomainName(b []byte) (string, int, error) {
	var labels []string
	i := 0
	for i < len(b) {
		labelLen := int(b[i])
		if labelLen == 0 {
			i++
			return strings.Join(labels, "."), i, nil
		}
		if labelLen > 63 {
			return "", 0, fmt.Errorf("invalid label length %d", labelLen)
		}
		i++
		if i+labelLen > len(b) {
			return "", 0, fmt.Errorf("truncated domain name")
		}
		labels = append(labels, string(b[i:i+labelLen]))
		i += labelLen
	}
	return "", 0, fmt.Errorf("unterminated domain name")
}

// isIPv4 checks whether the provided net.IP address is an IPv4 address.
func isIPv4(ip net.IP) bool {
	return ip != nil && ip.To4() != nil
}

// isIPv6 checks whether the provided net.IP is a valid IPv6 address.
func isIPv6(ip net.IP) bool {
	return ip != nil && ip.To16() != nil && ip.To4() == nil
}
