package rrdata

import (
	"fmt"
	"strings"
)

// encodeTXTData encodes a TXT record string into its binary representation.
// Multiple character-strings are separated by semicolons (RFC 1035 §3.3.14).
func encodeTXTData(data string) ([]byte, error) {
	segments := strings.Split(data, ";")
	var encoded []byte
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		if len(segment) > 255 {
			return nil, fmt.Errorf("TXT segment too long: %d bytes", len(segment))
		}
		encoded = append(encoded, byte(len(segment)))
		encoded = append(encoded, []byte(segment)...)
	}
	if len(encoded) == 0 {
		return nil, fmt.Errorf("TXT record must contain at least one segment")
	}
	return encoded, nil
}

// decodeTXTData decodes a TXT record into semicolon-separated segments.
func decodeTXTData(data []byte) (string, error) {
	var segments []string
	for i := 0; i < len(data); {
		segLen := int(data[i])
		i++
		if i+segLen > len(data) {
			return "", fmt.Errorf("truncated TXT segment")
		}
		segments = append(segments, string(data[i:i+segLen]))
		i += segLen
	}
	if len(segments) == 0 {
		return "", fmt.Errorf("empty TXT record")
	}
	return strings.Join(segments, "; "), nil
}
