package rrdata

// encodeNSData encodes an NS record string into its binary representation.
func encodeNSData(data string) ([]byte, error) {
	// data = "ns1.example.com."
	return encodeDomainName(data)
}

// decodeNSData decodes an NS record into its target name.
func decodeNSData(data []byte) (string, error) {
	name, _, err := decodeDomainName(data)
	return name, err
}
