package rrdata

// encodePTRData encodes a PTR record string into its binary representation.
func encodePTRData(data string) ([]byte, error) {
	// data = "host.example.com."
	return encodeDomainName(data)
}

// decodePTRData decodes a PTR record into its target name.
func decodePTRData(data []byte) (string, error) {
	name, _, err := decodeDomainName(data)
	return name, err
}
