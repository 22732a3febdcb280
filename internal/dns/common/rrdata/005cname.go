package rrdata

// encodeCNAMEData encodes a CNAME record string into its binary representation.
func encodeCNAMEData(data string) ([]byte, error) {
	// data = "cname.example.com."
	return encodeDomainName(data)
}

// decodeCNAMEData decodes a CNAME record into its target name.
func decodeCNAMEData(data []byte) (string, error) {
	name, _, err := decodeDomainName(data)
	return name, err
}
