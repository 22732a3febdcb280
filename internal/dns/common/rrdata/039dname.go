package rrdata

// encodeDNAMEData encodes a DNAME record string into its binary representation.
// The RDATA is a single uncompressed domain name (RFC 6672 §2.1); the target
// itself must be a valid name, even though names synthesized from it at
// resolution time may exceed protocol limits.
func encodeDNAMEData(data string) ([]byte, error) {
	// data = "target.example.com."
	return encodeDomainName(data)
}

// decodeDNAMEData decodes a DNAME record into its target name.
func decodeDNAMEData(data []byte) (string, error) {
	name, _, err := decodeDomainName(data)
	return name, err
}
