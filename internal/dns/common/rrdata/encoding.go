package rrdata

import (
	"fmt"

	"github.com/haukened/az-dns/internal/dns/domain"
)

// Encode encodes a record value based on its type, to its binary representation.
func Encode(rrType domain.RRType, data string) ([]byte, error) {
	switch rrType {
	case domain.RRTypeA: // 1
		return encodeAData(data)
	case domain.RRTypeNS: // 2
		return encodeNSData(data)
	case domain.RRTypeCNAME: // 5
		return encodeCNAMEData(data)
	case domain.RRTypeSOA: // 6
		return encodeSOAData(data)
	case domain.RRTypePTR: // 12
		return encodePTRData(data)
	case domain.RRTypeMX: // 15
		return encodeMXData(data)
	case domain.RRTypeTXT: // 16
		return encodeTXTData(data)
	case domain.RRTypeAAAA: // 28
		return encodeAAAAData(data)
	case domain.RRTypeDNAME: // 39
		return encodeDNAMEData(data)
	default:
		return nil, fmt.Errorf("%s records cannot appear in zone data", rrType)
	}
}
