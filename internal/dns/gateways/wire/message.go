package wire

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/haukened/az-dns/internal/dns/common/log"
	"github.com/haukened/az-dns/internal/dns/common/rrdata"
	"github.com/haukened/az-dns/internal/dns/domain"
)

// Header flag bits (RFC 1035 §4.1.1).
const (
	flagQR uint16 = 1 << 15
	flagAA uint16 = 1 << 10
	flagTC uint16 = 1 << 9
	flagRD uint16 = 1 << 8

	rcodeMask uint16 = 0x000F

	headerLen = 12

	// compressionPointerLimit is the highest offset a 14-bit compression
	// pointer can reference.
	compressionPointerLimit = 0x4000

	// maxPointerJumps bounds pointer chains while decoding so a crafted
	// message cannot loop forever.
	maxPointerJumps = 16
)

// messageCodec implements DNSCodec for standard DNS messages.
type messageCodec struct {
	logger log.Logger
}

// NewCodec creates a message codec using the provided logger.
func NewCodec(logger log.Logger) *messageCodec {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	return &messageCodec{logger: logger}
}

var _ DNSCodec = (*messageCodec)(nil)

// msgBuilder accumulates an outgoing message and the compression offsets of
// every name suffix written so far.
type msgBuilder struct {
	buf     []byte
	offsets map[string]int
}

func newMsgBuilder() *msgBuilder {
	return &msgBuilder{
		buf:     make([]byte, headerLen),
		offsets: make(map[string]int),
	}
}

func (b *msgBuilder) writeUint16(v uint16) {
	b.buf = binary.BigEndian.AppendUint16(b.buf, v)
}

func (b *msgBuilder) writeUint32(v uint32) {
	b.buf = binary.BigEndian.AppendUint32(b.buf, v)
}

// writeName emits a domain name, replacing any suffix already present in the
// message with a back-reference pointer. New suffix positions are recorded
// for later references while they remain addressable by a 14-bit pointer.
func (b *msgBuilder) writeName(n domain.Name) {
	labels := n.Labels()
	for i := range labels {
		suffix := strings.Join(labels[i:], ".") + "."
		if off, ok := b.offsets[suffix]; ok {
			b.writeUint16(0xC000 | uint16(off))
			return
		}
		if len(b.buf) < compressionPointerLimit {
			b.offsets[suffix] = len(b.buf)
		}
		b.buf = append(b.buf, byte(len(labels[i])))
		b.buf = append(b.buf, labels[i]...)
	}
	b.buf = append(b.buf, 0)
}

// writeRecord emits one resource record. RDATA is written uncompressed;
// RFC 3597 §4 forbids compression in the RDATA of post-1035 types.
func (b *msgBuilder) writeRecord(rr domain.ResourceRecord) error {
	data := rr.Data
	if len(data) == 0 && rr.Text != "" {
		encoded, err := rrdata.Encode(rr.Type, rr.Text)
		if err != nil {
			return fmt.Errorf("cannot encode %s RDATA: %w", rr.Type, err)
		}
		data = encoded
	}
	if len(data) > 65535 {
		return fmt.Errorf("resource record data too large: %d bytes", len(data))
	}
	b.writeName(rr.Name)
	b.writeUint16(uint16(rr.Type))
	b.writeUint16(uint16(rr.Class))
	b.writeUint32(rr.TTL)
	b.writeUint16(uint16(len(data)))
	b.buf = append(b.buf, data...)
	return nil
}

// EncodeResponse serializes a response message. Names are compressed, and
// records that would push the message past maxSize are dropped at a record
// boundary with the TC bit set.
func (c *messageCodec) EncodeResponse(resp domain.DNSResponse, maxSize int) ([]byte, error) {
	if maxSize <= 0 || maxSize > MaxTCPMessageSize {
		maxSize = MaxTCPMessageSize
	}

	b := newMsgBuilder()

	// Question section, echoed from the query.
	b.writeName(resp.Question.Name)
	b.writeUint16(uint16(resp.Question.Type))
	b.writeUint16(uint16(resp.Question.Class))
	if len(b.buf) > maxSize {
		return nil, fmt.Errorf("question section exceeds message size limit %d", maxSize)
	}

	truncated := resp.Truncated
	sections := [3][]domain.ResourceRecord{resp.Answers, resp.Authority, resp.Additional}
	var counts [3]uint16

sections:
	for si, rrs := range sections {
		for _, rr := range rrs {
			mark := len(b.buf)
			if err := b.writeRecord(rr); err != nil {
				return nil, err
			}
			if len(b.buf) > maxSize {
				b.buf = b.buf[:mark]
				truncated = true
				break sections
			}
			counts[si]++
		}
	}

	flags := flagQR | uint16(resp.RCode)&rcodeMask
	if resp.Authoritative {
		flags |= flagAA
	}
	if truncated {
		flags |= flagTC
	}

	binary.BigEndian.PutUint16(b.buf[0:2], resp.ID)
	binary.BigEndian.PutUint16(b.buf[2:4], flags)
	binary.BigEndian.PutUint16(b.buf[4:6], 1) // QDCOUNT
	binary.BigEndian.PutUint16(b.buf[6:8], counts[0])
	binary.BigEndian.PutUint16(b.buf[8:10], counts[1])
	binary.BigEndian.PutUint16(b.buf[10:12], counts[2])

	c.logger.Debug(map[string]any{
		"id":        resp.ID,
		"rcode":     resp.RCode.String(),
		"answers":   counts[0],
		"truncated": truncated,
		"size":      len(b.buf),
	}, "Encoded DNS response")

	return b.buf, nil
}

// EncodeQuery serializes a Question into a query message.
func (c *messageCodec) EncodeQuery(q domain.Question) ([]byte, error) {
	b := newMsgBuilder()
	b.writeName(q.Name)
	b.writeUint16(uint16(q.Type))
	b.writeUint16(uint16(q.Class))

	binary.BigEndian.PutUint16(b.buf[0:2], q.ID)
	binary.BigEndian.PutUint16(b.buf[2:4], flagRD)
	binary.BigEndian.PutUint16(b.buf[4:6], 1)
	return b.buf, nil
}

// DecodeQuery parses a DNS query message into a Question.
func (c *messageCodec) DecodeQuery(data []byte) (domain.Question, error) {
	if len(data) < headerLen {
		return domain.Question{}, fmt.Errorf("%w: query too short", ErrMalformedMessage)
	}
	id := binary.BigEndian.Uint16(data[0:2])
	if qdCount := binary.BigEndian.Uint16(data[4:6]); qdCount != 1 {
		return domain.Question{}, fmt.Errorf("%w: expected exactly one question, got %d", ErrMalformedMessage, qdCount)
	}

	nameText, offset, err := decodeName(data, headerLen)
	if err != nil {
		return domain.Question{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	if offset+4 > len(data) {
		return domain.Question{}, fmt.Errorf("%w: truncated question", ErrMalformedMessage)
	}
	name, err := domain.ParseName(nameText)
	if err != nil {
		return domain.Question{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	q := domain.Question{
		ID:    id,
		Name:  name,
		Type:  domain.RRType(binary.BigEndian.Uint16(data[offset : offset+2])),
		Class: domain.RRClass(binary.BigEndian.Uint16(data[offset+2 : offset+4])),
	}
	if !q.Type.IsValid() || !q.Class.IsValid() {
		return q, fmt.Errorf("%w: %s %s", ErrUnsupportedQuery, q.Class, q.Type)
	}
	return q, nil
}

// DecodeResponse parses a DNS response message, following compression
// pointers in owner names.
func (c *messageCodec) DecodeResponse(data []byte) (domain.DNSResponse, error) {
	if len(data) < headerLen {
		return domain.DNSResponse{}, fmt.Errorf("%w: response too short", ErrMalformedMessage)
	}
	flags := binary.BigEndian.Uint16(data[2:4])
	resp := domain.DNSResponse{
		ID:            binary.BigEndian.Uint16(data[0:2]),
		RCode:         domain.RCode(flags & rcodeMask),
		Authoritative: flags&flagAA != 0,
		Truncated:     flags&flagTC != 0,
	}

	qdCount := int(binary.BigEndian.Uint16(data[4:6]))
	sectionCounts := [3]int{
		int(binary.BigEndian.Uint16(data[6:8])),
		int(binary.BigEndian.Uint16(data[8:10])),
		int(binary.BigEndian.Uint16(data[10:12])),
	}

	offset := headerLen
	for i := 0; i < qdCount; i++ {
		nameText, next, err := decodeName(data, offset)
		if err != nil {
			return domain.DNSResponse{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
		}
		if next+4 > len(data) {
			return domain.DNSResponse{}, fmt.Errorf("%w: truncated question", ErrMalformedMessage)
		}
		if i == 0 {
			name, err := domain.ParseName(nameText)
			if err != nil {
				return domain.DNSResponse{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
			}
			resp.Question = domain.Question{
				ID:    resp.ID,
				Name:  name,
				Type:  domain.RRType(binary.BigEndian.Uint16(data[next : next+2])),
				Class: domain.RRClass(binary.BigEndian.Uint16(data[next+2 : next+4])),
			}
		}
		offset = next + 4
	}

	for si, count := range sectionCounts {
		for i := 0; i < count; i++ {
			rr, next, err := decodeRecord(data, offset)
			if err != nil {
				return domain.DNSResponse{}, fmt.Errorf("%w: record %d in section %d: %v", ErrMalformedMessage, i, si, err)
			}
			offset = next
			switch si {
			case 0:
				resp.Answers = append(resp.Answers, rr)
			case 1:
				resp.Authority = append(resp.Authority, rr)
			case 2:
				resp.Additional = append(resp.Additional, rr)
			}
		}
	}
	return resp, nil
}

// decodeRecord parses one resource record starting at offset.
func decodeRecord(data []byte, offset int) (domain.ResourceRecord, int, error) {
	nameText, offset, err := decodeName(data, offset)
	if err != nil {
		return domain.ResourceRecord{}, 0, err
	}
	if offset+10 > len(data) {
		return domain.ResourceRecord{}, 0, fmt.Errorf("truncated record header")
	}
	name, err := domain.ParseName(nameText)
	if err != nil {
		return domain.ResourceRecord{}, 0, err
	}

	rr := domain.ResourceRecord{
		Name:  name,
		Type:  domain.RRType(binary.BigEndian.Uint16(data[offset : offset+2])),
		Class: domain.RRClass(binary.BigEndian.Uint16(data[offset+2 : offset+4])),
		TTL:   binary.BigEndian.Uint32(data[offset+4 : offset+8]),
	}
	rdLen := int(binary.BigEndian.Uint16(data[offset+8 : offset+10]))
	offset += 10
	if offset+rdLen > len(data) {
		return domain.ResourceRecord{}, 0, fmt.Errorf("truncated RDATA")
	}
	rr.Data = make([]byte, rdLen)
	copy(rr.Data, data[offset:offset+rdLen])
	offset += rdLen

	// Best-effort presentation form; unsupported types keep raw data only.
	if text, err := rrdata.Decode(rr.Type, rr.Data); err == nil {
		rr.Text = text
	}
	return rr, offset, nil
}

// decodeName reads a possibly compressed domain name starting at offset and
// returns its presentation form plus the offset of the following field.
// Pointer chains are bounded so malicious messages cannot loop.
func decodeName(data []byte, offset int) (string, int, error) {
	var labels []string
	next := -1 // offset after the name in the original position
	jumps := 0

	for {
		if offset >= len(data) {
			return "", 0, fmt.Errorf("name runs past end of message")
		}
		length := int(data[offset])
		switch {
		case length == 0:
			if next < 0 {
				next = offset + 1
			}
			return strings.Join(labels, "."), next, nil
		case length&0xC0 == 0xC0:
			if offset+1 >= len(data) {
				return "", 0, fmt.Errorf("compression pointer runs past end of message")
			}
			if jumps++; jumps > maxPointerJumps {
				return "", 0, fmt.Errorf("compression pointer loop")
			}
			if next < 0 {
				next = offset + 2
			}
			offset = int(binary.BigEndian.Uint16(data[offset:offset+2]) & 0x3FFF)
		case length > domain.MaxLabelLength:
			return "", 0, fmt.Errorf("invalid label length %d", length)
		default:
			offset++
			if offset+length > len(data) {
				return "", 0, fmt.Errorf("label runs past end of message")
			}
			labels = append(labels, string(data[offset:offset+length]))
			offset += length
		}
	}
}
