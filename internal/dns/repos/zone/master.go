// Package zone loads authoritative zone data from disk. Two on-disk formats
// are supported: RFC 1035 master files (.zone/.db) and structured
// YAML/JSON/TOML documents. Both converge on the same record builder, so a
// zone loads identically regardless of format.
package zone

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/haukened/az-dns/internal/dns/common/rrdata"
	"github.com/haukened/az-dns/internal/dns/domain"
)

// parserState carries the directive-scoped defaults of a master file:
// the current origin, the current default TTL, and the last explicit owner.
// Directives mutate this struct as lines are consumed; there is no global
// parser state.
type parserState struct {
	file     string
	origin   domain.Name
	hasOrig  bool
	ttl      uint32
	hasTTL   bool
	owner    domain.Name
	hasOwner bool
}

// token is a single field of a logical zone-file line. Quoting matters for
// TXT data, where quoted and unquoted fields are distinct character-strings.
type token struct {
	text   string
	quoted bool
}

// ParseMaster parses RFC 1035 master-file text into resource records.
// defaultTTL applies to records with no explicit TTL when no $TTL directive
// has been seen. Any malformed input returns a *domain.ParseError; no partial
// record set is returned.
func ParseMaster(r io.Reader, filename string, defaultTTL uint32) ([]domain.ResourceRecord, error) {
	st := &parserState{file: filename}
	var records []domain.ResourceRecord

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		pending    []token // logical line assembled across parentheses
		pendingWS  bool    // leading whitespace of the logical line's first physical line
		pendingTop int     // line number where the logical line started
		depth      int
		lineNo     int
	)

	for scanner.Scan() {
		lineNo++
		tokens, delta, err := tokenizeLine(scanner.Text())
		if err != nil {
			return nil, parseErr(st.file, lineNo, err.Error())
		}
		if depth == 0 {
			if len(tokens) == 0 {
				continue
			}
			pending = tokens
			pendingWS = hasLeadingSpace(scanner.Text())
			pendingTop = lineNo
		} else {
			pending = append(pending, tokens...)
		}
		depth += delta
		if depth < 0 {
			return nil, parseErr(st.file, lineNo, "unbalanced closing parenthesis")
		}
		if depth > 0 {
			continue
		}

		rrs, err := parseLogicalLine(st, pending, pendingWS, pendingTop, defaultTTL)
		if err != nil {
			return nil, err
		}
		records = append(records, rrs...)
		pending = nil
	}
	if err := scanner.Err(); err != nil {
		return nil, parseErr(filename, lineNo, err.Error())
	}
	if depth != 0 {
		return nil, parseErr(filename, lineNo, "unterminated parenthesized group")
	}
	return records, nil
}

// parseLogicalLine dispatches one assembled logical line: a directive or a
// record. Directives update parser state and produce no records.
func parseLogicalLine(st *parserState, tokens []token, leadingWS bool, line int, defaultTTL uint32) ([]domain.ResourceRecord, error) {
	if strings.HasPrefix(tokens[0].text, "$") && !tokens[0].quoted {
		return nil, parseDirective(st, tokens, line)
	}
	rr, err := parseRecordLine(st, tokens, leadingWS, line, defaultTTL)
	if err != nil {
		return nil, err
	}
	return []domain.ResourceRecord{rr}, nil
}

func parseDirective(st *parserState, tokens []token, line int) error {
	switch strings.ToUpper(tokens[0].text) {
	case "$TTL":
		if len(tokens) != 2 {
			return parseErr(st.file, line, "$TTL requires exactly one value")
		}
		ttl, err := parseTTL(tokens[1].text)
		if err != nil {
			return parseErr(st.file, line, err.Error())
		}
		st.ttl = ttl
		st.hasTTL = true
	case "$ORIGIN":
		if len(tokens) != 2 {
			return parseErr(st.file, line, "$ORIGIN requires exactly one name")
		}
		if !strings.HasSuffix(tokens[1].text, ".") {
			return parseErr(st.file, line, "$ORIGIN name must be absolute")
		}
		origin, err := domain.ParseName(tokens[1].text)
		if err != nil {
			return parseErr(st.file, line, fmt.Sprintf("invalid $ORIGIN name: %v", err))
		}
		st.origin = origin
		st.hasOrig = true
	default:
		return parseErr(st.file, line, fmt.Sprintf("unknown directive %s", tokens[0].text))
	}
	return nil
}

// parseRecordLine parses "[owner] [ttl] [class] type rdata..." with the usual
// master-file flexibility: TTL and class may appear in either order, and a
// line starting with whitespace inherits the previous owner.
func parseRecordLine(st *parserState, tokens []token, leadingWS bool, line int, defaultTTL uint32) (domain.ResourceRecord, error) {
	i := 0

	var owner domain.Name
	if leadingWS {
		if !st.hasOwner {
			return domain.ResourceRecord{}, parseErr(st.file, line, "record has no owner and no previous owner to inherit")
		}
		owner = st.owner
	} else {
		name, err := expandOwner(st, tokens[0].text, line)
		if err != nil {
			return domain.ResourceRecord{}, err
		}
		owner = name
		i = 1
	}
	st.owner = owner
	st.hasOwner = true

	ttl := defaultTTL
	if st.hasTTL {
		ttl = st.ttl
	}
	class := domain.RRClassIN
	var rrtype domain.RRType

	// Up to two optional fields (TTL, class) precede the type mnemonic.
	for ; i < len(tokens); i++ {
		tok := tokens[i].text
		if c := domain.ParseRRClass(strings.ToUpper(tok)); c != 0 {
			class = c
			continue
		}
		if v, err := parseTTL(tok); err == nil && domain.RRTypeFromString(tok) == 0 {
			ttl = v
			continue
		}
		if t := domain.RRTypeFromString(tok); t != 0 {
			rrtype = t
			i++
			break
		}
		return domain.ResourceRecord{}, parseErr(st.file, line, fmt.Sprintf("unrecognized record type %q", tok))
	}
	if rrtype == 0 {
		return domain.ResourceRecord{}, parseErr(st.file, line, "record line is missing a type")
	}

	text, err := canonicalRData(st, rrtype, tokens[i:], line)
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	data, err := rrdata.Encode(rrtype, text)
	if err != nil {
		return domain.ResourceRecord{}, parseErr(st.file, line, err.Error())
	}
	rr, err := domain.NewResourceRecord(owner, rrtype, class, ttl, data, text)
	if err != nil {
		return domain.ResourceRecord{}, parseErr(st.file, line, err.Error())
	}
	return rr, nil
}

// canonicalRData normalizes the RDATA fields into the presentation form the
// rrdata codecs expect: relative names expanded to absolute, TTL-style timer
// fields reduced to bare seconds.
func canonicalRData(st *parserState, rrtype domain.RRType, fields []token, line int) (string, error) {
	switch rrtype {
	case domain.RRTypeNS, domain.RRTypeCNAME, domain.RRTypePTR, domain.RRTypeDNAME:
		if len(fields) != 1 {
			return "", parseErr(st.file, line, fmt.Sprintf("%s record requires exactly one target name", rrtype))
		}
		name, err := expandName(st, fields[0].text, line)
		if err != nil {
			return "", err
		}
		return name.String(), nil

	case domain.RRTypeMX:
		if len(fields) != 2 {
			return "", parseErr(st.file, line, "MX record requires preference and exchange")
		}
		exchange, err := expandName(st, fields[1].text, line)
		if err != nil {
			return "", err
		}
		return fields[0].text + " " + exchange.String(), nil

	case domain.RRTypeSOA:
		if len(fields) != 7 {
			return "", parseErr(st.file, line, "SOA record requires mname, rname, and five timer fields")
		}
		mname, err := expandName(st, fields[0].text, line)
		if err != nil {
			return "", err
		}
		rname, err := expandName(st, fields[1].text, line)
		if err != nil {
			return "", err
		}
		out := []string{mname.String(), rname.String()}
		for _, f := range fields[2:] {
			v, err := parseTTL(f.text)
			if err != nil {
				return "", parseErr(st.file, line, fmt.Sprintf("invalid SOA timer %q: %v", f.text, err))
			}
			out = append(out, fmt.Sprintf("%d", v))
		}
		return strings.Join(out, " "), nil

	case domain.RRTypeTXT:
		if len(fields) == 0 {
			return "", parseErr(st.file, line, "TXT record requires at least one string")
		}
		segments := make([]string, len(fields))
		for i, f := range fields {
			segments[i] = f.text
		}
		return strings.Join(segments, "; "), nil

	default:
		if len(fields) != 1 {
			return "", parseErr(st.file, line, fmt.Sprintf("%s record requires exactly one field", rrtype))
		}
		return fields[0].text, nil
	}
}

// expandOwner resolves a record's owner field against parser state.
func expandOwner(st *parserState, field string, line int) (domain.Name, error) {
	return expandName(st, field, line)
}

// expandName resolves a possibly relative name. "@" denotes the origin; a
// trailing dot marks the name as already absolute and exempt from expansion.
func expandName(st *parserState, field string, line int) (domain.Name, error) {
	if field == "@" {
		if !st.hasOrig {
			return domain.Name{}, parseErr(st.file, line, "@ used before $ORIGIN")
		}
		return st.origin, nil
	}
	if strings.HasSuffix(field, ".") {
		name, err := domain.ParseName(field)
		if err != nil {
			return domain.Name{}, parseErr(st.file, line, fmt.Sprintf("invalid name %q: %v", field, err))
		}
		return name, nil
	}
	if !st.hasOrig {
		return domain.Name{}, parseErr(st.file, line, fmt.Sprintf("relative name %q with no $ORIGIN in scope", field))
	}
	name, err := domain.ParseName(field + "." + st.origin.String())
	if err != nil {
		return domain.Name{}, parseErr(st.file, line, fmt.Sprintf("invalid name %q: %v", field, err))
	}
	return name, nil
}

// tokenizeLine splits one physical line into fields, honoring double quotes,
// stripping comments, and removing grouping parentheses. It returns the net
// parenthesis depth change of the line.
func tokenizeLine(line string) ([]token, int, error) {
	var (
		tokens  []token
		current strings.Builder
		inQuote bool
		quoted  bool
		delta   int
	)
	flush := func() {
		if current.Len() > 0 || quoted {
			tokens = append(tokens, token{text: current.String(), quoted: quoted})
			current.Reset()
			quoted = false
		}
	}
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case inQuote:
			if c == '"' {
				inQuote = false
				flush()
			} else {
				current.WriteByte(c)
			}
		case c == '"':
			flush()
			inQuote = true
			quoted = true
		case c == ';':
			flush()
			return tokens, delta, nil // comment runs to end of line
		case c == '(':
			flush()
			delta++
		case c == ')':
			flush()
			delta--
		case c == ' ' || c == '\t':
			flush()
		default:
			current.WriteByte(c)
		}
	}
	if inQuote {
		return nil, 0, fmt.Errorf("unterminated quoted string")
	}
	flush()
	return tokens, delta, nil
}

func hasLeadingSpace(line string) bool {
	return len(line) > 0 && (line[0] == ' ' || line[0] == '\t')
}

func parseErr(file string, line int, msg string) *domain.ParseError {
	return &domain.ParseError{File: file, Line: line, Msg: msg}
}
