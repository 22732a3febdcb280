package zone

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haukened/az-dns/internal/dns/domain"
)

func parse(t *testing.T, text string) []domain.ResourceRecord {
	t.Helper()
	records, err := ParseMaster(strings.NewReader(text), "test.zone", 300)
	require.NoError(t, err)
	return records
}

func parseFail(t *testing.T, text string) *domain.ParseError {
	t.Helper()
	_, err := ParseMaster(strings.NewReader(text), "test.zone", 300)
	require.Error(t, err)
	var pe *domain.ParseError
	require.True(t, errors.As(err, &pe), "error should be a ParseError, got %T", err)
	return pe
}

func TestParseMasterBasicRecords(t *testing.T) {
	records := parse(t, `
$ORIGIN example.com.
$TTL 1h
@       IN SOA ns1 hostmaster ( 2024010101 3600 600 604800 300 )
@       IN NS  ns1
ns1     IN A   192.0.2.1
www     IN A   192.0.2.2
`)
	require.Len(t, records, 4)

	soa := records[0]
	assert.Equal(t, "example.com.", soa.Name.String())
	assert.Equal(t, domain.RRTypeSOA, soa.Type)
	assert.Equal(t, uint32(3600), soa.TTL)
	assert.Equal(t, "ns1.example.com. hostmaster.example.com. 2024010101 3600 600 604800 300", soa.Text)

	assert.Equal(t, "ns1.example.com.", records[1].Text)
	assert.Equal(t, "ns1.example.com.", records[2].Name.String())
	assert.Equal(t, "192.0.2.1", records[2].Text)
	assert.Equal(t, []byte{192, 0, 2, 1}, records[2].Data)
}

func TestParseMasterDefaultTTL(t *testing.T) {
	records := parse(t, `
$ORIGIN example.com.
www IN A 192.0.2.2
`)
	require.Len(t, records, 1)
	assert.Equal(t, uint32(300), records[0].TTL, "records before any $TTL take the loader default")
}

func TestParseMasterExplicitTTLAndClassOrder(t *testing.T) {
	records := parse(t, `
$ORIGIN example.com.
$TTL 1h
a 600 IN A 192.0.2.1
b IN 600 A 192.0.2.2
c 10m A 192.0.2.3
d A 192.0.2.4
`)
	require.Len(t, records, 4)
	assert.Equal(t, uint32(600), records[0].TTL)
	assert.Equal(t, uint32(600), records[1].TTL)
	assert.Equal(t, uint32(600), records[2].TTL, "unit-suffixed TTL equals its bare form")
	assert.Equal(t, uint32(3600), records[3].TTL, "$TTL applies when no explicit TTL")
	for _, rr := range records {
		assert.Equal(t, domain.RRClassIN, rr.Class)
	}
}

func TestParseMasterOwnerInheritance(t *testing.T) {
	records := parse(t, `
$ORIGIN example.com.
$TTL 300
multi IN A   192.0.2.1
      IN A   192.0.2.2
      IN TXT "two records share this owner"
`)
	require.Len(t, records, 3)
	for _, rr := range records {
		assert.Equal(t, "multi.example.com.", rr.Name.String())
	}
}

func TestParseMasterAbsoluteNames(t *testing.T) {
	records := parse(t, `
$ORIGIN example.com.
$TTL 300
other.example.net. IN A 192.0.2.9
rel                IN CNAME target.example.net.
`)
	require.Len(t, records, 2)
	assert.Equal(t, "other.example.net.", records[0].Name.String(),
		"trailing dot exempts a name from origin expansion")
	assert.Equal(t, "target.example.net.", records[1].Text)
}

func TestParseMasterQuotedTXT(t *testing.T) {
	records := parse(t, `
$ORIGIN example.com.
$TTL 300
txt IN TXT "v=spf1 -all" "second string"
`)
	require.Len(t, records, 1)
	assert.Equal(t, "v=spf1 -all; second string", records[0].Text)
}

func TestParseMasterCommentsAndBlankLines(t *testing.T) {
	records := parse(t, `
; leading comment
$ORIGIN example.com.
$TTL 300

www IN A 192.0.2.1 ; trailing comment
`)
	require.Len(t, records, 1)
	assert.Equal(t, "www.example.com.", records[0].Name.String())
}

func TestParseMasterMultilineSOA(t *testing.T) {
	records := parse(t, `
$ORIGIN example.com.
$TTL 1h
@ IN SOA ns1.example.com. hostmaster.example.com. (
        2024010101 ; serial
        1h         ; refresh
        10m        ; retry
        1w         ; expire
        5m )       ; minimum
`)
	require.Len(t, records, 1)
	assert.Equal(t, "ns1.example.com. hostmaster.example.com. 2024010101 3600 600 604800 300",
		records[0].Text, "unit-suffixed SOA timers reduce to bare seconds")
}

func TestParseMasterErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
		line int
		msg  string
	}{
		{
			name: "unknown directive",
			text: "$BOGUS value\n",
			line: 1,
			msg:  "unknown directive",
		},
		{
			name: "relative origin",
			text: "$ORIGIN example.com\n",
			line: 1,
			msg:  "must be absolute",
		},
		{
			name: "at before origin",
			text: "@ IN A 192.0.2.1\n",
			line: 1,
			msg:  "@ used before $ORIGIN",
		},
		{
			name: "relative name before origin",
			text: "www IN A 192.0.2.1\n",
			line: 1,
			msg:  "no $ORIGIN in scope",
		},
		{
			name: "unrecognized type",
			text: "$ORIGIN example.com.\nwww IN BOGUS data\n",
			line: 2,
			msg:  "unrecognized record type",
		},
		{
			name: "bad rdata",
			text: "$ORIGIN example.com.\nwww IN A not-an-ip\n",
			line: 2,
			msg:  "invalid A record IP",
		},
		{
			name: "inherit with no previous owner",
			text: "$ORIGIN example.com.\n   IN A 192.0.2.1\n",
			line: 2,
			msg:  "no previous owner",
		},
		{
			name: "unbalanced close paren",
			text: "$ORIGIN example.com.\nwww IN A 192.0.2.1 )\n",
			line: 2,
			msg:  "unbalanced closing parenthesis",
		},
		{
			name: "unterminated group",
			text: "$ORIGIN example.com.\n@ IN SOA ns1 host ( 1 2 3 4 5\n",
			line: 2,
			msg:  "unterminated parenthesized group",
		},
		{
			name: "unterminated quote",
			text: "$ORIGIN example.com.\ntxt IN TXT \"open\n",
			line: 2,
			msg:  "unterminated quoted string",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pe := parseFail(t, tt.text)
			assert.Equal(t, "test.zone", pe.File)
			assert.Equal(t, tt.line, pe.Line)
			assert.Contains(t, pe.Msg, tt.msg)
		})
	}
}
