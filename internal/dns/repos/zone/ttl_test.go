package zone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTTL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint32
		wantErr bool
	}{
		{name: "bare seconds", input: "3600", want: 3600},
		{name: "zero", input: "0", want: 0},
		{name: "hours", input: "1h", want: 3600},
		{name: "uppercase unit", input: "1H", want: 3600},
		{name: "minutes", input: "30m", want: 1800},
		{name: "days", input: "2d", want: 172800},
		{name: "weeks", input: "1w", want: 604800},
		{name: "seconds unit", input: "45s", want: 45},
		{name: "compound", input: "1h30m", want: 5400},
		{name: "compound with all units", input: "1w2d3h4m5s", want: 788645},
		{name: "empty", input: "", wantErr: true},
		{name: "unit without value", input: "h", wantErr: true},
		{name: "value without unit then garbage", input: "1x", wantErr: true},
		{name: "trailing digits", input: "1h30", wantErr: true},
		{name: "negative", input: "-5", wantErr: true},
		{name: "exceeds 31 bits", input: "4000w", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTTL(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// A unit-suffixed TTL and its bare-seconds equivalent must be
// indistinguishable downstream.
func TestParseTTLEquivalence(t *testing.T) {
	pairs := [][2]string{
		{"1h", "3600"},
		{"1d", "86400"},
		{"90m", "5400"},
		{"1h30m", "5400"},
	}
	for _, p := range pairs {
		a, err := parseTTL(p[0])
		require.NoError(t, err)
		b, err := parseTTL(p[1])
		require.NoError(t, err)
		assert.Equal(t, b, a, "%s should equal %s", p[0], p[1])
	}
}
