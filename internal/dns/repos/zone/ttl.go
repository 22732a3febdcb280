package zone

import (
	"fmt"
	"strconv"
	"strings"
)

// unitSeconds maps BIND-style TTL unit suffixes to seconds.
var unitSeconds = map[byte]uint64{
	's': 1,
	'm': 60,
	'h': 3600,
	'd': 86400,
	'w': 604800,
}

// parseTTL parses a TTL field in either bare-integer or unit-suffixed form.
// "3600", "1h", and "1H" all yield 3600; compound forms like "1h30m" are
// accepted and summed. Both forms of the same duration must produce the same
// integer, so everything funnels through one accumulator.
func parseTTL(s string) (uint32, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty TTL")
	}

	// Fast path: bare seconds.
	if v, err := strconv.ParseUint(s, 10, 32); err == nil {
		return uint32(v), nil
	}

	var total uint64
	i := 0
	for i < len(s) {
		j := i
		for j < len(s) && s[j] >= '0' && s[j] <= '9' {
			j++
		}
		if j == i || j == len(s) {
			return 0, fmt.Errorf("invalid TTL %q", s)
		}
		mult, ok := unitSeconds[s[j]]
		if !ok {
			return 0, fmt.Errorf("invalid TTL unit %q in %q", string(s[j]), s)
		}
		v, err := strconv.ParseUint(s[i:j], 10, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid TTL %q: %w", s, err)
		}
		total += v * mult
		if total > 1<<31-1 { // RFC 2181 §8: TTLs are 31-bit
			return 0, fmt.Errorf("TTL %q out of range", s)
		}
		i = j + 1
	}
	return uint32(total), nil
}
