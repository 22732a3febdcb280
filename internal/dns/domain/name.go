package domain

import (
	"strings"
)

const (
	// MaxLabelLength is the maximum length of a single DNS label in octets (RFC 1035 §2.3.4).
	MaxLabelLength = 63

	// MaxNameLength is the maximum encoded length of a domain name in octets,
	// including the length prefix of every label and the terminating root byte.
	MaxNameLength = 255
)

// Name is an absolute DNS domain name: an ordered sequence of labels, most
// specific first. Names are canonicalized (lowercased) and validated at
// construction, so every Name in the system is within protocol limits. The
// zero value is the root name.
type Name struct {
	labels []string
}

// Root is the DNS root name ".".
var Root = Name{}

// ParseName parses a presentation-format domain name into a Name.
// The name is lowercased and a trailing dot is accepted but not required.
// Names that violate the label or total length limits return ErrLabelTooLong
// or ErrNameTooLong; they are never silently truncated.
func ParseName(s string) (Name, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return Root, nil
	}
	labels := strings.Split(s, ".")
	return NewName(labels)
}

// MustParseName parses a name and panics on failure. For tests and constants.
func MustParseName(s string) Name {
	n, err := ParseName(s)
	if err != nil {
		panic(err)
	}
	return n
}

// NewName constructs a Name from individual labels, enforcing the label and
// total length invariants.
func NewName(labels []string) (Name, error) {
	encoded := 1 // terminating root byte
	for _, label := range labels {
		if label == "" {
			return Name{}, ErrEmptyLabel
		}
		if len(label) > MaxLabelLength {
			return Name{}, ErrLabelTooLong
		}
		encoded += len(label) + 1
	}
	if encoded > MaxNameLength {
		return Name{}, ErrNameTooLong
	}
	copied := make([]string, len(labels))
	for i, label := range labels {
		copied[i] = strings.ToLower(label)
	}
	return Name{labels: copied}, nil
}

// String returns the absolute presentation form with a trailing dot.
func (n Name) String() string {
	if len(n.labels) == 0 {
		return "."
	}
	return strings.Join(n.labels, ".") + "."
}

// Labels returns a copy of the name's labels, most specific first.
func (n Name) Labels() []string {
	out := make([]string, len(n.labels))
	copy(out, n.labels)
	return out
}

// LabelCount returns the number of labels in the name.
func (n Name) LabelCount() int {
	return len(n.labels)
}

// IsRoot reports whether the name is the DNS root.
func (n Name) IsRoot() bool {
	return len(n.labels) == 0
}

// EncodedLength returns the wire-format length of the name in octets,
// including label length prefixes and the terminating root byte.
func (n Name) EncodedLength() int {
	length := 1
	for _, label := range n.labels {
		length += len(label) + 1
	}
	return length
}

// Equal reports whether two names are identical. Names are canonicalized at
// construction, so comparison is exact.
func (n Name) Equal(other Name) bool {
	if len(n.labels) != len(other.labels) {
		return false
	}
	for i := range n.labels {
		if n.labels[i] != other.labels[i] {
			return false
		}
	}
	return true
}

// IsSubdomainOf reports whether n is strictly below parent in the DNS tree.
// A name is not a subdomain of itself.
func (n Name) IsSubdomainOf(parent Name) bool {
	if len(n.labels) <= len(parent.labels) {
		return false
	}
	offset := len(n.labels) - len(parent.labels)
	for i := range parent.labels {
		if n.labels[offset+i] != parent.labels[i] {
			return false
		}
	}
	return true
}

// IsUnder reports whether n equals parent or is strictly below it.
func (n Name) IsUnder(parent Name) bool {
	return n.Equal(parent) || n.IsSubdomainOf(parent)
}

// Parent returns the name with its leftmost label removed. The parent of the
// root is the root.
func (n Name) Parent() Name {
	if len(n.labels) == 0 {
		return Root
	}
	return Name{labels: n.labels[1:]}
}

// Prepend returns a new name with one label added at the front, revalidating
// the length invariants. A label that pushes the encoded name past 255 octets
// returns ErrNameTooLong.
func (n Name) Prepend(label string) (Name, error) {
	labels := make([]string, 0, len(n.labels)+1)
	labels = append(labels, label)
	labels = append(labels, n.labels...)
	return NewName(labels)
}

// Substitute replaces the suffix of n matching oldSuffix with newSuffix,
// producing the synthesized name used during DNAME redirection (RFC 6672 §2.2).
// n must be strictly below oldSuffix. The synthesized name may legally exceed
// 255 octets even though both inputs are valid; that condition is reported as
// ErrNameTooLong so the caller can answer YXDOMAIN instead of truncating.
func (n Name) Substitute(oldSuffix, newSuffix Name) (Name, error) {
	if !n.IsSubdomainOf(oldSuffix) {
		return Name{}, ErrNotSubdomain
	}
	prefix := n.labels[:len(n.labels)-len(oldSuffix.labels)]
	labels := make([]string, 0, len(prefix)+len(newSuffix.labels))
	labels = append(labels, prefix...)
	labels = append(labels, newSuffix.labels...)
	return NewName(labels)
}
