// Package zonestore holds parsed authoritative zones in memory. A Zone is
// built once at load time and never mutated afterward, so any number of
// queries may read it concurrently without locking.
package zonestore

import (
	"fmt"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/haukened/az-dns/internal/dns/domain"
)

// bloomFalsePositiveRate trades a little wasted map probing for a compact
// filter. A false positive only costs the map lookup the filter was meant to
// skip, so correctness never depends on it.
const bloomFalsePositiveRate = 0.01

// Zone is an immutable set of authoritative records rooted at an origin.
// Invariants, enforced by NewZone: exactly one SOA, owned by the origin;
// the origin carries at least one NS record; every owner name is at or
// below the origin.
type Zone struct {
	origin  domain.Name
	soa     domain.ResourceRecord
	byKey   map[string][]domain.ResourceRecord
	byOwner map[string][]domain.ResourceRecord
	// names holds every owner name plus every intermediate name between an
	// owner and the origin. Empty non-terminals exist for NXDOMAIN purposes
	// even though they hold no records.
	names  map[string]struct{}
	filter *bloom.BloomFilter
}

// NewZone validates and indexes a record set into a Zone.
func NewZone(origin domain.Name, records []domain.ResourceRecord) (*Zone, error) {
	z := &Zone{
		origin:  origin,
		byKey:   make(map[string][]domain.ResourceRecord),
		byOwner: make(map[string][]domain.ResourceRecord),
		names:   make(map[string]struct{}),
	}

	soaSeen := false
	for _, rr := range records {
		if !rr.Name.IsUnder(origin) {
			return nil, fmt.Errorf("record %s is outside zone origin %s", rr.Name, origin)
		}
		if rr.Type == domain.RRTypeSOA {
			if soaSeen {
				return nil, fmt.Errorf("zone %s has more than one SOA record", origin)
			}
			if !rr.Name.Equal(origin) {
				return nil, fmt.Errorf("SOA record owner %s does not match zone origin %s", rr.Name, origin)
			}
			soaSeen = true
			z.soa = rr
		}
		z.byKey[rr.Key()] = append(z.byKey[rr.Key()], rr)
		owner := rr.Name.String()
		z.byOwner[owner] = append(z.byOwner[owner], rr)

		// Register the owner and all intermediate names down to the origin.
		for n := rr.Name; n.IsUnder(origin); n = n.Parent() {
			z.names[n.String()] = struct{}{}
			if n.Equal(origin) {
				break
			}
		}
	}

	if !soaSeen {
		return nil, fmt.Errorf("zone %s has no SOA record", origin)
	}
	if len(z.lookupKey(origin, domain.RRTypeNS, domain.RRClassIN)) == 0 {
		return nil, fmt.Errorf("zone %s has no NS record at its origin", origin)
	}

	z.filter = bloom.NewWithEstimates(uint(len(z.names)), bloomFalsePositiveRate)
	for name := range z.names {
		z.filter.AddString(name)
	}
	return z, nil
}

// Origin returns the zone's origin name.
func (z *Zone) Origin() domain.Name {
	return z.origin
}

// SOA returns the zone's SOA record.
func (z *Zone) SOA() domain.ResourceRecord {
	return z.soa
}

// Contains reports whether name is at or below the zone origin.
func (z *Zone) Contains(name domain.Name) bool {
	return name.IsUnder(z.origin)
}

// NameExists reports whether the name exists in the zone, including empty
// non-terminals. The bloom filter screens out clear misses before the map
// probe; a filter hit still verifies against the authoritative name set.
func (z *Zone) NameExists(name domain.Name) bool {
	key := name.String()
	if !z.filter.TestString(key) {
		return false
	}
	_, ok := z.names[key]
	return ok
}

// Lookup returns the RRset for an exact (name, type, class) match.
// Type ANY returns every record at the owner.
func (z *Zone) Lookup(name domain.Name, rrtype domain.RRType, class domain.RRClass) []domain.ResourceRecord {
	if !z.NameExists(name) {
		return nil
	}
	if rrtype == domain.RRTypeANY {
		return z.byOwner[name.String()]
	}
	return z.lookupKey(name, rrtype, class)
}

func (z *Zone) lookupKey(name domain.Name, rrtype domain.RRType, class domain.RRClass) []domain.ResourceRecord {
	q := domain.Question{Name: name, Type: rrtype, Class: class}
	return z.byKey[q.Key()]
}

// RecordCount returns the number of records held by the zone.
func (z *Zone) RecordCount() int {
	n := 0
	for _, rrs := range z.byOwner {
		n += len(rrs)
	}
	return n
}
