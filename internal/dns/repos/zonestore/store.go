package zonestore

import (
	"fmt"

	"github.com/haukened/az-dns/internal/dns/domain"
)

// Store holds every loaded zone, indexed by origin. Like Zone it is built at
// startup and read-only afterward.
type Store struct {
	zones map[string]*Zone
}

// New creates an empty Store.
func New() *Store {
	return &Store{zones: make(map[string]*Zone)}
}

// AddZone registers a zone. Registering two zones with the same origin is a
// configuration error.
func (s *Store) AddZone(z *Zone) error {
	key := z.Origin().String()
	if _, exists := s.zones[key]; exists {
		return fmt.Errorf("duplicate zone origin %s", z.Origin())
	}
	s.zones[key] = z
	return nil
}

// FindZone returns the most specific zone whose origin is at or above name,
// or nil when the server is not authoritative for the name.
func (s *Store) FindZone(name domain.Name) *Zone {
	for n := name; ; n = n.Parent() {
		if z, ok := s.zones[n.String()]; ok {
			return z
		}
		if n.IsRoot() {
			return nil
		}
	}
}

// FindOrigin returns the origin of the most specific zone covering name.
// These domain-typed accessors are what the resolver service consumes.
func (s *Store) FindOrigin(name domain.Name) (domain.Name, bool) {
	z := s.FindZone(name)
	if z == nil {
		return domain.Name{}, false
	}
	return z.Origin(), true
}

// SOA returns the SOA record of the zone rooted at origin.
func (s *Store) SOA(origin domain.Name) (domain.ResourceRecord, bool) {
	z, ok := s.zones[origin.String()]
	if !ok {
		return domain.ResourceRecord{}, false
	}
	return z.SOA(), true
}

// NameExists reports whether name exists in the zone rooted at origin,
// including empty non-terminals.
func (s *Store) NameExists(origin, name domain.Name) bool {
	z, ok := s.zones[origin.String()]
	if !ok {
		return false
	}
	return z.NameExists(name)
}

// Lookup returns the RRset for an exact (name, type, class) match in the
// zone rooted at origin.
func (s *Store) Lookup(origin, name domain.Name, rrtype domain.RRType, class domain.RRClass) []domain.ResourceRecord {
	z, ok := s.zones[origin.String()]
	if !ok {
		return nil
	}
	return z.Lookup(name, rrtype, class)
}

// Zones returns the origins of all loaded zones.
func (s *Store) Zones() []domain.Name {
	origins := make([]domain.Name, 0, len(s.zones))
	for _, z := range s.zones {
		origins = append(origins, z.Origin())
	}
	return origins
}

// Count returns the total number of records across all zones.
func (s *Store) Count() int {
	count := 0
	for _, z := range s.zones {
		count += z.RecordCount()
	}
	return count
}
