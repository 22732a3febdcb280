package resolver

import (
	"context"
	"net"

	"github.com/haukened/az-dns/internal/dns/domain"
)

// ZoneStore provides read access to immutable authoritative zone data.
// Implemented by repos/zonestore.
type ZoneStore interface {
	// FindOrigin returns the origin of the most specific zone covering name,
	// or false when the server is not authoritative for the name.
	FindOrigin(name domain.Name) (domain.Name, bool)

	// SOA returns the SOA record of the zone rooted at origin.
	SOA(origin domain.Name) (domain.ResourceRecord, bool)

	// NameExists reports whether name exists in the zone rooted at origin,
	// including empty non-terminals.
	NameExists(origin, name domain.Name) bool

	// Lookup returns the RRset for an exact (name, type, class) match in the
	// zone rooted at origin. Type ANY returns every record at the owner.
	Lookup(origin, name domain.Name, rrtype domain.RRType, class domain.RRClass) []domain.ResourceRecord
}

// AnswerCache caches positive resolution results. Implemented by
// repos/answercache; may be nil to disable caching.
type AnswerCache interface {
	Set(q domain.Question, result domain.ResolutionResult)
	Get(q domain.Question) (domain.ResolutionResult, bool)
}

// DNSResponder defines how the transport layer hands decoded questions to
// the service layer. The transport handles all wire and network concerns;
// the handler only sees domain objects.
type DNSResponder interface {
	HandleQuery(ctx context.Context, q domain.Question, clientAddr net.Addr) domain.DNSResponse
}
