// Package resolver contains the authoritative resolution service: matching
// questions against zone data, following DNAME and CNAME redirections, and
// mapping every outcome to a distinct response status.
package resolver

import (
	"context"
	"net"

	"github.com/haukened/az-dns/internal/dns/common/clock"
	"github.com/haukened/az-dns/internal/dns/common/log"
	"github.com/haukened/az-dns/internal/dns/domain"
)

// DefaultMaxRedirectDepth bounds DNAME/CNAME chains. Circular redirections
// terminate with SERVFAIL instead of looping.
const DefaultMaxRedirectDepth = 8

// Resolver answers DNS questions from authoritative zone data. It is safe
// for concurrent use: zones are immutable and each query's state is local.
type Resolver struct {
	store    ZoneStore
	cache    AnswerCache
	clock    clock.Clock
	logger   log.Logger
	maxDepth int
}

// ResolverOptions carries the collaborators for NewResolver.
type ResolverOptions struct {
	Store    ZoneStore
	Cache    AnswerCache
	Clock    clock.Clock
	Logger   log.Logger
	MaxDepth int
}

// NewResolver constructs a Resolver. Cache may be nil to disable caching;
// MaxDepth <= 0 selects the default redirect bound.
func NewResolver(opts ResolverOptions) *Resolver {
	depth := opts.MaxDepth
	if depth <= 0 {
		depth = DefaultMaxRedirectDepth
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Resolver{
		store:    opts.Store,
		cache:    opts.Cache,
		clock:    clk,
		logger:   logger,
		maxDepth: depth,
	}
}

// HandleQuery resolves a question and packages the outcome as a response.
// This is the query server entry point called by every transport. A panic
// anywhere in resolution is converted to SERVFAIL; a corrupted zone must
// never take the process down.
func (r *Resolver) HandleQuery(ctx context.Context, q domain.Question, clientAddr net.Addr) (resp domain.DNSResponse) {
	start := r.clock.Now()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error(map[string]any{
				"query": q.Name.String(),
				"type":  q.Type.String(),
				"panic": rec,
			}, "Panic during resolution")
			resp = domain.NewDNSErrorResponse(q, domain.SERVFAIL)
		}
	}()

	if err := ctx.Err(); err != nil {
		return domain.NewDNSErrorResponse(q, domain.SERVFAIL)
	}

	result, cached := r.lookupOrResolve(q)

	resp = domain.DNSResponse{
		ID:            q.ID,
		RCode:         result.Status.RCode(),
		Authoritative: result.Status != domain.StatusNotAuthoritative,
		Question:      q,
		Answers:       result.Answers,
		Authority:     result.Authority,
	}

	r.logger.Debug(map[string]any{
		"client":  clientAddrString(clientAddr),
		"query":   q.Name.String(),
		"type":    q.Type.String(),
		"status":  result.Status.String(),
		"rcode":   resp.RCode.String(),
		"answers": len(resp.Answers),
		"cached":  cached,
		"took":    r.clock.Now().Sub(start).String(),
	}, "Resolved query")

	return resp
}

// lookupOrResolve consults the answer cache before running full resolution.
// Only positive answers are ever cached, so distinct negative statuses stay
// observable on every query.
func (r *Resolver) lookupOrResolve(q domain.Question) (domain.ResolutionResult, bool) {
	if r.cache != nil {
		if result, ok := r.cache.Get(q); ok {
			return result, true
		}
	}
	result := r.Resolve(q)
	if r.cache != nil {
		r.cache.Set(q, result)
	}
	return result, false
}

func clientAddrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
