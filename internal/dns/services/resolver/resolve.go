package resolver

import (
	"errors"

	"github.com/haukened/az-dns/internal/dns/common/rrdata"
	"github.com/haukened/az-dns/internal/dns/domain"
)

// Resolve matches a question against authoritative zone data.
//
// Algorithm, per query name:
//  1. No loaded zone covers the name: NotAuthoritative, not NXDOMAIN,
//     since the name may well exist outside our authority.
//  2. Descend from the zone origin toward the name. A delegation NS RRset at
//     a strict ancestor yields a referral; a DNAME at a strict ancestor
//     redirects the whole subtree by suffix substitution.
//  3. At the name itself: exact RRset match answers; a CNAME redirects; an
//     existing name with no records of the type is NODATA; otherwise the
//     closest-encloser wildcard is tried; otherwise NXDOMAIN.
//
// DNAME substitution may synthesize a name longer than 255 octets even
// though every stored record is valid. That outcome is NameTooLong, answered
// as YXDOMAIN with no record data: the response-coding policy is to reject
// the whole answer, never to truncate it. Redirect chains are bounded by an
// explicit depth counter so circular DNAME or CNAME configurations terminate
// in SERVFAIL rather than unbounded recursion.
func (r *Resolver) Resolve(q domain.Question) domain.ResolutionResult {
	origin, ok := r.store.FindOrigin(q.Name)
	if !ok {
		return domain.ResolutionResult{Status: domain.StatusNotAuthoritative}
	}
	return r.resolve(origin, q.Name, q, 0, nil)
}

// resolve runs one step of resolution for qname within the zone rooted at
// origin. chain accumulates redirection records (DNAME, synthesized CNAME)
// that belong in the final answer section.
func (r *Resolver) resolve(origin, qname domain.Name, q domain.Question, depth int, chain []domain.ResourceRecord) domain.ResolutionResult {
	if depth > r.maxDepth {
		r.logger.Warn(map[string]any{
			"query": q.Name.String(),
			"depth": depth,
			"error": domain.ErrRedirectDepthExceeded.Error(),
		}, "Redirect chain depth exceeded")
		return domain.ResolutionResult{Status: domain.StatusServFail}
	}

	// Descend from just below the origin toward qname. The first delegation
	// or DNAME encountered on the way down owns the rest of the path.
	for _, node := range pathFromOrigin(origin, qname) {
		if ns := r.store.Lookup(origin, node, domain.RRTypeNS, q.Class); len(ns) > 0 && !node.Equal(origin) {
			return domain.ResolutionResult{Status: domain.StatusReferral, Authority: ns}
		}
		if dnames := r.store.Lookup(origin, node, domain.RRTypeDNAME, q.Class); len(dnames) > 0 {
			return r.followDNAME(dnames[0], node, qname, q, depth, chain)
		}
	}

	// Exact RRset match. ANY returns everything at the owner.
	if rrs := r.store.Lookup(origin, qname, q.Type, q.Class); len(rrs) > 0 {
		return domain.ResolutionResult{Status: domain.StatusAnswer, Answers: append(chain, rrs...)}
	}

	// A CNAME at the name answers any other type by redirection.
	if q.Type != domain.RRTypeCNAME && q.Type != domain.RRTypeANY {
		if cnames := r.store.Lookup(origin, qname, domain.RRTypeCNAME, q.Class); len(cnames) > 0 {
			return r.followCNAME(cnames[0], q, depth, chain)
		}
	}

	// The name exists (possibly as an empty non-terminal) but has no
	// records of the queried type.
	if r.store.NameExists(origin, qname) {
		return r.negative(origin, domain.StatusNoData, chain)
	}

	// Wildcard at the closest encloser.
	if result, ok := r.tryWildcard(origin, qname, q, depth, chain); ok {
		return result
	}

	return r.negative(origin, domain.StatusNXDomain, chain)
}

// followDNAME applies suffix substitution for a DNAME at node covering
// qname, then continues resolution at the synthesized name.
func (r *Resolver) followDNAME(dn domain.ResourceRecord, node, qname domain.Name, q domain.Question, depth int, chain []domain.ResourceRecord) domain.ResolutionResult {
	target, err := domain.ParseName(dn.Text)
	if err != nil {
		r.logger.Error(map[string]any{
			"owner": dn.Name.String(),
			"error": err.Error(),
		}, "DNAME record has invalid target")
		return domain.ResolutionResult{Status: domain.StatusServFail}
	}

	synth, err := qname.Substitute(node, target)
	if errors.Is(err, domain.ErrNameTooLong) || errors.Is(err, domain.ErrLabelTooLong) {
		// The whole answer is structurally invalid; emit none of it.
		r.logger.Debug(map[string]any{
			"query": qname.String(),
			"dname": dn.Name.String(),
		}, "DNAME substitution exceeds name length limit")
		return domain.ResolutionResult{Status: domain.StatusNameTooLong}
	}
	if err != nil {
		return domain.ResolutionResult{Status: domain.StatusServFail}
	}

	cname, err := r.synthesizeCNAME(qname, synth, dn.TTL, q.Class)
	if err != nil {
		return domain.ResolutionResult{Status: domain.StatusServFail}
	}
	chain = append(chain, dn, cname)

	if newOrigin, ok := r.store.FindOrigin(synth); ok {
		return r.resolve(newOrigin, synth, q, depth+1, chain)
	}
	// Redirection leaves our authority; the client chases the rest.
	return domain.ResolutionResult{Status: domain.StatusAnswer, Answers: chain}
}

// followCNAME appends the CNAME and continues resolution at its target when
// the target is within our authority.
func (r *Resolver) followCNAME(cname domain.ResourceRecord, q domain.Question, depth int, chain []domain.ResourceRecord) domain.ResolutionResult {
	chain = append(chain, cname)
	target, err := domain.ParseName(cname.Text)
	if err != nil {
		r.logger.Error(map[string]any{
			"owner": cname.Name.String(),
			"error": err.Error(),
		}, "CNAME record has invalid target")
		return domain.ResolutionResult{Status: domain.StatusServFail}
	}
	if newOrigin, ok := r.store.FindOrigin(target); ok {
		return r.resolve(newOrigin, target, q, depth+1, chain)
	}
	return domain.ResolutionResult{Status: domain.StatusAnswer, Answers: chain}
}

// tryWildcard looks for a wildcard at the closest encloser of qname.
// Returns false when no wildcard applies.
func (r *Resolver) tryWildcard(origin, qname domain.Name, q domain.Question, depth int, chain []domain.ResourceRecord) (domain.ResolutionResult, bool) {
	encloser, ok := r.closestEncloser(origin, qname)
	if !ok {
		return domain.ResolutionResult{}, false
	}
	wildcard, err := encloser.Prepend("*")
	if err != nil {
		return domain.ResolutionResult{}, false
	}

	if rrs := r.store.Lookup(origin, wildcard, q.Type, q.Class); len(rrs) > 0 {
		answers := chain
		for _, rr := range rrs {
			answers = append(answers, withOwner(rr, qname))
		}
		return domain.ResolutionResult{Status: domain.StatusAnswer, Answers: answers}, true
	}
	if q.Type != domain.RRTypeCNAME && q.Type != domain.RRTypeANY {
		if cnames := r.store.Lookup(origin, wildcard, domain.RRTypeCNAME, q.Class); len(cnames) > 0 {
			return r.followCNAME(withOwner(cnames[0], qname), q, depth, chain), true
		}
	}
	if r.store.NameExists(origin, wildcard) {
		return r.negative(origin, domain.StatusNoData, chain), true
	}
	return domain.ResolutionResult{}, false
}

// closestEncloser returns the longest existing ancestor of qname within the
// zone rooted at origin.
func (r *Resolver) closestEncloser(origin, qname domain.Name) (domain.Name, bool) {
	for n := qname.Parent(); n.IsUnder(origin); n = n.Parent() {
		if r.store.NameExists(origin, n) {
			return n, true
		}
		if n.Equal(origin) {
			break
		}
	}
	return domain.Name{}, false
}

// negative builds a NODATA or NXDOMAIN result with the zone SOA in the
// authority section. Redirections already followed stay in the answer.
func (r *Resolver) negative(origin domain.Name, status domain.ResolutionStatus, chain []domain.ResourceRecord) domain.ResolutionResult {
	result := domain.ResolutionResult{Status: status, Answers: chain}
	if soa, ok := r.store.SOA(origin); ok {
		result.Authority = []domain.ResourceRecord{soa}
	}
	return result
}

// synthesizeCNAME builds the RFC 6672 §3.2 CNAME that accompanies a DNAME
// answer, pointing qname at the substituted name.
func (r *Resolver) synthesizeCNAME(owner, target domain.Name, ttl uint32, class domain.RRClass) (domain.ResourceRecord, error) {
	data, err := rrdata.Encode(domain.RRTypeCNAME, target.String())
	if err != nil {
		return domain.ResourceRecord{}, err
	}
	return domain.NewResourceRecord(owner, domain.RRTypeCNAME, class, ttl, data, target.String())
}

// pathFromOrigin lists the strict ancestors of qname from just below the
// origin down to qname's parent, top-down. The origin itself is included
// first so a DNAME at the apex still applies; its NS records are the zone's
// own and never a delegation.
func pathFromOrigin(origin, qname domain.Name) []domain.Name {
	if !qname.IsSubdomainOf(origin) {
		return nil
	}
	var nodes []domain.Name
	for n := qname.Parent(); n.IsUnder(origin); n = n.Parent() {
		nodes = append(nodes, n)
		if n.Equal(origin) {
			break
		}
	}
	// reverse to top-down order
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
	return nodes
}

// withOwner copies a record with a different owner name, used when a
// wildcard match is synthesized at the query name.
func withOwner(rr domain.ResourceRecord, owner domain.Name) domain.ResourceRecord {
	rr.Name = owner
	return rr
}
