package origins

import (
	"slices"
	"strings"
)

// A Matcher represents a set of origin patterns.
// The zero value is an empty set ready to use.
type Matcher struct {
	// exact holds the raw form of patterns that encompass a single origin;
	// membership is decided by plain (case-sensitive) string comparison.
	exact map[string]struct{}
	// wildcards holds patterns that contain a subdomain or port wildcard,
	// in insertion order.
	wildcards []Pattern
}

// Add adds p to m.
func (m *Matcher) Add(p Pattern) {
	if p.IsExact() {
		if m.exact == nil {
			m.exact = make(map[string]struct{})
		}
		m.exact[p.Raw] = struct{}{}
		return
	}
	for _, q := range m.wildcards {
		if q.Raw == p.Raw {
			return
		}
	}
	m.wildcards = append(m.wildcards, p)
}

// Contains reports whether origin is encompassed by m.
func (m *Matcher) Contains(origin string) bool {
	if _, found := m.exact[origin]; found {
		return true
	}
	if len(m.wildcards) == 0 {
		return false
	}
	o, ok := Parse(origin)
	if !ok {
		return false
	}
	for i := range m.wildcards {
		if m.wildcards[i].matches(&o) {
			return true
		}
	}
	return false
}

// IsEmpty reports whether m contains no patterns.
func (m *Matcher) IsEmpty() bool {
	return len(m.exact) == 0 && len(m.wildcards) == 0
}

// Elems returns the raw patterns contained in m, sorted.
func (m *Matcher) Elems() []string {
	res := make([]string, 0, len(m.exact)+len(m.wildcards))
	for raw := range m.exact {
		res = append(res, raw)
	}
	for _, p := range m.wildcards {
		res = append(res, p.Raw)
	}
	slices.Sort(res)
	return res
}

func (p *Pattern) matches(o *Origin) bool {
	if o.Scheme != p.Scheme {
		return false
	}
	if p.Port != AnyPort && o.Port != p.Port {
		return false
	}
	if p.Kind != ArbitrarySubdomains {
		return o.Host == p.Host
	}
	// At least one label must precede the base domain.
	if len(o.Host) <= len(p.Host) {
		return false
	}
	sub, found := strings.CutSuffix(o.Host, p.Host)
	return found && len(sub) >= 2 && sub[len(sub)-1] == labelSep
}
