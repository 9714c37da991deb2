// Package access decides which staff roles may view which dashboard routes.
//
// A Policy is an immutable table of rules. Each rule maps a route pattern
// to the set of roles permitted to view it. Paths that no rule matches are
// denied.
package access

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/spec-kit/clinic-pos/internal/domain"
)

// Rule grants the listed roles access to routes matching Pattern.
//
// Pattern segments separated by "/" match literally, except that a segment
// starting with ":" matches any single segment. A trailing "/*" extends the
// match to the prefix itself and every path below it.
type Rule struct {
	Pattern string        `yaml:"pattern"`
	Roles   []domain.Role `yaml:"roles"`
}

// Checker is the capability consumed by guards.
type Checker interface {
	HasAccess(path string, role domain.Role) bool
}

// Policy evaluates access rules. The zero value denies everything.
type Policy struct {
	rules []compiledRule
}

type compiledRule struct {
	pattern  string
	segments []string
	subtree  bool
	literals int
	params   int
	roles    map[domain.Role]struct{}
}

// NewPolicy compiles rules into a Policy.
func NewPolicy(rules []Rule) (*Policy, error) {
	seen := make(map[string]struct{}, len(rules))
	compiled := make([]compiledRule, 0, len(rules))
	for _, r := range rules {
		cr, err := compileRule(r)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[cr.pattern]; dup {
			return nil, fmt.Errorf("access: duplicate pattern %q", r.Pattern)
		}
		seen[cr.pattern] = struct{}{}
		compiled = append(compiled, cr)
	}

	sort.SliceStable(compiled, func(i, j int) bool {
		return moreSpecific(compiled[i], compiled[j])
	})
	return &Policy{rules: compiled}, nil
}

// MustPolicy is NewPolicy that panics on error. Intended for static tables.
func MustPolicy(rules []Rule) *Policy {
	p, err := NewPolicy(rules)
	if err != nil {
		panic(err)
	}
	return p
}

// HasAccess reports whether role may view path. Empty paths, invalid roles
// and paths without a matching rule are denied.
func (p *Policy) HasAccess(path string, role domain.Role) bool {
	if p == nil || !role.Valid() {
		return false
	}
	segments, ok := splitPath(path)
	if !ok {
		return false
	}
	for i := range p.rules {
		if p.rules[i].matches(segments) {
			_, allowed := p.rules[i].roles[role]
			return allowed
		}
	}
	return false
}

// Match returns the pattern of the rule governing path, if any.
func (p *Policy) Match(path string) (string, bool) {
	if p == nil {
		return "", false
	}
	segments, ok := splitPath(path)
	if !ok {
		return "", false
	}
	for i := range p.rules {
		if p.rules[i].matches(segments) {
			return p.rules[i].pattern, true
		}
	}
	return "", false
}

// Rules returns the policy table ordered from most to least specific.
func (p *Policy) Rules() []Rule {
	if p == nil {
		return nil
	}
	out := make([]Rule, 0, len(p.rules))
	for _, cr := range p.rules {
		roles := make([]domain.Role, 0, len(cr.roles))
		for _, r := range domain.AllRoles {
			if _, ok := cr.roles[r]; ok {
				roles = append(roles, r)
			}
		}
		out = append(out, Rule{Pattern: cr.pattern, Roles: roles})
	}
	return out
}

func compileRule(r Rule) (compiledRule, error) {
	raw := strings.TrimSpace(r.Pattern)
	if !strings.HasPrefix(raw, "/") {
		return compiledRule{}, fmt.Errorf("access: pattern %q must start with /", r.Pattern)
	}

	cr := compiledRule{roles: make(map[domain.Role]struct{}, len(r.Roles))}
	if raw == "/*" || strings.HasSuffix(raw, "/*") {
		cr.subtree = true
		raw = strings.TrimSuffix(raw, "*")
	}
	segments, ok := splitPath(raw)
	if !ok {
		return compiledRule{}, fmt.Errorf("access: invalid pattern %q", r.Pattern)
	}
	for _, seg := range segments {
		switch {
		case strings.Contains(seg, "*"):
			return compiledRule{}, fmt.Errorf("access: wildcard only allowed as trailing /* in %q", r.Pattern)
		case strings.HasPrefix(seg, ":"):
			if len(seg) == 1 {
				return compiledRule{}, fmt.Errorf("access: unnamed parameter in %q", r.Pattern)
			}
			cr.params++
		default:
			cr.literals++
		}
	}
	cr.segments = segments
	cr.pattern = "/" + strings.Join(segments, "/")
	if cr.subtree {
		cr.pattern = strings.TrimSuffix(cr.pattern, "/") + "/*"
	}

	if len(r.Roles) == 0 {
		return compiledRule{}, fmt.Errorf("access: pattern %q grants no roles", r.Pattern)
	}
	for _, role := range r.Roles {
		if !role.Valid() {
			return compiledRule{}, fmt.Errorf("access: pattern %q: unknown role %q", r.Pattern, role)
		}
		cr.roles[role] = struct{}{}
	}
	return cr, nil
}

func (cr *compiledRule) matches(segments []string) bool {
	if len(segments) < len(cr.segments) {
		return false
	}
	if len(segments) > len(cr.segments) && !cr.subtree {
		return false
	}
	for i, seg := range cr.segments {
		if strings.HasPrefix(seg, ":") {
			continue
		}
		if seg != segments[i] {
			return false
		}
	}
	return true
}

func moreSpecific(a, b compiledRule) bool {
	if a.literals != b.literals {
		return a.literals > b.literals
	}
	if a.params != b.params {
		return a.params < b.params
	}
	if a.subtree != b.subtree {
		return !a.subtree
	}
	return a.pattern < b.pattern
}

// splitPath normalises a route into its segments. Dot segments are
// resolved, so "/a/b/../c" yields [a c] and nothing climbs above the root.
// The root path yields an empty, valid slice.
func splitPath(raw string) ([]string, bool) {
	if i := strings.IndexAny(raw, "?#"); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)
	if raw == "" || !strings.HasPrefix(raw, "/") {
		return nil, false
	}
	cleaned := path.Clean(raw)
	if cleaned == "/" {
		return []string{}, true
	}
	return strings.Split(strings.TrimPrefix(cleaned, "/"), "/"), true
}
