package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/clinic-pos/internal/domain"
)

func TestDefaultPolicyTable(t *testing.T) {
	p := DefaultPolicy()

	for _, rule := range DefaultRules() {
		granted := make(map[domain.Role]bool, len(rule.Roles))
		for _, r := range rule.Roles {
			granted[r] = true
		}
		path := trimSubtree(rule.Pattern)
		subtree := rule.Pattern != path
		for _, role := range domain.AllRoles {
			assert.Equal(t, granted[role], p.HasAccess(path, role), "path=%s role=%s", path, role)
			if subtree {
				assert.Equal(t, granted[role], p.HasAccess(path+"/child/42", role), "below %s for %s", path, role)
			} else {
				assert.False(t, p.HasAccess(path+"/child/42", role), "exact rule %s leaks to children", path)
			}
		}
	}
}

func trimSubtree(pattern string) string {
	if len(pattern) > 2 && pattern[len(pattern)-2:] == "/*" {
		return pattern[:len(pattern)-2]
	}
	return pattern
}

func TestHasAccess_DoctorDeniedPOS(t *testing.T) {
	p := DefaultPolicy()
	assert.False(t, p.HasAccess("/dashboard/pos", domain.RoleDoctor))
	assert.True(t, p.HasAccess("/dashboard/my-sessions", domain.RoleDoctor))
	assert.True(t, p.HasAccess("/dashboard/pos", domain.RoleCashier))
}

func TestHasAccess_UnmatchedIsDenied(t *testing.T) {
	p := DefaultPolicy()
	for _, role := range domain.AllRoles {
		assert.False(t, p.HasAccess("/dashboard/unknown", role))
		assert.False(t, p.HasAccess("/", role))
		assert.False(t, p.HasAccess("/admin", role))
	}
}

func TestHasAccess_InvalidInputs(t *testing.T) {
	p := DefaultPolicy()
	assert.False(t, p.HasAccess("", domain.RoleAdmin))
	assert.False(t, p.HasAccess("dashboard/pos", domain.RoleAdmin))
	assert.False(t, p.HasAccess("/dashboard/pos", domain.Role("janitor")))

	var nilPolicy *Policy
	assert.False(t, nilPolicy.HasAccess("/dashboard", domain.RoleAdmin))
	assert.False(t, (&Policy{}).HasAccess("/dashboard", domain.RoleAdmin))
}

func TestHasAccess_Normalisation(t *testing.T) {
	p := DefaultPolicy()
	assert.True(t, p.HasAccess("/dashboard/pos/", domain.RoleCashier))
	assert.True(t, p.HasAccess("//dashboard//pos", domain.RoleCashier))
	assert.True(t, p.HasAccess("/dashboard/pos?tab=open#top", domain.RoleCashier))
	assert.True(t, p.HasAccess("/dashboard#x", domain.RoleDoctor))
}

func TestHasAccess_DotSegmentsResolved(t *testing.T) {
	p := DefaultPolicy()

	assert.False(t, p.HasAccess("/dashboard/pos/../staff", domain.RoleCashier))
	assert.True(t, p.HasAccess("/dashboard/pos/../staff", domain.RoleAdmin))
	assert.False(t, p.HasAccess("/dashboard/my-sessions/../salaries", domain.RoleDoctor))
	assert.False(t, p.HasAccess("/dashboard/pos/./../../dashboard/reports", domain.RoleCashier))
	assert.True(t, p.HasAccess("/dashboard/./pos/.", domain.RoleCashier))
	assert.False(t, p.HasAccess("/../..", domain.RoleAdmin), "root has no rule")

	pattern, ok := p.Match("/dashboard/pos/../staff/12")
	require.True(t, ok)
	assert.Equal(t, "/dashboard/staff/*", pattern)
}

func TestHasAccess_MostSpecificWins(t *testing.T) {
	p, err := NewPolicy([]Rule{
		{Pattern: "/dashboard/*", Roles: []domain.Role{domain.RoleAdmin, domain.RoleCashier}},
		{Pattern: "/dashboard/reports/:id", Roles: []domain.Role{domain.RoleCashier}},
		{Pattern: "/dashboard/reports/daily", Roles: []domain.Role{domain.RoleAdmin}},
	})
	require.NoError(t, err)

	assert.True(t, p.HasAccess("/dashboard/reports/17", domain.RoleCashier))
	assert.False(t, p.HasAccess("/dashboard/reports/17", domain.RoleAdmin))
	assert.True(t, p.HasAccess("/dashboard/reports/daily", domain.RoleAdmin))
	assert.False(t, p.HasAccess("/dashboard/reports/daily", domain.RoleCashier))
	assert.True(t, p.HasAccess("/dashboard/reports/17/export", domain.RoleAdmin), "falls back to subtree rule")

	pattern, ok := p.Match("/dashboard/reports/17")
	require.True(t, ok)
	assert.Equal(t, "/dashboard/reports/:id", pattern)
}

func TestNewPolicy_Rejects(t *testing.T) {
	cases := map[string][]Rule{
		"relative":  {{Pattern: "dashboard", Roles: []domain.Role{domain.RoleAdmin}}},
		"no roles":  {{Pattern: "/dashboard"}},
		"bad role":  {{Pattern: "/dashboard", Roles: []domain.Role{"nurse"}}},
		"mid star":  {{Pattern: "/dashboard/*/pos", Roles: []domain.Role{domain.RoleAdmin}}},
		"bare :":    {{Pattern: "/dashboard/:", Roles: []domain.Role{domain.RoleAdmin}}},
		"duplicate": {{Pattern: "/a", Roles: []domain.Role{domain.RoleAdmin}}, {Pattern: "/a/", Roles: []domain.Role{domain.RoleAdmin}}},
	}
	for name, rules := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewPolicy(rules)
			assert.Error(t, err)
		})
	}
}

func TestRootSubtreeRule(t *testing.T) {
	p := MustPolicy([]Rule{{Pattern: "/*", Roles: []domain.Role{domain.RoleAdmin}}})
	assert.True(t, p.HasAccess("/", domain.RoleAdmin))
	assert.True(t, p.HasAccess("/anything/at/all", domain.RoleAdmin))
	assert.False(t, p.HasAccess("/anything", domain.RoleDoctor))
}

func TestRulesOrderedBySpecificity(t *testing.T) {
	rules := DefaultPolicy().Rules()
	require.Len(t, rules, len(DefaultRules()))
	assert.Equal(t, "/dashboard", rules[len(rules)-1].Pattern)
}
