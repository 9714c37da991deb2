package access

import "github.com/spec-kit/clinic-pos/internal/domain"

const (
	// LoginRoute is where unauthenticated visitors are sent.
	LoginRoute = "/"
	// DoctorLandingRoute is the post-login landing page for doctors.
	DoctorLandingRoute = "/dashboard/my-sessions"
	// DefaultLandingRoute is the post-login landing page for everyone else.
	DefaultLandingRoute = "/dashboard/pos"
)

var everyone = []domain.Role{domain.RoleAdmin, domain.RolePharmacy, domain.RoleCashier, domain.RoleDoctor}

// DefaultRules is the built-in dashboard table.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "/dashboard", Roles: everyone},
		{Pattern: "/dashboard/pos/*", Roles: []domain.Role{domain.RoleAdmin, domain.RolePharmacy, domain.RoleCashier}},
		{Pattern: "/dashboard/my-sessions/*", Roles: []domain.Role{domain.RoleDoctor}},
		{Pattern: "/dashboard/cashier-sessions/*", Roles: []domain.Role{domain.RoleAdmin, domain.RoleCashier}},
		{Pattern: "/dashboard/inventory/*", Roles: []domain.Role{domain.RoleAdmin, domain.RolePharmacy}},
		{Pattern: "/dashboard/lab-tests/*", Roles: []domain.Role{domain.RoleAdmin, domain.RolePharmacy, domain.RoleDoctor}},
		{Pattern: "/dashboard/procedures/*", Roles: []domain.Role{domain.RoleAdmin, domain.RoleDoctor}},
		{Pattern: "/dashboard/staff/*", Roles: []domain.Role{domain.RoleAdmin}},
		{Pattern: "/dashboard/salaries/*", Roles: []domain.Role{domain.RoleAdmin}},
		{Pattern: "/dashboard/attendance/*", Roles: []domain.Role{domain.RoleAdmin}},
		{Pattern: "/dashboard/reports/*", Roles: []domain.Role{domain.RoleAdmin}},
		{Pattern: "/dashboard/settings/*", Roles: everyone},
	}
}

// DefaultPolicy compiles DefaultRules.
func DefaultPolicy() *Policy {
	return MustPolicy(DefaultRules())
}
