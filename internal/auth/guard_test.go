package auth

import (
	"testing"

	"github.com/ndasurveying/dashctl/internal/domain"
)

func TestAuthorizeDeniesAnonymousRegardlessOfRoles(t *testing.T) {
	anon := domain.Session{}

	roleSets := [][]domain.Role{
		nil,
		{domain.RoleAdmin},
		{domain.RoleAdmin, domain.RoleStaff},
		{domain.RoleAdmin, domain.RoleStaff, domain.RoleClient},
	}

	for _, roles := range roleSets {
		err := Authorize(anon, roles...)
		if err == nil {
			t.Fatalf("Authorize(anonymous, %v) granted access", roles)
		}
		if domain.ErrorCode(err) != domain.EUNAUTHORIZED {
			t.Errorf("Authorize(anonymous, %v) code = %q, want %q", roles, domain.ErrorCode(err), domain.EUNAUTHORIZED)
		}
	}
}

func TestAuthorizeRoleMembership(t *testing.T) {
	testCases := []struct {
		name     string
		role     domain.Role
		required []domain.Role
		wantCode string // empty = allowed
	}{
		{"any authenticated when no roles required", domain.RoleClient, nil, ""},
		{"role in singleton set", domain.RoleAdmin, []domain.Role{domain.RoleAdmin}, ""},
		{"role in larger set", domain.RoleStaff, []domain.Role{domain.RoleAdmin, domain.RoleStaff}, ""},
		{"role outside set", domain.RoleClient, []domain.Role{domain.RoleAdmin, domain.RoleStaff}, domain.EFORBIDDEN},
		{"unknown role never matches", domain.Role("superuser"), []domain.Role{domain.RoleAdmin}, domain.EFORBIDDEN},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sess := domain.Session{Token: "tok", Role: tc.role}
			err := Authorize(sess, tc.required...)
			if tc.wantCode == "" {
				if err != nil {
					t.Fatalf("Authorize() = %v, want access granted", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Authorize() granted access, want denial")
			}
			if domain.ErrorCode(err) != tc.wantCode {
				t.Errorf("Authorize() code = %q, want %q", domain.ErrorCode(err), tc.wantCode)
			}
		})
	}
}

func TestIsAuthorized(t *testing.T) {
	if IsAuthorized(domain.Session{}) {
		t.Error("IsAuthorized(anonymous) = true")
	}
	if !IsAuthorized(domain.Session{Token: "tok", Role: domain.RoleClient}) {
		t.Error("IsAuthorized(authenticated, no required roles) = false")
	}
	if IsAuthorized(domain.Session{Token: "tok", Role: domain.RoleClient}, domain.RoleAdmin) {
		t.Error("IsAuthorized(client, admin-only) = true")
	}
}
