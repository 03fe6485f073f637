// File path: internal/auth/policy_test.go
package auth

import (
	"testing"

	"github.com/snvbench/benchdb/internal/bench"
)

func int64p(v int64) *int64 { return &v }

func TestIsAdmin(t *testing.T) {
	policy := NewPolicy([]string{"Alice", " bob ", ""})
	if !policy.IsAdmin(Principal{Username: "alice"}) {
		t.Fatal("alice should be admin regardless of case")
	}
	if !policy.IsAdmin(Principal{Username: "bob"}) {
		t.Fatal("bob should be admin despite padding in roster")
	}
	if policy.IsAdmin(Principal{Username: "mallory"}) {
		t.Fatal("mallory should not be admin")
	}
	if policy.IsAdmin(Principal{}) {
		t.Fatal("anonymous should not be admin")
	}
}

func TestNewPolicyFromEnv(t *testing.T) {
	t.Setenv("BENCHDB_ADMINS", "carol,dave")
	policy := NewPolicyFromEnv()
	if !policy.IsAdmin(Principal{Username: "carol"}) || !policy.IsAdmin(Principal{Username: "dave"}) {
		t.Fatal("env roster not honored")
	}
}

func TestAuthorizeDelete(t *testing.T) {
	policy := NewPolicy([]string{"admin"})
	owned := bench.ExperimentDetail{ID: 1, OwnerID: int64p(42), OwnerUsername: "carol"}
	ownerless := bench.ExperimentDetail{ID: 2}

	if err := policy.AuthorizeDelete(Principal{Username: "admin"}, owned); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := policy.AuthorizeDelete(Principal{Username: "carol"}, owned); err != nil {
		t.Fatalf("owner delete by username: %v", err)
	}
	if err := policy.AuthorizeDelete(Principal{UserID: int64p(42)}, owned); err != nil {
		t.Fatalf("owner delete by id: %v", err)
	}

	err := policy.AuthorizeDelete(Principal{Username: "mallory"}, owned)
	if err == nil || !bench.IsUnauthorized(err) {
		t.Fatalf("stranger delete = %v, want unauthorized", err)
	}

	// Ownerless rows cannot be claimed by non-admins.
	err = policy.AuthorizeDelete(Principal{Username: "carol"}, ownerless)
	if err == nil || !bench.IsUnauthorized(err) {
		t.Fatalf("ownerless delete = %v, want unauthorized", err)
	}
	if err := policy.AuthorizeDelete(Principal{Username: "admin"}, ownerless); err != nil {
		t.Fatalf("admin ownerless delete: %v", err)
	}
}

func TestAuthorizeVisibilityChange(t *testing.T) {
	policy := NewPolicy([]string{"admin"})
	if err := policy.AuthorizeVisibilityChange(Principal{Username: "admin"}); err != nil {
		t.Fatalf("admin visibility: %v", err)
	}
	err := policy.AuthorizeVisibilityChange(Principal{Username: "carol"})
	if err == nil || !bench.IsUnauthorized(err) {
		t.Fatalf("non-admin visibility = %v, want unauthorized", err)
	}
}
