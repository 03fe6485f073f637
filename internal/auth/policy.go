// File path: internal/auth/policy.go

// Package auth decides what a named caller may do to an experiment. Identity
// arrives as a bare username; whether that user is an administrator is this
// package's call, never the caller's claim.
package auth

import (
	"os"
	"strings"

	"github.com/snvbench/benchdb/internal/bench"
)

// Principal names the caller of a mutating operation.
type Principal struct {
	UserID   *int64
	Username string
}

// Policy answers authorization questions against a static admin roster.
type Policy struct {
	admins map[string]struct{}
}

// NewPolicy builds a policy from a list of admin usernames.
func NewPolicy(admins []string) *Policy {
	set := make(map[string]struct{}, len(admins))
	for _, name := range admins {
		name = strings.ToLower(strings.TrimSpace(name))
		if name != "" {
			set[name] = struct{}{}
		}
	}
	return &Policy{admins: set}
}

// NewPolicyFromEnv reads the comma-separated BENCHDB_ADMINS variable.
func NewPolicyFromEnv() *Policy {
	return NewPolicy(strings.Split(os.Getenv("BENCHDB_ADMINS"), ","))
}

// IsAdmin reports whether the principal is on the admin roster.
func (p *Policy) IsAdmin(principal Principal) bool {
	_, ok := p.admins[strings.ToLower(strings.TrimSpace(principal.Username))]
	return ok
}

// AuthorizeDelete checks whether the principal may delete the experiment.
// Admins may delete anything; owners may delete their own rows. Rows with no
// recorded owner are admin-only: nobody can claim them.
func (p *Policy) AuthorizeDelete(principal Principal, exp bench.ExperimentDetail) error {
	if p.IsAdmin(principal) {
		return nil
	}
	if exp.OwnerID == nil && exp.OwnerUsername == "" {
		return &bench.UnauthorizedError{Username: principal.Username, Operation: "delete ownerless experiment"}
	}
	if principal.UserID != nil && exp.OwnerID != nil && *principal.UserID == *exp.OwnerID {
		return nil
	}
	if principal.Username != "" && strings.EqualFold(principal.Username, exp.OwnerUsername) {
		return nil
	}
	return &bench.UnauthorizedError{Username: principal.Username, Operation: "delete experiment"}
}

// AuthorizeVisibilityChange restricts visibility toggles to admins.
func (p *Policy) AuthorizeVisibilityChange(principal Principal) error {
	if p.IsAdmin(principal) {
		return nil
	}
	return &bench.UnauthorizedError{Username: principal.Username, Operation: "change experiment visibility"}
}
