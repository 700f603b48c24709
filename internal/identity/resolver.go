// Package identity turns an opaque signed credential into a request
// principal. Verification is pure: signature and expiry are checked against
// the shared secret, roles come from the token claims, and no database is
// consulted on the hot path. Staleness of role claims is bounded by token
// expiry, which the issuing service keeps short.
package identity

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/gearshare/rental-service/internal/models"
)

var ErrInvalidCredential = errors.New("invalid credential")

// Claims carries identity and role information inside the token. Older
// tokens encode the role as a single `role` string or an `is_admin` flag;
// newer ones use the `roles` list. The resolver accepts all three shapes and
// normalizes them into one role set so downstream code never has to.
type Claims struct {
	UserID  string   `json:"uid,omitempty"`
	Roles   []string `json:"roles,omitempty"`
	Role    string   `json:"role,omitempty"`
	IsAdmin bool     `json:"is_admin,omitempty"`
	jwt.RegisteredClaims
}

type Resolver struct {
	secret []byte
}

func NewResolver(secret string) *Resolver {
	return &Resolver{secret: []byte(secret)}
}

// Resolve verifies the credential and derives the principal for this
// request. Fails with ErrInvalidCredential if the token is absent,
// malformed, expired, or carries a bad signature.
func (r *Resolver) Resolve(token string) (models.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return models.Principal{}, fmt.Errorf("%w: missing token", ErrInvalidCredential)
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	if !parsed.Valid {
		return models.Principal{}, ErrInvalidCredential
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return models.Principal{}, fmt.Errorf("%w: no subject", ErrInvalidCredential)
	}

	return models.Principal{UserID: userID, Roles: rolesFromClaims(claims)}, nil
}

func rolesFromClaims(c *Claims) []models.Role {
	seen := make(map[models.Role]bool)
	var roles []models.Role

	add := func(name string) {
		r, ok := normalizeRole(name)
		if !ok || seen[r] {
			return
		}
		seen[r] = true
		roles = append(roles, r)
	}

	for _, name := range c.Roles {
		add(name)
	}
	add(c.Role)
	if c.IsAdmin {
		add(string(models.RoleAdmin))
	}

	// An authenticated user with no role claim can still rent.
	if len(roles) == 0 {
		roles = append(roles, models.RoleRenter)
	}
	return roles
}

func normalizeRole(name string) (models.Role, bool) {
	switch models.Role(strings.ToLower(strings.TrimSpace(name))) {
	case models.RoleGuest:
		return models.RoleGuest, true
	case models.RoleRenter, "user":
		return models.RoleRenter, true
	case models.RoleOwner:
		return models.RoleOwner, true
	case models.RoleAdmin:
		return models.RoleAdmin, true
	}
	return "", false
}
