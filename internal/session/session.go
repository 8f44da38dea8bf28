package session

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/YelzhanWeb/floreria/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrMalformed    = errors.New("malformed token")
)

// Session is the caller identity handed to API clients at construction.
// The token is opaque to us; only the role claim is read.
type Session struct {
	Token   string
	Role    domain.Role
	Subject string
}

// FromToken decodes the role from a login token without verifying it.
// Signature checks belong to the shop API.
func FromToken(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrMissingToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	role := roleFromClaims(claims)
	subject, _ := claims.GetSubject()
	if subject == "" {
		if email, ok := claims["email"].(string); ok {
			subject = email
		}
	}

	return Session{Token: token, Role: role, Subject: subject}, nil
}

// FromRequest builds a session from the Authorization header.
func FromRequest(r *http.Request) (Session, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return Session{}, ErrMissingToken
	}
	return FromToken(token)
}

// Anonymous returns a session for unauthenticated calls such as login or catalog.
func Anonymous() Session {
	return Session{Role: domain.RoleCustomer}
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Actor names the session in audit logs.
func (s Session) Actor() string {
	if s.Subject != "" {
		return fmt.Sprintf("%s:%s", s.Role, s.Subject)
	}
	return s.Role.String()
}

// role_id wins over role; anything unrecognised is a customer
func roleFromClaims(claims jwt.MapClaims) domain.Role {
	for _, key := range []string{"role_id", "role"} {
		v, ok := claims[key]
		if !ok {
			continue
		}
		if role, ok := parseRole(v); ok {
			return role
		}
	}
	return domain.RoleCustomer
}

func parseRole(v any) (domain.Role, bool) {
	var id int
	switch t := v.(type) {
	case float64:
		id = int(t)
	case string:
		n, err := strconv.Atoi(t)
		if err != nil {
			return 0, false
		}
		id = n
	default:
		return 0, false
	}
	// a zero id counts as absent and lets the next claim decide
	if id == 0 {
		return 0, false
	}
	role := domain.Role(id)
	if !role.Valid() {
		return domain.RoleCustomer, true
	}
	return role, true
}
