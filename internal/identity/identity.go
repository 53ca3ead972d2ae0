package identity

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/example/p2h/backend/internal/models"
)

// Identity is the authenticated caller as seen by the core components.
type Identity struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Role       string `json:"role"`
}

// Supervisory reports whether this identity may finalize approvals.
func (i Identity) Supervisory() bool {
	return models.Supervisory(i.Role)
}

// Provider supplies the current identity. Components that gate behavior on
// the caller receive a Provider explicitly instead of reading ambient
// session state.
type Provider interface {
	Current(ctx context.Context) (Identity, error)
}

// Static is a Provider that always returns a fixed identity.
type Static struct {
	Identity Identity
}

// Current implements Provider.
func (s Static) Current(context.Context) (Identity, error) {
	return s.Identity, nil
}

// ErrInvalidToken is returned for absent, malformed, or expired tokens.
var ErrInvalidToken = errors.New("invalid session token")

type claims struct {
	EmployeeID string `json:"employeeId"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC-signed session tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager constructs a manager with the signing secret and token
// lifetime.
func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token for the given user.
func (m *TokenManager) Issue(user models.User) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		EmployeeID: user.EmployeeID,
		Name:       user.Name,
		Role:       user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	})
	signed, err := token.SignedString(m.secret)
	return signed, errors.WithStack(err)
}

// Verify parses a token and returns the identity it carries.
func (m *TokenManager) Verify(tokenString string) (Identity, error) {
	var c claims
	token, err := jwt.ParseWithClaims(tokenString, &c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	return Identity{EmployeeID: c.EmployeeID, Name: c.Name, Role: c.Role}, nil
}
