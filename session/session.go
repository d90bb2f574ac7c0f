// Package session issues and verifies the role-tagged identity cookies.
//
// A login sets exactly one of two cookies, loginUser or loginDeliverer. The
// value is a signed token naming the account id and role, valid for a fixed
// window. There is no server-side session table, so a cookie can only expire;
// it cannot be revoked.
package session

import (
	"errors"
	"net/http"
	"time"

	"foodshare/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	UserCookie      = "loginUser"
	DelivererCookie = "loginDeliverer"

	DefaultTTL = 100 * time.Minute
)

var ErrInvalidCookie = errors.New("session: invalid identity cookie")

// CookieName returns the identity cookie used for role
func CookieName(role models.Role) string {
	if role == models.RoleDeliverer {
		return DelivererCookie
	}
	return UserCookie
}

// Claims is the payload of an identity cookie. The account id is the subject.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// Ticket is an issued identity cookie
type Ticket struct {
	Identity  models.Identity
	Value     string
	ExpiresAt time.Time
	TTL       time.Duration
}

// Cookie renders the ticket as an HttpOnly, SameSite=Lax cookie
func (t Ticket) Cookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName(t.Identity.Role),
		Value:    t.Value,
		Path:     "/",
		Expires:  t.ExpiresAt,
		MaxAge:   int(t.TTL.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Manager signs and verifies identity cookies
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret []byte, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{secret: secret, ttl: ttl, now: time.Now}
}

// Issue creates a ticket for the account, expiring ttl from now
func (m *Manager) Issue(role models.Role, accountID string) (Ticket, error) {
	now := m.now()
	expires := now.Add(m.ttl)
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	value, err := token.SignedString(m.secret)
	if err != nil {
		return Ticket{}, err
	}
	return Ticket{
		Identity:  models.Identity{Role: role, AccountID: accountID},
		Value:     value,
		ExpiresAt: expires,
		TTL:       m.ttl,
	}, nil
}

// Verify checks a cookie value presented for role and returns the account id
func (m *Manager) Verify(role models.Role, value string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(value, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !token.Valid {
		return "", ErrInvalidCookie
	}
	if claims.Role != role {
		return "", ErrInvalidCookie
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", ErrInvalidCookie
	}
	return claims.Subject, nil
}
