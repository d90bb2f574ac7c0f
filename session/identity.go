package session

import (
	"context"
	"errors"

	"foodshare/models"
)

var (
	ErrNoIdentity        = errors.New("session: no identity cookie")
	ErrAmbiguousIdentity = errors.New("session: both identity cookies presented")
)

// AccountFinder loads an account by id
type AccountFinder interface {
	FindByID(ctx context.Context, role models.Role, id string) (models.Account, error)
}

// Claim is the outcome of checking one presented identity cookie. Err is set
// when the cookie was present but its token or account could not be trusted.
type Claim struct {
	Identity models.Identity
	Account  models.Account
	Err      error
}

// Identities holds every identity cookie a request presented
type Identities struct {
	claims map[models.Role]Claim
}

var roles = []models.Role{models.RoleUser, models.RoleDeliverer}

// Resolve checks the loginUser and loginDeliverer cookies returned by
// lookup. Each present cookie is verified and its account fetched; failures
// are kept so gated resources deny access instead of treating the request
// as anonymous. Other cookies are ignored.
func Resolve(ctx context.Context, m *Manager, finder AccountFinder, lookup func(name string) (string, bool)) Identities {
	ids := Identities{claims: make(map[models.Role]Claim, 2)}
	for _, role := range roles {
		value, ok := lookup(CookieName(role))
		if !ok {
			continue
		}
		ids.claims[role] = check(ctx, m, finder, role, value)
	}
	return ids
}

func check(ctx context.Context, m *Manager, finder AccountFinder, role models.Role, value string) Claim {
	id, err := m.Verify(role, value)
	if err != nil {
		return Claim{Err: err}
	}
	acct, err := finder.FindByID(ctx, role, id)
	if err != nil {
		return Claim{Err: errors.Join(ErrInvalidCookie, err)}
	}
	return Claim{Identity: models.Identity{Role: role, AccountID: id}, Account: acct}
}

// For returns the identity and account proven by the role's cookie
func (ids Identities) For(role models.Role) (models.Identity, models.Account, error) {
	c, ok := ids.claims[role]
	if !ok {
		return models.Identity{}, nil, ErrNoIdentity
	}
	if c.Err != nil {
		return models.Identity{}, nil, c.Err
	}
	return c.Identity, c.Account, nil
}

// Single returns the only identity presented. A request carrying both
// identity cookies is rejected rather than resolved by precedence.
func (ids Identities) Single() (models.Identity, models.Account, error) {
	switch len(ids.claims) {
	case 0:
		return models.Identity{}, nil, ErrNoIdentity
	case 1:
		for role := range ids.claims {
			return ids.For(role)
		}
	}
	return models.Identity{}, nil, ErrAmbiguousIdentity
}

// Presented reports whether the role's cookie was sent at all
func (ids Identities) Presented(role models.Role) bool {
	_, ok := ids.claims[role]
	return ok
}
