package middleware

import (
	"net/http"

	"foodshare/models"
	"foodshare/session"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const identitiesKey = "identities"

// Auth resolves identity cookies for gated routes
type Auth struct {
	sessions *session.Manager
	accounts session.AccountFinder
	log      *logrus.Logger
}

func NewAuth(sessions *session.Manager, accounts session.AccountFinder, log *logrus.Logger) *Auth {
	return &Auth{sessions: sessions, accounts: accounts, log: log}
}

// ResolveIdentity checks the request's identity cookies once and stores the
// result in the context for the handlers behind it
func (a *Auth) ResolveIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		ids := session.Resolve(c.Request.Context(), a.sessions, a.accounts, func(name string) (string, bool) {
			v, err := c.Cookie(name)
			return v, err == nil
		})
		for _, role := range []models.Role{models.RoleUser, models.RoleDeliverer} {
			if _, _, err := ids.For(role); ids.Presented(role) && err != nil {
				a.log.WithFields(logrus.Fields{"role": role, "path": c.Request.URL.Path}).
					WithError(err).Warn("rejected identity cookie")
			}
		}
		c.Set(identitiesKey, ids)
		c.Next()
	}
}

// RoleRequired rejects the request with a 400 and denial unless the role's
// identity cookie is present, valid and names an existing account
func RoleRequired(role models.Role, denial string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, err := GetIdentities(c).For(role); err != nil {
			c.String(http.StatusBadRequest, denial)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetIdentities returns what ResolveIdentity found; empty when it did not run
func GetIdentities(c *gin.Context) session.Identities {
	val, ok := c.Get(identitiesKey)
	if !ok {
		return session.Identities{}
	}
	ids, _ := val.(session.Identities)
	return ids
}

// GetAccount returns the account proven by the role's cookie
func GetAccount(c *gin.Context, role models.Role) models.Account {
	_, acct, _ := GetIdentities(c).For(role)
	return acct
}
