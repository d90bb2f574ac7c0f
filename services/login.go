package services

import (
	"context"
	"errors"

	"foodshare/models"
	"foodshare/session"
	"foodshare/store"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AccountLookup finds an account by its name within a role's collection
type AccountLookup interface {
	FindByName(ctx context.Context, role models.Role, name string) (models.Account, error)
}

type SessionService struct {
	accounts AccountLookup
	sessions *session.Manager
	log      *logrus.Logger

	// compared against when the name is unknown so both failures cost a
	// bcrypt verification
	dummyHash []byte
}

func NewSessionService(accounts AccountLookup, sessions *session.Manager, hashCost int, log *logrus.Logger) *SessionService {
	dummy, err := bcrypt.GenerateFromPassword([]byte("foodshare-dummy-password"), hashCost)
	if err != nil {
		// only fails for an out-of-range cost
		dummy, _ = bcrypt.GenerateFromPassword([]byte("foodshare-dummy-password"), bcrypt.DefaultCost)
	}
	return &SessionService{accounts: accounts, sessions: sessions, log: log, dummyHash: dummy}
}

// Login checks name and password against the role's collection and issues
// an identity ticket. Unknown names, wrong passwords and lookup failures all
// return ErrInvalidCredentials.
func (s *SessionService) Login(ctx context.Context, role models.Role, name, password string) (session.Ticket, error) {
	entry := s.log.WithFields(logrus.Fields{"action": "login", "role": role})

	acct, err := s.accounts.FindByName(ctx, role, name)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			entry.WithError(err).Error("account lookup failed")
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return session.Ticket{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordDigest()), []byte(password)); err != nil {
		entry.Info("invalid credentials")
		return session.Ticket{}, ErrInvalidCredentials
	}

	ticket, err := s.sessions.Issue(role, acct.AccountID())
	if err != nil {
		entry.WithError(err).Error("failed to sign identity cookie")
		return session.Ticket{}, err
	}

	entry.WithField("account_id", acct.AccountID()).Info("login successful")
	return ticket, nil
}
