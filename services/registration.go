package services

import (
	"context"
	"errors"
	"fmt"

	"foodshare/models"
	"foodshare/store"
	"foodshare/validation"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// AccountCreator persists a new account, failing with store.ErrDuplicateName
// when the name is taken in the role's collection.
type AccountCreator interface {
	CreateAccount(ctx context.Context, acct models.Account) error
}

type RegistrationService struct {
	accounts  AccountCreator
	validator *validation.Validator
	hashCost  int
	log       *logrus.Logger
}

func NewRegistrationService(accounts AccountCreator, v *validation.Validator, hashCost int, log *logrus.Logger) *RegistrationService {
	return &RegistrationService{accounts: accounts, validator: v, hashCost: hashCost, log: log}
}

// Register validates fields and creates an account of role, returning its id.
// There is no existence pre-check: the insert itself fails on a taken name.
func (s *RegistrationService) Register(ctx context.Context, role models.Role, fields validation.Fields) (string, error) {
	entry := s.log.WithFields(logrus.Fields{"action": "register", "role": role})

	if violations := s.validator.Validate(role, fields); len(violations) > 0 {
		entry.WithField("violations", len(violations)).Info("registration rejected")
		return "", &ValidationError{Violations: violations}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(fields["password"]), s.hashCost)
	if err != nil {
		entry.WithError(err).Error("failed to hash password")
		return "", fmt.Errorf("%w: hash password: %w", ErrStoreFailure, err)
	}

	acct := newAccount(role, fields, string(hash))
	if err := s.accounts.CreateAccount(ctx, acct); err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			entry.WithField("name", fields["name"]).Info("name already exists")
			return "", ErrNameTaken
		}
		entry.WithError(err).Error("failed to save account")
		return "", fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	entry.WithField("account_id", acct.AccountID()).Info("sign up successful")
	return acct.AccountID(), nil
}

func newAccount(role models.Role, fields validation.Fields, hash string) models.Account {
	if role == models.RoleDeliverer {
		return &models.Deliverer{
			Name:           fields["name"],
			PasswordHash:   hash,
			Email:          fields["email"],
			Phone:          fields["phone"],
			Address:        fields["address"],
			City:           fields["city"],
			Transportation: fields["transportation"],
			CreditCardNum:  fields["credit"],
			Feedback:       []models.FeedbackEntry{},
		}
	}
	return &models.User{
		Name:          fields["name"],
		PasswordHash:  hash,
		Email:         fields["email"],
		Phone:         fields["phone"],
		Address:       fields["address"],
		City:          fields["city"],
		CreditCardNum: fields["credit"],
		Feedback:      []models.FeedbackEntry{},
		SavedFood:     []string{},
	}
}
