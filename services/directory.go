package services

import (
	"context"
	"fmt"

	"foodshare/models"

	"github.com/sirupsen/logrus"
)

type NameLister interface {
	ListNames(ctx context.Context, role models.Role) ([]string, error)
}

// NameEntry is one row of an account listing
type NameEntry struct {
	Name string `json:"name"`
}

// DirectoryService lists account names for the feedback page
type DirectoryService struct {
	accounts NameLister
	log      *logrus.Logger
}

func NewDirectoryService(accounts NameLister, log *logrus.Logger) *DirectoryService {
	return &DirectoryService{accounts: accounts, log: log}
}

func (s *DirectoryService) Names(ctx context.Context, role models.Role) ([]NameEntry, error) {
	names, err := s.accounts.ListNames(ctx, role)
	if err != nil {
		s.log.WithFields(logrus.Fields{"action": "list_names", "role": role}).WithError(err).Error("failed to list accounts")
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	out := make([]NameEntry, 0, len(names))
	for _, n := range names {
		out = append(out, NameEntry{Name: n})
	}
	return out, nil
}
