package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"foodshare/models"
	"foodshare/store"
	"foodshare/validation"

	"github.com/sirupsen/logrus"
)

const (
	minRating = 1
	maxRating = 5
)

// FeedbackStore reads raters and appends feedback to targets
type FeedbackStore interface {
	FindByID(ctx context.Context, role models.Role, id string) (models.Account, error)
	AppendFeedback(ctx context.Context, role models.Role, targetName string, entry models.FeedbackEntry) error
}

type FeedbackService struct {
	accounts FeedbackStore
	log      *logrus.Logger
}

func NewFeedbackService(accounts FeedbackStore, log *logrus.Logger) *FeedbackService {
	return &FeedbackService{accounts: accounts, log: log}
}

// Submit records a rating from rater on the account named targetName. Users
// rate deliverers and deliverers rate users, so the target is looked up in
// the collection opposite to the rater's role. The rater's current name is
// copied into the entry.
func (s *FeedbackService) Submit(ctx context.Context, rater models.Identity, targetName, rating, msg string) error {
	entry := s.log.WithFields(logrus.Fields{"action": "make_comment", "role": rater.Role})

	if rater.IsAnonymous() || !rater.Role.Valid() {
		return ErrUnauthenticated
	}

	score, err := parseRating(rating)
	if err != nil {
		return err
	}

	author, err := s.accounts.FindByID(ctx, rater.Role, rater.AccountID)
	if errors.Is(err, store.ErrNotFound) {
		entry.WithField("account_id", rater.AccountID).Warn("rater no longer exists")
		return ErrUnauthenticated
	}
	if err != nil {
		entry.WithError(err).Error("failed to load rater")
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	target := rater.Role.Opposite()
	err = s.accounts.AppendFeedback(ctx, target, targetName, models.FeedbackEntry{
		Rating: score,
		MadeBy: author.AccountName(),
		Msg:    msg,
	})
	if errors.Is(err, store.ErrNotFound) {
		entry.WithField("target", targetName).Info("feedback target not found")
		return ErrTargetNotFound
	}
	if err != nil {
		entry.WithError(err).Error("failed to append feedback")
		return fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}

	entry.WithFields(logrus.Fields{"target": targetName, "target_role": target}).Info("feedback recorded")
	return nil
}

func parseRating(raw string) (float64, error) {
	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(score) || score < minRating || score > maxRating {
		return 0, &ValidationError{Violations: []validation.Violation{{
			Field:   "rating",
			Message: fmt.Sprintf("Enter a rating from %d to %d", minRating, maxRating),
		}}}
	}
	return score, nil
}
