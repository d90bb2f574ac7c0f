// Package store persists accounts, feedback and orders with gorm on SQLite.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"foodshare/models"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrDuplicateName = errors.New("store: name already exists")
)

// Store is the account store. All operations are single-statement or
// single-row writes; there are no multi-document transactions.
type Store struct {
	db      *gorm.DB
	timeout time.Duration
}

// Open connects to the SQLite database at path and migrates the schema.
// timeout bounds every store call.
func Open(path string, timeout time.Duration, log *logrus.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		TranslateError: true,
		// order references are weak
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite has a single writer; one connection avoids SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Deliverer{},
		&models.FeedbackEntry{},
		&models.Order{},
	); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Store{db: db, timeout: timeout}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// CreateAccount inserts acct in one statement. The unique index on name
// makes concurrent registrations of the same name fail with ErrDuplicateName.
func (s *Store) CreateAccount(ctx context.Context, acct models.Account) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.WithContext(ctx).Create(acct).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicateName
		}
		return fmt.Errorf("create %s: %w", acct.AccountRole(), err)
	}
	return nil
}

// FindByID loads the account of role with the given id
func (s *Store) FindByID(ctx context.Context, role models.Role, id string) (models.Account, error) {
	return s.findOne(ctx, role, "id = ?", id)
}

// FindByName loads the account of role with the given name
func (s *Store) FindByName(ctx context.Context, role models.Role, name string) (models.Account, error) {
	return s.findOne(ctx, role, "name = ?", name)
}

func (s *Store) findOne(ctx context.Context, role models.Role, query string, arg string) (models.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	acct := models.NewAccount(role)
	err := s.db.WithContext(ctx).
		Preload("Feedback", func(db *gorm.DB) *gorm.DB {
			return db.Order("feedback_entries.id ASC")
		}).
		Preload(orderRelation(role)).
		Where(query, arg).
		First(acct).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", role, err)
	}
	normalize(acct)
	return acct, nil
}

// ListNames returns every account name of role in creation order
func (s *Store) ListNames(ctx context.Context, role models.Role) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	names := []string{}
	err := s.db.WithContext(ctx).
		Model(models.NewAccount(role)).
		Order("created_at ASC").
		Pluck("name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("list %s names: %w", role, err)
	}
	return names, nil
}

// AppendFeedback adds entry to the feedback of the role account named
// targetName. The append is a single row insert, so concurrent appends
// never overwrite each other.
func (s *Store) AppendFeedback(ctx context.Context, role models.Role, targetName string, entry models.FeedbackEntry) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var ids []string
	err := s.db.WithContext(ctx).
		Model(models.NewAccount(role)).
		Where("name = ?", targetName).
		Limit(1).
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("find feedback target: %w", err)
	}
	if len(ids) == 0 {
		return ErrNotFound
	}

	entry.ID = 0
	entry.OwnerID = ids[0]
	entry.OwnerType = string(role)
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return fmt.Errorf("append feedback: %w", err)
	}
	return nil
}

// CreateOrder stores an order
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.db.WithContext(ctx).Create(order).Error; err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func orderRelation(role models.Role) string {
	if role == models.RoleDeliverer {
		return "AcceptedOrders"
	}
	return "OrderHistory"
}

// normalize replaces nil sequences so documents always carry empty arrays
func normalize(acct models.Account) {
	switch a := acct.(type) {
	case *models.User:
		if a.Feedback == nil {
			a.Feedback = []models.FeedbackEntry{}
		}
		if a.SavedFood == nil {
			a.SavedFood = []string{}
		}
		if a.OrderHistory == nil {
			a.OrderHistory = []models.Order{}
		}
	case *models.Deliverer:
		if a.Feedback == nil {
			a.Feedback = []models.FeedbackEntry{}
		}
		if a.AcceptedOrders == nil {
			a.AcceptedOrders = []models.Order{}
		}
	}
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		strings.Contains(err.Error(), "UNIQUE constraint failed")
}
