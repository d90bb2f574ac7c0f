package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"foodshare/logger"
	"foodshare/models"
	"foodshare/session"
	"foodshare/store"
	"foodshare/validation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	store        *store.Store
	sessions     *session.Manager
	registration *RegistrationService
	login        *SessionService
	feedback     *FeedbackService
	directory    *DirectoryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"), 5*time.Second, log)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	sessions := session.NewManager([]byte("test-secret"), session.DefaultTTL)
	return &fixture{
		store:        s,
		sessions:     sessions,
		registration: NewRegistrationService(s, validation.New(), bcrypt.MinCost, log),
		login:        NewSessionService(s, sessions, bcrypt.MinCost, log),
		feedback:     NewFeedbackService(s, log),
		directory:    NewDirectoryService(s, log),
	}
}

func userForm(name string) validation.Fields {
	return validation.Fields{
		"name":            name,
		"password":        "secret1",
		"password_repeat": "secret1",
		"email":           "a@b.com",
		"phone":           "555",
		"address":         "1 Main St",
		"city":            "Springfield",
		"credit":          "4111",
	}
}

func delivererForm(name string) validation.Fields {
	f := userForm(name)
	f["transportation"] = "bike"
	return f
}

func (f *fixture) register(t *testing.T, role models.Role, fields validation.Fields) models.Identity {
	t.Helper()
	id, err := f.registration.Register(context.Background(), role, fields)
	require.NoError(t, err)
	return models.Identity{Role: role, AccountID: id}
}

func TestRegister_CreatesAccountWithEmptyHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	id, err := f.registration.Register(ctx, models.RoleUser, userForm("alice"))
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	require.NoError(t, err)

	acct, err := f.store.FindByID(ctx, models.RoleUser, id)
	require.NoError(t, err)
	user := acct.(*models.User)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, "4111", user.CreditCardNum)
	assert.Empty(t, user.Feedback)
	assert.Empty(t, user.SavedFood)
	assert.Empty(t, user.OrderHistory)
	assert.NotEqual(t, "secret1", user.PasswordHash)
}

func TestRegister_SecondIdenticalPayloadIsNameTaken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.registration.Register(ctx, models.RoleDeliverer, delivererForm("dana"))
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	_, err = f.registration.Register(ctx, models.RoleDeliverer, delivererForm("dana"))
	assert.ErrorIs(t, err, ErrNameTaken)

	// the same name is free in the other collection
	_, err = f.registration.Register(ctx, models.RoleUser, userForm("dana"))
	assert.NoError(t, err)
}

func TestRegister_PasswordMismatchCreatesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fields := userForm("alice")
	fields["password_repeat"] = "secret2"
	fields["email"] = "broken"

	_, err := f.registration.Register(ctx, models.RoleUser, fields)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Violations, 2)
	assert.Equal(t, "Passwords do not match; Enter a valid email!", verr.Error())

	names, err := f.store.ListNames(ctx, models.RoleUser)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestRegister_ConcurrentSameName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.registration.Register(ctx, models.RoleUser, userForm("twin"))
		}(i)
	}
	wg.Wait()

	var ok, taken int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrNameTaken):
			taken++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, taken)
}

func TestRegister_MultibytePasswordOverBcryptLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	fields := userForm("alice")
	fields["password"] = strings.Repeat("😀", 19)
	fields["password_repeat"] = fields["password"]

	_, err := f.registration.Register(ctx, models.RoleUser, fields)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "password", verr.Violations[0].Field)

	fields["password"] = strings.Repeat("😀", 18)
	fields["password_repeat"] = fields["password"]
	_, err = f.registration.Register(ctx, models.RoleUser, fields)
	require.NoError(t, err)

	_, err = f.login.Login(ctx, models.RoleUser, "alice", fields["password"])
	assert.NoError(t, err)
}

type failingCreator struct{}

func (failingCreator) CreateAccount(context.Context, models.Account) error {
	return errors.New("disk full")
}

func TestRegister_StoreFailure(t *testing.T) {
	svc := NewRegistrationService(failingCreator{}, validation.New(), bcrypt.MinCost, logger.Discard())
	_, err := svc.Register(context.Background(), models.RoleUser, userForm("alice"))
	assert.ErrorIs(t, err, ErrStoreFailure)
}

func TestLogin_IssuesTicketForAccount(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, models.RoleUser, userForm("alice"))

	ticket, err := f.login.Login(context.Background(), models.RoleUser, "alice", "secret1")
	require.NoError(t, err)
	assert.Equal(t, alice, ticket.Identity)

	id, err := f.sessions.Verify(models.RoleUser, ticket.Value)
	require.NoError(t, err)
	assert.Equal(t, alice.AccountID, id)
}

func TestLogin_FailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	f.register(t, models.RoleUser, userForm("alice"))
	ctx := context.Background()

	_, wrongPassword := f.login.Login(ctx, models.RoleUser, "alice", "secret2")
	_, unknownName := f.login.Login(ctx, models.RoleUser, "bob", "secret1")
	_, wrongRole := f.login.Login(ctx, models.RoleDeliverer, "alice", "secret1")

	for _, err := range []error{wrongPassword, unknownName, wrongRole} {
		assert.Equal(t, ErrInvalidCredentials, err)
	}
}

func TestFeedback_UserRatesDeliverer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, models.RoleUser, userForm("alice"))
	f.register(t, models.RoleDeliverer, delivererForm("dana"))

	require.NoError(t, f.feedback.Submit(ctx, alice, "dana", "5", "fast and friendly"))

	acct, err := f.store.FindByName(ctx, models.RoleDeliverer, "dana")
	require.NoError(t, err)
	feedback := acct.(*models.Deliverer).Feedback
	require.Len(t, feedback, 1)
	assert.Equal(t, models.FeedbackEntry{Rating: 5, MadeBy: "alice", Msg: "fast and friendly"},
		models.FeedbackEntry{Rating: feedback[0].Rating, MadeBy: feedback[0].MadeBy, Msg: feedback[0].Msg})
}

func TestFeedback_TargetMustBeInOppositeCollection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := f.register(t, models.RoleUser, userForm("alice"))
	f.register(t, models.RoleUser, userForm("bob"))

	err := f.feedback.Submit(ctx, alice, "bob", "3", "hi")
	assert.ErrorIs(t, err, ErrTargetNotFound)
}

func TestFeedback_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dana := f.register(t, models.RoleDeliverer, delivererForm("dana"))
	f.register(t, models.RoleUser, userForm("alice"))

	assert.ErrorIs(t, f.feedback.Submit(ctx, models.Identity{}, "alice", "4", ""), ErrUnauthenticated)

	ghost := models.Identity{Role: models.RoleDeliverer, AccountID: uuid.NewString()}
	assert.ErrorIs(t, f.feedback.Submit(ctx, ghost, "alice", "4", ""), ErrUnauthenticated)

	for _, rating := range []string{"", "abc", "0", "6", "NaN", "Inf", "-Inf"} {
		var verr *ValidationError
		assert.True(t, errors.As(f.feedback.Submit(ctx, dana, "alice", rating, ""), &verr), rating)
	}
}

func TestFeedback_ConcurrentSubmissions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, models.RoleUser, userForm("alice"))

	const n = 12
	raters := make([]models.Identity, n)
	for i := range raters {
		raters[i] = f.register(t, models.RoleDeliverer, delivererForm(fmt.Sprintf("rider%d", i)))
	}

	var wg sync.WaitGroup
	for i, rater := range raters {
		wg.Add(1)
		go func(i int, rater models.Identity) {
			defer wg.Done()
			assert.NoError(t, f.feedback.Submit(ctx, rater, "alice", "4", fmt.Sprintf("note %d", i)))
		}(i, rater)
	}
	wg.Wait()

	acct, err := f.store.FindByName(ctx, models.RoleUser, "alice")
	require.NoError(t, err)
	feedback := acct.(*models.User).Feedback
	require.Len(t, feedback, n)

	seen := map[string]string{}
	for _, e := range feedback {
		seen[e.Msg] = e.MadeBy
	}
	for i := 0; i < n; i++ {
		assert.Equal(t, fmt.Sprintf("rider%d", i), seen[fmt.Sprintf("note %d", i)])
	}
}

func TestDirectory_Names(t *testing.T) {
	f := newFixture(t)
	f.register(t, models.RoleDeliverer, delivererForm("dana"))

	got, err := f.directory.Names(context.Background(), models.RoleDeliverer)
	require.NoError(t, err)
	assert.Equal(t, []NameEntry{{Name: "dana"}}, got)

	got, err = f.directory.Names(context.Background(), models.RoleUser)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}
