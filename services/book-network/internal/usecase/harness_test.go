package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
	"github.com/davidnhn/book-social-network/services/book-network/internal/usecase"
	"github.com/davidnhn/book-social-network/shared/auth"
	"github.com/davidnhn/book-social-network/shared/security"
)

const (
	testActivationURL = "http://localhost:4200/activate-account"
	testPassword      = "password123"
)

type harness struct {
	now time.Time

	users    *fakeUserRepo
	roles    *fakeRoleRepo
	tokens   *fakeTokenRepo
	books    *fakeBookRepo
	lending  *fakeLendingRepo
	feedback *fakeFeedbackRepo
	covers   *fakeCoverStore
	tx       *fakeTransactor
	mail     *fakeMailQueue
	jwtAuth  *auth.JWTAuthenticator

	activation usecase.ActivationUsecase
	auth       usecase.AuthUsecase
	session    usecase.SessionUsecase
	lendingUC  usecase.LendingUsecase
	bookUC     usecase.BookUsecase
	feedbackUC usecase.FeedbackUsecase
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	logger := zerolog.Nop()
	h := &harness{
		now:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		users:    newFakeUserRepo(),
		roles:    &fakeRoleRepo{roles: map[string]*model.Role{}},
		tokens:   &fakeTokenRepo{},
		books:    newFakeBookRepo(),
		lending:  &fakeLendingRepo{},
		feedback: &fakeFeedbackRepo{},
		covers:   newFakeCoverStore(),
		tx:       &fakeTransactor{},
		mail:     &fakeMailQueue{},
	}
	clock := func() time.Time { return h.now }

	_, err := h.roles.EnsureRole(context.Background(), model.RoleUser)
	require.NoError(t, err)

	h.jwtAuth = auth.NewJWTAuthenticator([]byte("0123456789abcdef0123456789abcdef"), time.Hour).WithClock(clock)
	h.activation = usecase.NewActivationUsecase(h.users, h.tokens, h.tx, h.mail, usecase.ActivationConfig{
		CodeLength:    6,
		Lifetime:      15 * time.Minute,
		ActivationURL: testActivationURL,
		Now:           clock,
	}, &logger)
	h.auth = usecase.NewAuthUsecase(h.users, h.roles, h.tx, h.activation, h.jwtAuth)
	h.session = usecase.NewSessionUsecase(h.users, h.jwtAuth)
	h.lendingUC = usecase.NewLendingUsecase(h.books, h.lending)
	h.bookUC = usecase.NewBookUsecase(h.books, h.users, h.lending, h.feedback, h.covers, &logger)
	h.feedbackUC = usecase.NewFeedbackUsecase(h.books, h.feedback)

	return h
}

// member stores an enabled account and returns its identity.
func (h *harness) member(t *testing.T, email string) auth.Identity {
	t.Helper()

	hash, err := security.HashPassword(testPassword)
	require.NoError(t, err)

	user := h.users.put(&model.User{
		Firstname:    "Test",
		Lastname:     email,
		Email:        email,
		PasswordHash: hash,
		Enabled:      true,
		Roles:        []string{model.RoleUser},
	})

	return auth.Identity{UserID: user.ID.Hex(), Email: user.Email, Authorities: user.Roles}
}

// identity returns an identity without storing a password, for tests that skip authentication.
func (h *harness) identity(email string) auth.Identity {
	user := h.users.put(&model.User{Firstname: "Test", Lastname: email, Email: email, Enabled: true})
	return auth.Identity{UserID: user.ID.Hex(), Email: user.Email}
}

func (h *harness) book(owner auth.Identity, shareable, archived bool) *model.Book {
	ownerID := mustObjectID(owner.UserID)
	return h.books.put(&model.Book{
		Title:     "Dune",
		Shareable: shareable,
		Archived:  archived,
		OwnerID:   ownerID,
		CreatedBy: ownerID,
	})
}

func mustObjectID(hex string) bson.ObjectID {
	id, err := bson.ObjectIDFromHex(hex)
	if err != nil {
		panic(err)
	}

	return id
}
