package usecase

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
	"github.com/davidnhn/book-social-network/services/book-network/internal/repository"
	"github.com/davidnhn/book-social-network/shared/auth"
	"github.com/davidnhn/book-social-network/shared/security"
)

// AuthUsecase defines the interface for authentication-related use cases.
type AuthUsecase interface {
	// Register creates a disabled account and emails its activation code.
	Register(ctx context.Context, params RegisterParams) error

	// Authenticate verifies credentials and returns a signed session token.
	Authenticate(ctx context.Context, params AuthenticateParams) (string, error)
}

// RegisterParams defines the parameters for user registration.
type RegisterParams struct {
	Firstname   string
	Lastname    string
	DateOfBirth *time.Time
	Email       string
	Password    string
}

// AuthenticateParams defines the parameters for user login.
type AuthenticateParams struct {
	Email    string
	Password string
}

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrRoleNotInitialized = errors.New("role USER was not initialized")
	ErrBadCredentials     = errors.New("login and / or password is incorrect")
	ErrAccountLocked      = errors.New("user account is locked")
	ErrAccountDisabled    = errors.New("user account is disabled")
)

type authUsecase struct {
	userRepo   repository.UserRepository
	roleRepo   repository.RoleRepository
	transactor repository.Transactor
	activation ActivationUsecase
	jwtAuth    *auth.JWTAuthenticator
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	transactor repository.Transactor,
	activation ActivationUsecase,
	jwtAuth *auth.JWTAuthenticator,
) AuthUsecase {
	return &authUsecase{
		userRepo:   userRepo,
		roleRepo:   roleRepo,
		transactor: transactor,
		activation: activation,
		jwtAuth:    jwtAuth,
	}
}

func (u *authUsecase) Register(ctx context.Context, params RegisterParams) error {
	role, err := u.roleRepo.GetRoleByName(ctx, model.RoleUser)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrRoleNotInitialized
		}

		return err
	}

	passwordHash, err := security.HashPassword(params.Password)
	if err != nil {
		return err
	}

	var (
		user  *model.User
		token *model.ActivationToken
	)
	err = u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		created, err := u.userRepo.CreateUser(ctx, &model.User{
			Firstname:     params.Firstname,
			Lastname:      params.Lastname,
			DateOfBirth:   params.DateOfBirth,
			Email:         params.Email,
			PasswordHash:  passwordHash,
			AccountLocked: false,
			Enabled:       false,
			Roles:         []string{role.Name},
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrUserAlreadyExists
			}

			return err
		}

		issued, err := u.activation.Issue(ctx, created)
		if err != nil {
			return err
		}

		user, token = created, issued
		return nil
	})
	if err != nil {
		return err
	}

	// Sent after commit so an aborted registration never mails a code.
	u.activation.Notify(user, token)

	return nil
}

func (u *authUsecase) Authenticate(ctx context.Context, params AuthenticateParams) (string, error) {
	user, err := u.userRepo.GetUserByEmail(ctx, params.Email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrBadCredentials
		}

		return "", err
	}

	if user.AccountLocked {
		return "", ErrAccountLocked
	}
	if !user.Enabled {
		return "", ErrAccountDisabled
	}

	if ok, err := security.VerifyPassword(params.Password, user.PasswordHash); err != nil {
		return "", err
	} else if !ok {
		return "", ErrBadCredentials
	}

	return u.jwtAuth.GenerateToken(user.Email, user.FullName(), user.Roles)
}
