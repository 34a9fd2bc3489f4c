package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/davidnhn/book-social-network/services/book-network/internal/repository"
	"github.com/davidnhn/book-social-network/shared/auth"
)

// SessionUsecase turns a bearer token into an Identity.
type SessionUsecase interface {
	Verify(ctx context.Context, token string) (auth.Identity, error)
}

type sessionUsecase struct {
	userRepo repository.UserRepository
	jwtAuth  *auth.JWTAuthenticator
}

func NewSessionUsecase(userRepo repository.UserRepository, jwtAuth *auth.JWTAuthenticator) SessionUsecase {
	return &sessionUsecase{
		userRepo: userRepo,
		jwtAuth:  jwtAuth,
	}
}

// Verify checks signature and expiry, then requires the subject to name an existing account.
// Every rejection wraps ErrInvalidSession.
func (u *sessionUsecase) Verify(ctx context.Context, token string) (auth.Identity, error) {
	claims, err := u.jwtAuth.ValidateToken(token)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	if claims.Subject == "" {
		return auth.Identity{}, fmt.Errorf("%w: missing subject", ErrInvalidSession)
	}

	user, err := u.userRepo.GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return auth.Identity{}, fmt.Errorf("%w: unknown subject", ErrInvalidSession)
		}

		return auth.Identity{}, err
	}

	if user.Email != claims.Subject {
		return auth.Identity{}, fmt.Errorf("%w: subject mismatch", ErrInvalidSession)
	}

	return auth.Identity{
		UserID:      user.ID.Hex(),
		Email:       user.Email,
		FullName:    claims.FullName,
		Authorities: claims.Authorities,
	}, nil
}
