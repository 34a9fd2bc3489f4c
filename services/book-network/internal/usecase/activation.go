package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
	"github.com/davidnhn/book-social-network/services/book-network/internal/repository"
	"github.com/davidnhn/book-social-network/shared/mailer"
	"github.com/davidnhn/book-social-network/shared/security"
)

// ActivationUsecase manages the activation code lifecycle.
type ActivationUsecase interface {
	// Issue creates and stores a fresh code for user. It sends nothing.
	Issue(ctx context.Context, user *model.User) (*model.ActivationToken, error)

	// Notify queues the activation email for token. Delivery failures are logged only.
	Notify(user *model.User, token *model.ActivationToken)

	// Consume activates the account owning code.
	// An expired code triggers a new code and email, then returns ErrActivationTokenExpired.
	Consume(ctx context.Context, code string) error
}

// MailQueue accepts emails for background delivery.
type MailQueue interface {
	Enqueue(email mailer.Email) error
}

// ActivationConfig defines how codes are generated and announced.
type ActivationConfig struct {
	CodeLength    int
	Lifetime      time.Duration
	ActivationURL string

	// Now defaults to time.Now.
	Now func() time.Time

	// GenerateCode defaults to security.GenerateNumericCode.
	GenerateCode func(length int) (string, error)
}

var ErrActivationTokenExpired = errors.New(
	"activation token has expired, a new token has been sent to the same email address",
)

var errNoFreeCode = errors.New("no free activation code")

const (
	activationEmailSubject = "Account activation"

	// maxCodeAttempts bounds the draws made while looking for a code no pending token holds.
	maxCodeAttempts = 10
)

type activationUsecase struct {
	userRepo   repository.UserRepository
	tokenRepo  repository.ActivationTokenRepository
	transactor repository.Transactor
	mailQueue  MailQueue
	cfg        ActivationConfig
	logger     *zerolog.Logger
}

func NewActivationUsecase(
	userRepo repository.UserRepository,
	tokenRepo repository.ActivationTokenRepository,
	transactor repository.Transactor,
	mailQueue MailQueue,
	cfg ActivationConfig,
	logger *zerolog.Logger,
) ActivationUsecase {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.GenerateCode == nil {
		cfg.GenerateCode = security.GenerateNumericCode
	}

	return &activationUsecase{
		userRepo:   userRepo,
		tokenRepo:  tokenRepo,
		transactor: transactor,
		mailQueue:  mailQueue,
		cfg:        cfg,
		logger:     logger,
	}
}

func (u *activationUsecase) Issue(ctx context.Context, user *model.User) (*model.ActivationToken, error) {
	code, err := u.freeCode(ctx)
	if err != nil {
		return nil, err
	}

	now := u.cfg.Now()
	token, err := u.tokenRepo.CreateToken(ctx, &model.ActivationToken{
		Token:     code,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(u.cfg.Lifetime),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
	}

	return token, nil
}

// freeCode draws codes until one is not held by a pending token, so a code always
// resolves to a single account. The unique index on pending codes rejects a racing insert.
func (u *activationUsecase) freeCode(ctx context.Context) (string, error) {
	for range maxCodeAttempts {
		code, err := u.cfg.GenerateCode(u.cfg.CodeLength)
		if err != nil {
			return "", err
		}

		pending, err := u.tokenRepo.IsCodePending(ctx, code)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrPersistenceFailure, err)
		}
		if !pending {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w: %w", ErrPersistenceFailure, errNoFreeCode)
}

func (u *activationUsecase) Notify(user *model.User, token *model.ActivationToken) {
	body, err := mailer.Render(mailer.TemplateActivateAccount, map[string]any{
		"username":         user.FullName(),
		"activation_code":  token.Token,
		"confirmation_url": u.cfg.ActivationURL,
		"expires_in":       formatLifetime(u.cfg.Lifetime),
	})
	if err != nil {
		u.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to render activation email")
		return
	}

	err = u.mailQueue.Enqueue(mailer.Email{
		To:       []string{user.Email},
		Subject:  activationEmailSubject,
		HTMLBody: body,
	})
	if err != nil {
		u.logger.Error().Err(err).Str("user_id", user.ID.Hex()).Msg("failed to queue activation email")
	}
}

func (u *activationUsecase) Consume(ctx context.Context, code string) error {
	token, err := u.tokenRepo.GetTokenByCode(ctx, code)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}

		return err
	}

	// Already consumed: the account was enabled by the first call.
	if token.IsValidated() {
		return nil
	}

	now := u.cfg.Now()
	if token.IsExpired(now) {
		return u.reissue(ctx, token)
	}

	return u.transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		marked, err := u.tokenRepo.MarkTokenAsValidated(ctx, token.ID, now)
		if err != nil {
			return err
		}
		if !marked {
			return nil
		}

		enabled := true
		if _, err := u.userRepo.UpdateUser(ctx, token.UserID, repository.UpdateUserParams{Enabled: &enabled}); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return ErrNotFound
			}

			return err
		}

		return nil
	})
}

func (u *activationUsecase) reissue(ctx context.Context, expired *model.ActivationToken) error {
	user, err := u.userRepo.GetUser(ctx, expired.UserID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}

		return err
	}

	token, err := u.Issue(ctx, user)
	if err != nil {
		return err
	}
	u.Notify(user, token)

	return ErrActivationTokenExpired
}

func formatLifetime(d time.Duration) string {
	if d%time.Minute == 0 {
		return fmt.Sprintf("%d minutes", int(d/time.Minute))
	}

	return d.String()
}
