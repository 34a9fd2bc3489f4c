package handler

import (
	"errors"
	"net/http"

	"github.com/davidnhn/book-social-network/services/book-network/internal/payload"
	"github.com/davidnhn/book-social-network/services/book-network/internal/usecase"
	"github.com/davidnhn/book-social-network/shared/validate"
)

// BusinessErrorCode identifies an authentication-domain failure for API clients.
type BusinessErrorCode int

const (
	NoCode                   BusinessErrorCode = 0
	IncorrectCurrentPassword BusinessErrorCode = 300
	NewPasswordDoesNotMatch  BusinessErrorCode = 301
	AccountLocked            BusinessErrorCode = 302
	AccountDisabled          BusinessErrorCode = 303
	BadCredentials           BusinessErrorCode = 304
)

var businessDescriptions = map[BusinessErrorCode]string{
	NoCode:                   "No code",
	IncorrectCurrentPassword: "Current password is incorrect",
	NewPasswordDoesNotMatch:  "The new password does not match",
	AccountLocked:            "User account is locked",
	AccountDisabled:          "User account is disabled",
	BadCredentials:           "Login and / or password is incorrect",
}

// Description returns the client-facing text for the code.
func (c BusinessErrorCode) Description() string {
	return businessDescriptions[c]
}

var (
	errMalformedBody   = errors.New("malformed request body")
	errUnauthenticated = errors.New("full authentication is required to access this resource")
)

const internalErrorDescription = "Internal error, please contact the administrator"

func businessError(status int, code BusinessErrorCode, err error) (int, payload.ErrorResponse) {
	return status, payload.ErrorResponse{
		BusinessErrorCode:        int(code),
		BusinessErrorDescription: code.Description(),
		Error:                    err.Error(),
	}
}

// errorResponse maps an error to its status and body. Unknown errors map to 500.
func errorResponse(err error) (int, payload.ErrorResponse) {
	var (
		validationErrs validate.Errors
		notPermitted   *usecase.OperationNotPermittedError
	)

	switch {
	case errors.As(err, &validationErrs):
		return http.StatusBadRequest, payload.ErrorResponse{ValidationErrors: validationErrs}
	case errors.Is(err, errMalformedBody):
		return http.StatusBadRequest, payload.ErrorResponse{Error: err.Error()}
	case errors.Is(err, usecase.ErrAccountLocked):
		return businessError(http.StatusUnauthorized, AccountLocked, err)
	case errors.Is(err, usecase.ErrAccountDisabled):
		return businessError(http.StatusUnauthorized, AccountDisabled, err)
	case errors.Is(err, usecase.ErrBadCredentials):
		return businessError(http.StatusUnauthorized, BadCredentials, err)
	case errors.Is(err, usecase.ErrInvalidSession), errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized, payload.ErrorResponse{Error: errUnauthenticated.Error()}
	case errors.As(err, &notPermitted):
		return http.StatusBadRequest, payload.ErrorResponse{Error: notPermitted.Reason}
	case errors.Is(err, usecase.ErrActivationTokenExpired):
		return http.StatusGone, payload.ErrorResponse{Error: err.Error()}
	case errors.Is(err, usecase.ErrNotFound):
		return http.StatusNotFound, payload.ErrorResponse{Error: err.Error()}
	case errors.Is(err, usecase.ErrUserAlreadyExists):
		return http.StatusConflict, payload.ErrorResponse{Error: err.Error()}
	case errors.Is(err, usecase.ErrUnsupportedCover):
		return http.StatusUnsupportedMediaType, payload.ErrorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, payload.ErrorResponse{BusinessErrorDescription: internalErrorDescription}
	}
}
