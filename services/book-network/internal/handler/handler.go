package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/davidnhn/book-social-network/services/book-network/internal/usecase"
	"github.com/davidnhn/book-social-network/shared/auth"
	"github.com/davidnhn/book-social-network/shared/validate"
)

const (
	apiPrefix  = "/api/v1"
	authPrefix = apiPrefix + "/auth"

	// HealthPath answers 200 without touching the session layer.
	HealthPath = "/healthz"
)

// Usecases groups the business operations the HTTP API exposes.
type Usecases struct {
	Auth       usecase.AuthUsecase
	Activation usecase.ActivationUsecase
	Session    usecase.SessionUsecase
	Book       usecase.BookUsecase
	Lending    usecase.LendingUsecase
	Feedback   usecase.FeedbackUsecase
}

type httpHandler struct {
	usecases      Usecases
	validator     *validate.Validator
	logger        *zerolog.Logger
	maxCoverBytes int64
}

// NewRouter builds the REST API.
func NewRouter(
	usecases Usecases,
	validator *validate.Validator,
	logger *zerolog.Logger,
	maxCoverBytes int64,
) http.Handler {
	h := &httpHandler{
		usecases:      usecases,
		validator:     validator,
		logger:        logger,
		maxCoverBytes: maxCoverBytes,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(AccessLog(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat(HealthPath))
	r.Use(Session(usecases.Session, logger, authPrefix))

	r.Route(authPrefix, func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/authenticate", h.authenticate)
		r.Get("/activate-account", h.activateAccount)
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireIdentity(logger))

		r.Route(apiPrefix+"/books", func(r chi.Router) {
			r.Post("/", h.saveBook)
			r.Get("/", h.findAllBooks)
			r.Get("/owner", h.findAllBooksByOwner)
			r.Get("/borrowed", h.findAllBorrowedBooks)
			r.Get("/returned", h.findAllReturnedBooks)
			r.Get("/{bookID}", h.findBook)
			r.Patch("/shareable/{bookID}", h.toggleShareable)
			r.Patch("/archived/{bookID}", h.toggleArchived)
			r.Post("/borrow/{bookID}", h.borrowBook)
			r.Patch("/borrow/return/{bookID}", h.returnBook)
			r.Patch("/borrow/return/approve/{bookID}", h.approveReturn)
			r.Post("/cover/{bookID}", h.uploadCover)
			r.Get("/cover/{bookID}", h.downloadCover)
		})

		r.Route(apiPrefix+"/feedbacks", func(r chi.Router) {
			r.Post("/", h.saveFeedback)
			r.Get("/book/{bookID}", h.findAllFeedbacksByBook)
		})
	})

	return r
}

// identity is only called behind RequireIdentity.
func identity(r *http.Request) auth.Identity {
	caller, _ := auth.IdentityFromContext(r.Context())
	return caller
}
