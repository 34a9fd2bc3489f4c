package handler

import (
	"net/http"

	"github.com/davidnhn/book-social-network/services/book-network/internal/payload"
	"github.com/davidnhn/book-social-network/services/book-network/internal/usecase"
)

func (h *httpHandler) register(w http.ResponseWriter, r *http.Request) {
	var req payload.RegisterRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	err := h.usecases.Auth.Register(r.Context(), usecase.RegisterParams{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *httpHandler) authenticate(w http.ResponseWriter, r *http.Request) {
	var req payload.AuthenticateRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	token, err := h.usecases.Auth.Authenticate(r.Context(), usecase.AuthenticateParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.AuthenticateResponse{Token: token})
}

func (h *httpHandler) activateAccount(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("token")
	if code == "" {
		writeError(w, r, h.logger, usecase.ErrNotFound)
		return
	}

	if err := h.usecases.Activation.Consume(r.Context(), code); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *httpHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}

	return h.validator.Struct(dst)
}
