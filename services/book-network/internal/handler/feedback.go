package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/davidnhn/book-social-network/services/book-network/internal/payload"
	"github.com/davidnhn/book-social-network/services/book-network/internal/usecase"
)

func (h *httpHandler) saveFeedback(w http.ResponseWriter, r *http.Request) {
	var req payload.FeedbackRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	id, err := h.usecases.Feedback.Save(r.Context(), identity(r), usecase.SaveFeedbackParams{
		BookID:  req.BookID,
		Note:    *req.Note,
		Comment: req.Comment,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.IDResponse{ID: id})
}

func (h *httpHandler) findAllFeedbacksByBook(w http.ResponseWriter, r *http.Request) {
	page, err := h.usecases.Feedback.FindAllByBook(r.Context(), identity(r), chi.URLParam(r, "bookID"), pageParams(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page, func(feedback *usecase.FeedbackDetails) payload.FeedbackResponse {
		return payload.FeedbackResponse{
			Note:        feedback.Note,
			Comment:     feedback.Comment,
			OwnFeedback: feedback.OwnFeedback,
		}
	}))
}
