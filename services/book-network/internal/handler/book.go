package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/davidnhn/book-social-network/services/book-network/internal/payload"
	"github.com/davidnhn/book-social-network/services/book-network/internal/usecase"
	"github.com/davidnhn/book-social-network/shared/auth"
)

const coverFormField = "file"

func (h *httpHandler) saveBook(w http.ResponseWriter, r *http.Request) {
	var req payload.BookRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	id, err := h.usecases.Book.Save(r.Context(), identity(r), usecase.SaveBookParams{
		Title:      req.Title,
		AuthorName: req.AuthorName,
		ISBN:       req.ISBN,
		Synopsis:   req.Synopsis,
		Shareable:  req.Shareable,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.IDResponse{ID: id})
}

func (h *httpHandler) findBook(w http.ResponseWriter, r *http.Request) {
	details, err := h.usecases.Book.FindByID(r.Context(), chi.URLParam(r, "bookID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookResponse(details))
}

func (h *httpHandler) findAllBooks(w http.ResponseWriter, r *http.Request) {
	page, err := h.usecases.Book.FindAllDisplayable(r.Context(), identity(r), pageParams(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page, toBookResponse))
}

func (h *httpHandler) findAllBooksByOwner(w http.ResponseWriter, r *http.Request) {
	page, err := h.usecases.Book.FindAllByOwner(r.Context(), identity(r), pageParams(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page, toBookResponse))
}

func (h *httpHandler) findAllBorrowedBooks(w http.ResponseWriter, r *http.Request) {
	page, err := h.usecases.Book.FindAllBorrowed(r.Context(), identity(r), pageParams(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page, toBorrowedBookResponse))
}

func (h *httpHandler) findAllReturnedBooks(w http.ResponseWriter, r *http.Request) {
	page, err := h.usecases.Book.FindAllReturned(r.Context(), identity(r), pageParams(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toPageResponse(page, toBorrowedBookResponse))
}

func (h *httpHandler) toggleShareable(w http.ResponseWriter, r *http.Request) {
	h.respondWithID(w, r, h.usecases.Book.ToggleShareable)
}

func (h *httpHandler) toggleArchived(w http.ResponseWriter, r *http.Request) {
	h.respondWithID(w, r, h.usecases.Book.ToggleArchived)
}

func (h *httpHandler) borrowBook(w http.ResponseWriter, r *http.Request) {
	h.respondWithID(w, r, h.usecases.Lending.Borrow)
}

func (h *httpHandler) returnBook(w http.ResponseWriter, r *http.Request) {
	h.respondWithID(w, r, h.usecases.Lending.Return)
}

func (h *httpHandler) approveReturn(w http.ResponseWriter, r *http.Request) {
	h.respondWithID(w, r, h.usecases.Lending.ApproveReturn)
}

func (h *httpHandler) uploadCover(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxCoverBytes)
	if err := r.ParseMultipartForm(h.maxCoverBytes); err != nil {
		writeError(w, r, h.logger, errMalformedBody)
		return
	}

	file, _, err := r.FormFile(coverFormField)
	if err != nil {
		writeError(w, r, h.logger, errMalformedBody)
		return
	}
	defer file.Close()

	if err := h.usecases.Book.UploadCover(r.Context(), identity(r), chi.URLParam(r, "bookID"), file); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

func (h *httpHandler) downloadCover(w http.ResponseWriter, r *http.Request) {
	cover, err := h.usecases.Book.DownloadCover(r.Context(), chi.URLParam(r, "bookID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", cover.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(cover.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(cover.Data)
}

type bookAction func(ctx context.Context, identity auth.Identity, bookID string) (string, error)

func (h *httpHandler) respondWithID(w http.ResponseWriter, r *http.Request, action bookAction) {
	id, err := action(r.Context(), identity(r), chi.URLParam(r, "bookID"))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, payload.IDResponse{ID: id})
}

func toBookResponse(details *usecase.BookDetails) payload.BookResponse {
	book := details.Book

	var cover string
	if book.BookCover != nil {
		cover = apiPrefix + "/books/cover/" + book.ID.Hex()
	}

	return payload.BookResponse{
		ID:         book.ID.Hex(),
		Title:      book.Title,
		AuthorName: book.AuthorName,
		ISBN:       book.ISBN,
		Synopsis:   book.Synopsis,
		Owner:      details.Owner,
		Cover:      cover,
		Rate:       details.Rate,
		Archived:   book.Archived,
		Shareable:  book.Shareable,
	}
}

func toBorrowedBookResponse(book *usecase.BorrowedBook) payload.BorrowedBookResponse {
	return payload.BorrowedBookResponse{
		ID:             book.BookID,
		Title:          book.Title,
		AuthorName:     book.AuthorName,
		ISBN:           book.ISBN,
		Rate:           book.Rate,
		Returned:       book.Returned,
		ReturnApproved: book.ReturnApproved,
		State:          string(book.State),
	}
}
