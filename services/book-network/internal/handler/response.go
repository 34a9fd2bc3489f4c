package handler

import (
	"net/http"
	"strconv"

	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog"

	"github.com/davidnhn/book-social-network/services/book-network/internal/payload"
	"github.com/davidnhn/book-social-network/services/book-network/internal/usecase"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const maxJSONBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, r *http.Request, logger *zerolog.Logger, err error) {
	status, body := errorResponse(err)

	event := logger.Debug()
	if status >= http.StatusInternalServerError {
		event = logger.Error()
	}
	event.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Msg("request failed")

	writeJSON(w, status, body)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBodyBytes))
	if err := decoder.Decode(dst); err != nil {
		return errMalformedBody
	}

	return nil
}

// pageParams reads the zero-based page and size query parameters.
func pageParams(r *http.Request) usecase.PageParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	return usecase.PageParams{Page: page, Size: size}
}

func toPageResponse[S, T any](page *usecase.Page[S], convert func(S) T) payload.PageResponse[T] {
	content := make([]T, 0, len(page.Content))
	for _, item := range page.Content {
		content = append(content, convert(item))
	}

	return payload.PageResponse[T]{
		Content:       content,
		Number:        page.Number,
		Size:          page.Size,
		TotalElements: page.TotalElements,
		TotalPages:    page.TotalPages,
		First:         page.First,
		Last:          page.Last,
	}
}
