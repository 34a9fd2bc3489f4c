package handler_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/davidnhn/book-social-network/services/book-network/internal/handler"
	"github.com/davidnhn/book-social-network/shared/auth"
)

// captureIdentity records the identity the downstream handler observed.
func captureIdentity(seen *auth.Identity, found *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen, *found = auth.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestSession(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("attaches a verified identity", func(t *testing.T) {
		verifier := &mockSessionUsecase{}
		verifier.On("Verify", mock.Anything, validToken).Return(member, nil).Once()

		var seen auth.Identity
		var found bool
		req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
		req.Header.Set("Authorization", "Bearer "+validToken)

		handler.Session(verifier, &logger, "/api/v1/auth")(captureIdentity(&seen, &found)).ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, found)
		assert.Equal(t, member, seen)
		verifier.AssertExpectations(t)
	})

	t.Run("passes through on verification failure", func(t *testing.T) {
		api := newTestAPI(t)

		var seen auth.Identity
		var found bool
		req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
		req.Header.Set("Authorization", "Bearer "+invalidToken)
		rec := httptest.NewRecorder()

		handler.Session(api.session, &logger, "/api/v1/auth")(captureIdentity(&seen, &found)).ServeHTTP(rec, req)

		assert.False(t, found)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("skips the auth path", func(t *testing.T) {
		verifier := &mockSessionUsecase{}

		var seen auth.Identity
		var found bool
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", nil)
		req.Header.Set("Authorization", "Bearer "+validToken)

		handler.Session(verifier, &logger, "/api/v1/auth")(captureIdentity(&seen, &found)).ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, found)
		verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("keeps an identity already present", func(t *testing.T) {
		verifier := &mockSessionUsecase{}
		existing := auth.Identity{UserID: "other", Email: "o@x.com"}

		var seen auth.Identity
		var found bool
		req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
		req.Header.Set("Authorization", "Bearer "+validToken)
		req = req.WithContext(auth.WithIdentity(req.Context(), existing))

		handler.Session(verifier, &logger, "/api/v1/auth")(captureIdentity(&seen, &found)).ServeHTTP(httptest.NewRecorder(), req)

		assert.True(t, found)
		assert.Equal(t, existing, seen)
		verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("no header means anonymous", func(t *testing.T) {
		verifier := &mockSessionUsecase{}

		var seen auth.Identity
		var found bool
		req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)

		handler.Session(verifier, &logger, "/api/v1/auth")(captureIdentity(&seen, &found)).ServeHTTP(httptest.NewRecorder(), req)

		assert.False(t, found)
		verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})
}

func TestRequestID(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(http.MethodGet, "/api/v1/books", "", "")
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec = httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	router := chimiddleware.RequestID(handler.AccessLog(&logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/books", nil)
	req.Header.Set("X-Request-Id", "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-Id"))
	assert.Contains(t, buf.String(), `"request_id":"abc-123"`)
	assert.Contains(t, buf.String(), `"status":418`)
	assert.Contains(t, buf.String(), `"path":"/api/v1/books"`)
}
