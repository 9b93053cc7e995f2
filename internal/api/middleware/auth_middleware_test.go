package middleware_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authenticatorFunc adapts a function to middleware.Authenticator.
type authenticatorFunc func(ctx context.Context, token string) (*models.User, error)

func (f authenticatorFunc) Authenticate(ctx context.Context, token string) (*models.User, error) {
	return f(ctx, token)
}

const unauthorizedBody = `{"success": false, "error": {"code": "UNAUTHORIZED", "message": "Authentication required"}}`

func TestAuthMiddleware(t *testing.T) {
	// Arrange
	user := &models.User{ID: uuid.New(), Name: "john", Email: "john@example.com", Tokens: []string{"good-token"}}

	var seenToken string
	authenticator := authenticatorFunc(func(_ context.Context, token string) (*models.User, error) {
		seenToken = token
		if token == "good-token" {
			return user, nil
		}
		if token == "storage-down" {
			return nil, errors.New("connection refused")
		}
		return nil, errors.New("invalid token")
	})

	authMiddleware := middleware.NewAuthMiddleware(authenticator)

	mockNextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxUser, ok := middleware.UserFromContext(r.Context())
		require.True(t, ok, "user should be in context")
		assert.Equal(t, user.ID, ctxUser.ID)

		token, ok := middleware.TokenFromContext(r.Context())
		require.True(t, ok, "token should be in context")
		assert.Equal(t, "good-token", token)

		w.WriteHeader(http.StatusOK)
		_, err := w.Write([]byte(`{"success": true}`))
		require.NoError(t, err)
	})

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
		expectedBody   string
		expectedToken  string
	}{
		{
			name:           "Success - Valid Token",
			authHeader:     "Bearer good-token",
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
			expectedToken:  "good-token",
		},
		{
			name:           "Success - Quoted Token",
			authHeader:     `Bearer "good-token"`,
			expectedStatus: http.StatusOK,
			expectedBody:   `{"success": true}`,
			expectedToken:  "good-token",
		},
		{
			name:           "Fail - Missing Authorization Header",
			authHeader:     "",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
		},
		{
			name:           "Fail - No Bearer Scheme",
			authHeader:     "good-token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
		},
		{
			name:           "Fail - Only Bearer",
			authHeader:     "Bearer ",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
		},
		{
			name:           "Fail - Rejected Token",
			authHeader:     "Bearer revoked-token",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
			expectedToken:  "revoked-token",
		},
		{
			name:           "Fail - Storage Error Is Still 401",
			authHeader:     "Bearer storage-down",
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   unauthorizedBody,
			expectedToken:  "storage-down",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			seenToken = ""

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}

			baseLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
			req = req.WithContext(middleware.WithLogger(req.Context(), baseLogger))

			rr := httptest.NewRecorder()

			handlerToTest := authMiddleware.Authenticate(mockNextHandler)

			// Act
			handlerToTest.ServeHTTP(rr, req)

			// Assert
			assert.Equal(t, tc.expectedStatus, rr.Code, "Unexpected status code")
			assert.JSONEq(t, tc.expectedBody, rr.Body.String(), "Unexpected response body")
			assert.Equal(t, tc.expectedToken, seenToken, "token passed to the authenticator")
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{"Bearer abc", "abc"},
		{"bearer abc", "abc"},
		{`Bearer "abc"`, "abc"},
		{"Basic abc", ""},
		{"abc", ""},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.header, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("Authorization", tc.header)

			assert.Equal(t, tc.expected, middleware.BearerToken(req))
		})
	}
}

func TestContextHelpers_Empty(t *testing.T) {
	ctx := context.Background()

	user, ok := middleware.UserFromContext(ctx)
	assert.False(t, ok)
	assert.Nil(t, user)

	token, ok := middleware.TokenFromContext(ctx)
	assert.False(t, ok)
	assert.Empty(t, token)
}
