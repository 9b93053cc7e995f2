package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils/response"
	"github.com/google/uuid"
)

// currentUser writes a 401 and reports false when the request carries no
// authenticated user.
func currentUser(w http.ResponseWriter, r *http.Request, logger *slog.Logger) (*models.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		logger.Warn("Unauthenticated request reached a protected handler")
		response.Error(w, errors.AuthenticationRequired())
		return nil, false
	}

	return user, true
}

func parseID(w http.ResponseWriter, raw string, what string, logger *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	if err != nil {
		logger.Warn("Invalid id", slog.String(what, raw))
		response.Error(w, errors.BadRequestError("Invalid "+what).WithDetail(err.Error()))
		return uuid.Nil, false
	}

	return id, true
}
