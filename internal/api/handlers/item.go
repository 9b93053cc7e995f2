package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	service "github.com/aaravmahajanofficial/ecommerce-backend/internal/services"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type ItemHandler struct {
	itemService service.ItemService
	validator   *validator.Validate
}

func NewItemHandler(itemService service.ItemService, validate *validator.Validate) *ItemHandler {
	return &ItemHandler{itemService: itemService, validator: validate}
}

func (h *ItemHandler) CreateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}

		var req models.CreateItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid item input")
			return
		}

		item, err := h.itemService.CreateItem(r.Context(), user.ID, &req)
		if err != nil {
			logger.Error("Failed to create item", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Item created", slog.String("itemId", item.ID.String()))
		response.WriteJson(w, http.StatusCreated, item)

	}
}

func (h *ItemHandler) GetItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, ok := parseID(w, r.PathValue("id"), "item id", logger)
		if !ok {
			return
		}

		item, err := h.itemService.GetItem(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to fetch item", slog.String("itemId", id.String()), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, item)

	}
}

func (h *ItemHandler) ListItems() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		items, err := h.itemService.ListItems(r.Context())
		if err != nil {
			logger.Error("Failed to list items", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		if items == nil {
			items = []*models.Item{}
		}

		response.WriteJson(w, http.StatusOK, items)

	}
}

func (h *ItemHandler) UpdateItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, ok := parseID(w, r.PathValue("id"), "item id", logger)
		if !ok {
			return
		}

		// keys are checked by the service before anything is applied
		var patch map[string]json.RawMessage
		if err := utils.DecodeJSONBody(r, &patch); err != nil {
			response.Error(w, errors.BadRequestError("Invalid request body").WithDetail(err.Error()))
			return
		}

		item, err := h.itemService.UpdateItem(r.Context(), id, patch)
		if err != nil {
			logger.Warn("Failed to update item", slog.String("itemId", id.String()), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Item updated", slog.String("itemId", id.String()))
		response.WriteJson(w, http.StatusOK, item)

	}
}

func (h *ItemHandler) DeleteItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, ok := parseID(w, r.PathValue("id"), "item id", logger)
		if !ok {
			return
		}

		item, err := h.itemService.DeleteItem(r.Context(), id)
		if err != nil {
			logger.Warn("Failed to delete item", slog.String("itemId", id.String()), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Item deleted", slog.String("itemId", id.String()))
		response.WriteJson(w, http.StatusOK, item)

	}
}
