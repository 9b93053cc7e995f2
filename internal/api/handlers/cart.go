package handlers

import (
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

type CartHandler struct {
	cartService service.CartService
	validator   *validator.Validate
}

func NewCartHandler(cartService service.CartService, validate *validator.Validate) *CartHandler {
	return &CartHandler{cartService: cartService, validator: validate}
}

// GetCart writes the cart, or JSON null when there is nothing in it.
func (h *CartHandler) GetCart() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}

		cart, err := h.cartService.GetCart(r.Context(), user.ID)
		if err != nil {
			logger.Error("Failed to fetch cart", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.WriteJson(w, http.StatusOK, cart)

	}
}

func (h *CartHandler) AddItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}

		var req models.AddItemRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid add to cart input")
			return
		}

		cart, created, err := h.cartService.AddItem(r.Context(), user.ID, &req)
		if err != nil {
			logger.Warn("Failed to add item to cart", slog.String("itemId", req.ItemID.String()), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}

		logger.Info("Item added to cart", slog.String("cartId", cart.ID.String()), slog.String("itemId", req.ItemID.String()), slog.Int("quantity", req.Quantity))
		response.WriteJson(w, status, cart)

	}
}

// RemoveItem expects the item as ?itemId=<uuid>.
func (h *CartHandler) RemoveItem() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		user, ok := currentUser(w, r, logger)
		if !ok {
			return
		}

		raw := r.URL.Query().Get("itemId")
		if raw == "" {
			response.Error(w, errors.BadRequestError("itemId is required"))
			return
		}

		itemID, ok := parseID(w, raw, "item id", logger)
		if !ok {
			return
		}

		cart, err := h.cartService.RemoveItem(r.Context(), user.ID, itemID)
		if err != nil {
			logger.Warn("Failed to remove item from cart", slog.String("itemId", raw), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Item removed from cart", slog.String("cartId", cart.ID.String()), slog.String("itemId", raw))
		response.WriteJson(w, http.StatusOK, cart)

	}
}
