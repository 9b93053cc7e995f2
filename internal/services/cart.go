package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/metrics"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/google/uuid"
)

const DefaultCartMaxRetries = 5

type CartService interface {
	GetCart(ctx context.Context, owner uuid.UUID) (*models.Cart, error)
	AddItem(ctx context.Context, owner uuid.UUID, req *models.AddItemRequest) (*models.Cart, bool, error)
	RemoveItem(ctx context.Context, owner uuid.UUID, itemID uuid.UUID) (*models.Cart, error)
}

type cartService struct {
	repo       repository.CartRepository
	items      repository.ItemRepository
	maxRetries int
}

// NewCartService reads items straight from items, never through the item
// cache, so every add snapshots the current name and price.
func NewCartService(repo repository.CartRepository, items repository.ItemRepository, maxRetries int) CartService {
	if maxRetries <= 0 {
		maxRetries = DefaultCartMaxRetries
	}

	return &cartService{repo: repo, items: items, maxRetries: maxRetries}
}

var errCartRetry = errors.New("cart changed, retry")

// GetCart returns nil, without error, when the user has no cart or an empty one.
func (s *cartService) GetCart(ctx context.Context, owner uuid.UUID) (*models.Cart, error) {

	cart, err := s.repo.GetCartByUserID(ctx, owner)
	if err != nil {
		if errors.Is(err, repository.ErrCartNotFound) {
			return nil, nil
		}
		return nil, appErrors.DatabaseError("Failed to fetch cart").WithError(err)
	}

	if cart.IsEmpty() {
		return nil, nil
	}

	return cart, nil
}

// AddItem merges quantity of the item into the user's cart, creating the cart
// on first use. The bool reports whether a new cart was created.
func (s *cartService) AddItem(ctx context.Context, owner uuid.UUID, req *models.AddItemRequest) (*models.Cart, bool, error) {

	item, err := s.items.GetItemByID(ctx, req.ItemID)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			metrics.RecordCartOperation("add", "item_missing")
			return nil, false, appErrors.NotFoundError("Item not found").WithError(err)
		}
		metrics.RecordCartOperation("add", "error")
		return nil, false, appErrors.DatabaseError("Failed to fetch item").WithError(err)
	}

	var cart *models.Cart
	var created bool

	err = s.withRetry(ctx, "add", func() error {

		existing, err := s.repo.GetCartByUserID(ctx, owner)
		if errors.Is(err, repository.ErrCartNotFound) {

			cart = models.NewCart(owner)
			if err := cart.AddLine(item, req.Quantity); err != nil {
				return quantityError(err)
			}

			err := s.repo.CreateCart(ctx, cart)
			if errors.Is(err, repository.ErrCartExists) {
				return errCartRetry
			}
			if err != nil {
				return appErrors.DatabaseError("Failed to create cart").WithError(err)
			}

			created = true
			return nil
		}

		if err != nil {
			return appErrors.DatabaseError("Failed to fetch cart").WithError(err)
		}

		if err := existing.AddLine(item, req.Quantity); err != nil {
			return quantityError(err)
		}

		if err := s.updateCart(ctx, existing); err != nil {
			return err
		}

		cart = existing
		return nil
	})

	if err != nil {
		return nil, false, err
	}

	if created {
		metrics.RecordCartOperation("add", "created")
	} else {
		metrics.RecordCartOperation("add", "updated")
	}

	return cart, created, nil
}

func (s *cartService) RemoveItem(ctx context.Context, owner uuid.UUID, itemID uuid.UUID) (*models.Cart, error) {

	var cart *models.Cart

	err := s.withRetry(ctx, "remove", func() error {

		existing, err := s.repo.GetCartByUserID(ctx, owner)
		if err != nil {
			if errors.Is(err, repository.ErrCartNotFound) {
				return appErrors.NotFoundError("Cart not found").WithError(err)
			}
			return appErrors.DatabaseError("Failed to fetch cart").WithError(err)
		}

		if !existing.RemoveLine(itemID) {
			return appErrors.NotFoundError("Item not found in cart")
		}

		if err := s.updateCart(ctx, existing); err != nil {
			return err
		}

		cart = existing
		return nil
	})

	if err != nil {
		return nil, err
	}

	metrics.RecordCartOperation("remove", "updated")

	return cart, nil
}

func quantityError(err error) error {
	return appErrors.AddValidationError("quantity", fmt.Sprintf("a cart line holds at most %d units", models.MaxLineQuantity)).WithError(err)
}

func (s *cartService) updateCart(ctx context.Context, cart *models.Cart) error {

	err := s.repo.UpdateCart(ctx, cart)
	if errors.Is(err, repository.ErrCartVersionConflict) {
		return errCartRetry
	}
	if err != nil {
		return appErrors.DatabaseError("Failed to update cart").WithError(err)
	}

	return nil
}

// withRetry runs a read-modify-write attempt until it stops asking for a
// retry or maxRetries attempts have been made.
func (s *cartService) withRetry(ctx context.Context, operation string, attempt func() error) error {

	logger := middleware.LoggerFromContext(ctx)

	for i := 1; i <= s.maxRetries; i++ {

		err := attempt()
		if !errors.Is(err, errCartRetry) {
			if err != nil {
				metrics.RecordCartOperation(operation, "error")
			}
			return err
		}

		metrics.RecordCartConflict()
		logger.Debug("Cart write lost a race, retrying", slog.String("operation", operation), slog.Int("attempt", i))

		if err := ctx.Err(); err != nil {
			return appErrors.InternalError("Request cancelled").WithError(err)
		}
	}

	metrics.RecordCartOperation(operation, "conflict")
	logger.Warn("Cart write gave up after repeated conflicts", slog.String("operation", operation), slog.Int("attempts", s.maxRetries))

	return appErrors.ConflictError("Cart was modified concurrently, please retry")
}
