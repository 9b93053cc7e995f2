package service

import (
	"context"
	"encoding/json"
	"errors"
	"html"
	"log/slog"
	"strings"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/cache"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
)

type ItemService interface {
	CreateItem(ctx context.Context, owner uuid.UUID, req *models.CreateItemRequest) (*models.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	ListItems(ctx context.Context) ([]*models.Item, error)
	UpdateItem(ctx context.Context, id uuid.UUID, patch map[string]json.RawMessage) (*models.Item, error)
	DeleteItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
}

type itemService struct {
	repo      repository.ItemRepository
	cache     cache.Cache
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

// NewItemService builds the catalog service. cache may be nil.
func NewItemService(repo repository.ItemRepository, itemCache cache.Cache, validate *validator.Validate) ItemService {
	return &itemService{
		repo:      repo,
		cache:     itemCache,
		validate:  validate,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

func (s *itemService) CreateItem(ctx context.Context, owner uuid.UUID, req *models.CreateItemRequest) (*models.Item, error) {

	item := &models.Item{
		ID:          uuid.New(),
		Owner:       owner,
		Name:        s.clean(req.Name),
		Description: s.clean(req.Description),
		Category:    s.clean(req.Category),
	}

	if req.Price != nil {
		item.Price = *req.Price
	}

	if item.Name == "" {
		return nil, appErrors.ValidationError("Validation failed").WithDetail("Field Name is required")
	}

	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, appErrors.DatabaseError("Failed to create item").WithError(err)
	}

	return item, nil
}

func (s *itemService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {

	item, err := cache.ReadThrough(ctx, s.cache, itemCacheKey(id), func(ctx context.Context) (*models.Item, error) {
		return s.repo.GetItemByID(ctx, id)
	}, cacheWarning(ctx))
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, appErrors.NotFoundError("Item not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch item").WithError(err)
	}

	return item, nil
}

func (s *itemService) ListItems(ctx context.Context) ([]*models.Item, error) {

	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, appErrors.DatabaseError("Failed to list items").WithError(err)
	}

	return items, nil
}

// UpdateItem rejects the whole patch if any key is outside the updatable set,
// so a bad request never changes anything.
func (s *itemService) UpdateItem(ctx context.Context, id uuid.UUID, patch map[string]json.RawMessage) (*models.Item, error) {

	if invalid := models.DisallowedItemFields(patch); len(invalid) > 0 {
		return nil, appErrors.BadRequestError("Invalid updates").WithDetail("unknown fields: " + strings.Join(invalid, ", "))
	}

	// round-trip through JSON so each field is decoded and validated with its proper type
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, appErrors.BadRequestError("Invalid request body").WithError(err)
	}

	var req models.UpdateItemRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, appErrors.BadRequestError("Invalid request body").WithDetail(err.Error()).WithError(err)
	}

	if err := s.validate.Struct(&req); err != nil {
		return nil, appErrors.ValidationError("Validation failed").WithDetail(err.Error()).WithError(err)
	}

	item, err := s.repo.GetItemByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, appErrors.NotFoundError("Item not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to fetch item").WithError(err)
	}

	for _, field := range []**string{&req.Name, &req.Description, &req.Category} {
		if *field != nil {
			cleaned := s.clean(**field)
			*field = &cleaned
		}
	}

	item.Apply(&req)

	if item.Name == "" {
		return nil, appErrors.ValidationError("Validation failed").WithDetail("Field Name is required")
	}

	if err := s.repo.UpdateItem(ctx, item); err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, appErrors.NotFoundError("Item not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to update item").WithError(err)
	}

	s.invalidate(ctx, id)

	return item, nil
}

func (s *itemService) DeleteItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {

	item, err := s.repo.DeleteItem(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrItemNotFound) {
			return nil, appErrors.NotFoundError("Item not found").WithError(err)
		}
		return nil, appErrors.DatabaseError("Failed to delete item").WithError(err)
	}

	s.invalidate(ctx, id)

	return item, nil
}

// clean strips markup. Entities escaped by the policy are decoded again so
// plain text like "salt & pepper" is stored as typed.
func (s *itemService) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}

func (s *itemService) invalidate(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}

	key := itemCacheKey(id)
	if err := s.cache.Delete(ctx, key); err != nil {
		cacheWarning(ctx)("invalidation", key, err)
	}
}

func cacheWarning(ctx context.Context) cache.ErrorHook {
	return func(op, key string, err error) {
		middleware.LoggerFromContext(ctx).Warn("Item cache "+op+" failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func itemCacheKey(id uuid.UUID) string {
	return cache.Key(cache.ItemKeyPrefix, id.String())
}
