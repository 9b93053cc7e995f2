package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

type Item struct {
	ID          uuid.UUID `json:"id"`
	Owner       uuid.UUID `json:"owner"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type CreateItemRequest struct {
	Name        string   `json:"name" validate:"required,max=200"`
	Description string   `json:"description" validate:"max=2000"`
	Category    string   `json:"category" validate:"max=100"`
	Price       *float64 `json:"price" validate:"required,gte=0"`
}

type UpdateItemRequest struct {
	Name        *string  `json:"name" validate:"omitnil,min=1,max=200"`
	Description *string  `json:"description" validate:"omitnil,max=2000"`
	Category    *string  `json:"category" validate:"omitnil,max=100"`
	Price       *float64 `json:"price" validate:"omitnil,gte=0"`
}

// ItemUpdatableFields is the complete set of keys a PATCH body may carry.
var ItemUpdatableFields = map[string]struct{}{
	"name":        {},
	"description": {},
	"category":    {},
	"price":       {},
}

// DisallowedItemFields returns the sorted keys of patch that are not updatable.
func DisallowedItemFields[V any](patch map[string]V) []string {
	var invalid []string

	for key := range patch {
		if _, ok := ItemUpdatableFields[key]; !ok {
			invalid = append(invalid, key)
		}
	}

	sort.Strings(invalid)

	return invalid
}

// Apply copies the non-nil fields of req onto the item.
func (i *Item) Apply(req *UpdateItemRequest) {
	if req.Name != nil {
		i.Name = *req.Name
	}
	if req.Description != nil {
		i.Description = *req.Description
	}
	if req.Category != nil {
		i.Category = *req.Category
	}
	if req.Price != nil {
		i.Price = *req.Price
	}
}
