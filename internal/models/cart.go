package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// LineItem holds a snapshot of the item's name and price taken when it was added.
type LineItem struct {
	ItemID   uuid.UUID `json:"itemId"`
	Name     string    `json:"name"`
	Quantity int       `json:"quantity"`
	Price    float64   `json:"price"`
}

type Cart struct {
	ID        uuid.UUID  `json:"id"`
	Owner     uuid.UUID  `json:"owner"`
	Items     []LineItem `json:"items"`
	Bill      float64    `json:"bill"`
	Version   int64      `json:"-"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// MaxLineQuantity caps the quantity of a single line, merges included.
const MaxLineQuantity = 10000

var ErrQuantityLimit = errors.New("line quantity limit exceeded")

type AddItemRequest struct {
	ItemID   uuid.UUID `json:"itemId" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1,max=10000"`
}

func NewCart(owner uuid.UUID) *Cart {
	now := time.Now()

	return &Cart{
		ID:        uuid.New(),
		Owner:     owner,
		Items:     []LineItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IndexOf returns the position of the line for itemID, or -1.
func (c *Cart) IndexOf(itemID uuid.UUID) int {
	for i, line := range c.Items {
		if line.ItemID == itemID {
			return i
		}
	}
	return -1
}

// AddLine merges quantity into the existing line for item, or appends a new
// line with the item's current name and price. The bill is recomputed.
// ErrQuantityLimit is returned, and the cart left untouched, when the line
// would end up outside 1..MaxLineQuantity.
func (c *Cart) AddLine(item *Item, quantity int) error {
	idx := c.IndexOf(item.ID)

	current := 0
	if idx > -1 {
		current = c.Items[idx].Quantity
	}

	if quantity < 1 || quantity > MaxLineQuantity-current {
		return ErrQuantityLimit
	}

	if idx > -1 {
		c.Items[idx].Quantity = current + quantity
	} else {
		c.Items = append(c.Items, LineItem{
			ItemID:   item.ID,
			Name:     item.Name,
			Quantity: quantity,
			Price:    item.Price,
		})
	}

	c.RecalculateBill()

	return nil
}

// RemoveLine drops the line for itemID and recomputes the bill. It reports
// false when the cart has no such line.
func (c *Cart) RemoveLine(itemID uuid.UUID) bool {
	idx := c.IndexOf(itemID)
	if idx == -1 {
		return false
	}

	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.RecalculateBill()

	return true
}

// RecalculateBill folds quantity * price over every line, floored at zero.
func (c *Cart) RecalculateBill() {
	var bill float64

	for _, line := range c.Items {
		bill += float64(line.Quantity) * line.Price
	}

	c.Bill = max(bill, 0)
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
