package service_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/google/uuid"
)

// memUserRepo is an in-memory UserRepository with the same token semantics as
// the postgres one.
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[uuid.UUID]*models.User{}}
}

func (r *memUserRepo) copyOf(u *models.User) *models.User {
	c := *u
	c.Tokens = slices.Clone(u.Tokens)
	return &c
}

func (r *memUserRepo) CreateUser(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}

	user.CreatedAt, user.UpdatedAt = time.Now(), time.Now()
	r.users[user.ID] = r.copyOf(user)
	return nil
}

func (r *memUserRepo) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			return r.copyOf(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *memUserRepo) GetUserByToken(_ context.Context, id uuid.UUID, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || !slices.Contains(u.Tokens, token) {
		return nil, repository.ErrUserNotFound
	}
	return r.copyOf(u), nil
}

func (r *memUserRepo) AddToken(_ context.Context, id uuid.UUID, token string) error {
	return r.update(id, func(u *models.User) { u.Tokens = append(u.Tokens, token) })
}

func (r *memUserRepo) RemoveToken(_ context.Context, id uuid.UUID, token string) error {
	return r.update(id, func(u *models.User) {
		u.Tokens = slices.DeleteFunc(u.Tokens, func(t string) bool { return t == token })
	})
}

func (r *memUserRepo) ClearTokens(_ context.Context, id uuid.UUID) error {
	return r.update(id, func(u *models.User) { u.Tokens = []string{} })
}

func (r *memUserRepo) update(id uuid.UUID, fn func(u *models.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(u)
	return nil
}

// memCartRepo is an in-memory CartRepository enforcing the version check.
type memCartRepo struct {
	mu     sync.Mutex
	carts  map[uuid.UUID]*models.Cart
	writes int
}

func newMemCartRepo() *memCartRepo {
	return &memCartRepo{carts: map[uuid.UUID]*models.Cart{}}
}

func cloneCart(c *models.Cart) *models.Cart {
	cp := *c
	cp.Items = slices.Clone(c.Items)
	if cp.Items == nil {
		cp.Items = []models.LineItem{}
	}
	return &cp
}

func (r *memCartRepo) CreateCart(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.carts[cart.Owner]; ok {
		return repository.ErrCartExists
	}

	cart.Version = 0
	r.carts[cart.Owner] = cloneCart(cart)
	r.writes++
	return nil
}

func (r *memCartRepo) GetCartByUserID(_ context.Context, userID uuid.UUID) (*models.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cloneCart(c), nil
}

func (r *memCartRepo) UpdateCart(_ context.Context, cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.carts[cart.Owner]
	if !ok || stored.ID != cart.ID || stored.Version != cart.Version {
		return repository.ErrCartVersionConflict
	}

	cart.Version++
	cart.UpdatedAt = time.Now()
	r.carts[cart.Owner] = cloneCart(cart)
	r.writes++
	return nil
}

func (r *memCartRepo) stored(owner uuid.UUID) *models.Cart {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.carts[owner]; ok {
		return cloneCart(c)
	}
	return nil
}
