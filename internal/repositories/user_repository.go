package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	models "github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/google/uuid"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByToken(ctx context.Context, id uuid.UUID, token string) (*models.User, error)
	AddToken(ctx context.Context, id uuid.UUID, token string) error
	RemoveToken(ctx context.Context, id uuid.UUID, token string) error
	ClearTokens(ctx context.Context, id uuid.UUID) error
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, name, email, password, tokens, created_at, updated_at`

// CreateUser inserts the user together with its initial token list.
func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	tokens := user.Tokens
	if tokens == nil {
		tokens = []string{}
	}

	tokensJSON, err := json.Marshal(tokens)
	if err != nil {
		return fmt.Errorf("failed to marshal tokens: %w", err)
	}

	query := `
		INSERT INTO users(id, name, email, password, tokens, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING created_at, updated_at`

	err = r.DB.QueryRowContext(dbCtx, query, user.ID, user.Name, user.Email, user.Password, tokensJSON).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	return nil

}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE email = $1`

	return scanUser(r.DB.QueryRowContext(dbCtx, query, email))

}

// GetUserByToken only matches while token is still in the user's session list.
func (r *userRepository) GetUserByToken(ctx context.Context, id uuid.UUID, token string) (*models.User, error) {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + `
			  FROM users
			  WHERE id = $1 AND tokens ? $2`

	return scanUser(r.DB.QueryRowContext(dbCtx, query, id, token))

}

func (r *userRepository) AddToken(ctx context.Context, id uuid.UUID, token string) error {

	query := `
		UPDATE users
		SET tokens = tokens || jsonb_build_array($2::text), updated_at = NOW()
		WHERE id = $1`

	return r.execUserUpdate(ctx, query, id, token)

}

// RemoveToken is a no-op for tokens that are not in the list.
func (r *userRepository) RemoveToken(ctx context.Context, id uuid.UUID, token string) error {

	query := `
		UPDATE users
		SET tokens = tokens - $2::text, updated_at = NOW()
		WHERE id = $1`

	return r.execUserUpdate(ctx, query, id, token)

}

func (r *userRepository) ClearTokens(ctx context.Context, id uuid.UUID) error {

	query := `
		UPDATE users
		SET tokens = '[]'::jsonb, updated_at = NOW()
		WHERE id = $1`

	return r.execUserUpdate(ctx, query, id)

}

func (r *userRepository) execUserUpdate(ctx context.Context, query string, args ...any) error {

	dbCtx, cancel := utils.WithDBTimeout(ctx)
	defer cancel()

	result, err := r.DB.ExecContext(dbCtx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return ErrUserNotFound
	}

	return nil

}

func scanUser(row rowScanner) (*models.User, error) {

	user := &models.User{}
	var tokensJSON []byte

	err := row.Scan(&user.ID, &user.Name, &user.Email, &user.Password, &tokensJSON, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(tokensJSON, &user.Tokens); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tokens: %w", err)
	}

	return user, nil

}
