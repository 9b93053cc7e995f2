package repository_test

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "name", "email", "password", "tokens", "created_at", "updated_at"}

func TestNewUserRepo(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewUserRepo(db)
	assert.NotNil(t, repo, "NewUserRepo should return a non-nil repository")
}

func TestUserRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewUserRepo(db)
	ctx := context.Background()

	insertSQL := regexp.QuoteMeta(`INSERT INTO users(id, name, email, password, tokens, created_at, updated_at)`)

	t.Run("CreateUser_Success", func(t *testing.T) {
		// Arrange
		user := &models.User{
			ID:       uuid.New(),
			Name:     "john",
			Email:    "john@example.com",
			Password: "hashedpassword",
			Tokens:   []string{"tok-1"},
		}
		now := time.Now()

		mock.ExpectQuery(insertSQL).
			WithArgs(user.ID, user.Name, user.Email, user.Password, []byte(`["tok-1"]`)).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		// Act
		err := repo.CreateUser(ctx, user)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, now, user.CreatedAt)
		assert.Equal(t, now, user.UpdatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateUser_NilTokensStoredAsEmptyArray", func(t *testing.T) {
		// Arrange
		user := &models.User{ID: uuid.New(), Name: "jane", Email: "jane@example.com", Password: "hash"}
		now := time.Now()

		mock.ExpectQuery(insertSQL).
			WithArgs(user.ID, user.Name, user.Email, user.Password, []byte(`[]`)).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		// Act
		err := repo.CreateUser(ctx, user)

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateUser_DuplicateEmail", func(t *testing.T) {
		// Arrange
		user := &models.User{ID: uuid.New(), Name: "john", Email: "john@example.com", Password: "hash"}

		mock.ExpectQuery(insertSQL).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

		// Act
		err := repo.CreateUser(ctx, user)

		// Assert
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateUser_DBError", func(t *testing.T) {
		// Arrange
		user := &models.User{ID: uuid.New(), Name: "john", Email: "john@example.com", Password: "hash"}
		dbErr := errors.New("connection refused")

		mock.ExpectQuery(insertSQL).WillReturnError(dbErr)

		// Act
		err := repo.CreateUser(ctx, user)

		// Assert
		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, repository.ErrDuplicateEmail)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserByEmail_Success", func(t *testing.T) {
		// Arrange
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE email = $1`)).
			WithArgs("john@example.com").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id.String(), "john", "john@example.com", "hash", []byte(`["a","b"]`), now, now))

		// Act
		user, err := repo.GetUserByEmail(ctx, "john@example.com")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "hash", user.Password)
		assert.Equal(t, []string{"a", "b"}, user.Tokens)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserByEmail_NotFound", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE email = $1`)).
			WithArgs("ghost@example.com").
			WillReturnError(sql.ErrNoRows)

		// Act
		user, err := repo.GetUserByEmail(ctx, "ghost@example.com")

		// Assert
		assert.Nil(t, user)
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserByToken_Success", func(t *testing.T) {
		// Arrange
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND tokens ? $2`)).
			WithArgs(id, "tok-1").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id.String(), "john", "john@example.com", "hash", []byte(`["tok-1"]`), now, now))

		// Act
		user, err := repo.GetUserByToken(ctx, id, "tok-1")

		// Assert
		require.NoError(t, err)
		assert.Contains(t, user.Tokens, "tok-1")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserByToken_RevokedToken", func(t *testing.T) {
		// Arrange
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND tokens ? $2`)).
			WithArgs(id, "revoked").
			WillReturnError(sql.ErrNoRows)

		// Act
		user, err := repo.GetUserByToken(ctx, id, "revoked")

		// Assert
		assert.Nil(t, user)
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AddToken_Success", func(t *testing.T) {
		// Arrange
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta(`SET tokens = tokens || jsonb_build_array($2::text)`)).
			WithArgs(id, "tok-2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		err := repo.AddToken(ctx, id, "tok-2")

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RemoveToken_Success", func(t *testing.T) {
		// Arrange
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta(`SET tokens = tokens - $2::text`)).
			WithArgs(id, "tok-2").
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		err := repo.RemoveToken(ctx, id, "tok-2")

		// Assert
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ClearTokens_UserMissing", func(t *testing.T) {
		// Arrange
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta(`SET tokens = '[]'::jsonb`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act
		err := repo.ClearTokens(ctx, id)

		// Assert
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ClearTokens_DBError", func(t *testing.T) {
		// Arrange
		id := uuid.New()
		dbErr := errors.New("db down")

		mock.ExpectExec(regexp.QuoteMeta(`SET tokens = '[]'::jsonb`)).
			WithArgs(id).
			WillReturnError(dbErr)

		// Act
		err := repo.ClearTokens(ctx, id)

		// Assert
		assert.ErrorIs(t, err, dbErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
