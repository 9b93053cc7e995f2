package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/handlers"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/services/mocks"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/testutils"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupCartTest(t *testing.T) (*mocks.CartService, *handlers.CartHandler) {
	mockCartService := mocks.NewCartService(t)
	return mockCartService, handlers.NewCartHandler(mockCartService, utils.NewValidator())
}

func TestGetCart(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockCartService, cartHandler := setupCartTest(t)
		user := testutils.TestUser()
		itemID := uuid.New()
		cart := &models.Cart{
			ID:    uuid.New(),
			Owner: user.ID,
			Items: []models.LineItem{{ItemID: itemID, Name: "lamp", Quantity: 2, Price: 5}},
			Bill:  10,
		}
		mockCartService.On("GetCart", mock.Anything, user.ID).Return(cart, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/cart", nil, user, nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.GetCart()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		var got models.Cart
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
		assert.Equal(t, 10.0, got.Bill)
		require.Len(t, got.Items, 1)
		assert.Equal(t, itemID, got.Items[0].ItemID)
	})

	t.Run("No Cart Writes Null", func(t *testing.T) {
		// Arrange
		mockCartService, cartHandler := setupCartTest(t)
		user := testutils.TestUser()
		mockCartService.On("GetCart", mock.Anything, user.ID).Return(nil, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/cart", nil, user, nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.GetCart()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "null", strings.TrimSpace(recorder.Body.String()))
	})

	t.Run("Failure - Unauthenticated", func(t *testing.T) {
		// Arrange
		_, cartHandler := setupCartTest(t)
		req := testutils.CreateTestRequestWithoutContext(http.MethodGet, "/cart", nil, nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.GetCart()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		assert.Contains(t, decodeError(t, recorder).Message, "Authentication required")
	})
}

func TestAddItem(t *testing.T) {
	itemID := uuid.New()
	body := `{"itemId":"` + itemID.String() + `","quantity":2}`

	matchRequest := mock.MatchedBy(func(req *models.AddItemRequest) bool {
		return req.ItemID == itemID && req.Quantity == 2
	})

	t.Run("Success - New Cart", func(t *testing.T) {
		// Arrange
		mockCartService, cartHandler := setupCartTest(t)
		user := testutils.TestUser()
		cart := &models.Cart{ID: uuid.New(), Owner: user.ID, Items: []models.LineItem{{ItemID: itemID, Quantity: 2, Price: 3}}, Bill: 6}
		mockCartService.On("AddItem", mock.Anything, user.ID, matchRequest).Return(cart, true, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/cart", strings.NewReader(body), user, nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.AddItem()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusCreated, recorder.Code)
	})

	t.Run("Success - Existing Cart", func(t *testing.T) {
		// Arrange
		mockCartService, cartHandler := setupCartTest(t)
		user := testutils.TestUser()
		cart := &models.Cart{ID: uuid.New(), Owner: user.ID, Items: []models.LineItem{{ItemID: itemID, Quantity: 4, Price: 3}}, Bill: 12}
		mockCartService.On("AddItem", mock.Anything, user.ID, matchRequest).Return(cart, false, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/cart", strings.NewReader(body), user, nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.AddItem()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)

		var got models.Cart
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
		assert.Equal(t, 12.0, got.Bill)
	})

	t.Run("Failure - Zero Quantity", func(t *testing.T) {
		// Arrange
		_, cartHandler := setupCartTest(t)
		invalid := `{"itemId":"` + itemID.String() + `","quantity":0}`
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/cart", strings.NewReader(invalid), testutils.TestUser(), nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.AddItem()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, appErrors.ErrCodeValidation, decodeError(t, recorder).Code)
	})

	t.Run("Failure - Quantity Above Line Limit", func(t *testing.T) {
		// Arrange
		_, cartHandler := setupCartTest(t)
		invalid := `{"itemId":"` + itemID.String() + `","quantity":10001}`
		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/cart", strings.NewReader(invalid), testutils.TestUser(), nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.AddItem()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, appErrors.ErrCodeValidation, decodeError(t, recorder).Code)
	})

	t.Run("Failure - Unknown Item", func(t *testing.T) {
		// Arrange
		mockCartService, cartHandler := setupCartTest(t)
		user := testutils.TestUser()
		mockCartService.On("AddItem", mock.Anything, user.ID, matchRequest).
			Return(nil, false, appErrors.NotFoundError("Item not found")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/cart", strings.NewReader(body), user, nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.AddItem()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("Failure - Concurrent Modification", func(t *testing.T) {
		// Arrange
		mockCartService, cartHandler := setupCartTest(t)
		user := testutils.TestUser()
		mockCartService.On("AddItem", mock.Anything, user.ID, matchRequest).
			Return(nil, false, appErrors.ConflictError("Cart was modified concurrently, please retry")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPost, "/cart", strings.NewReader(body), user, nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.AddItem()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusConflict, recorder.Code)
		assert.Equal(t, appErrors.ErrCodeConflict, decodeError(t, recorder).Code)
	})
}

func TestRemoveItem(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// Arrange
		mockCartService, cartHandler := setupCartTest(t)
		user := testutils.TestUser()
		itemID := uuid.New()
		cart := &models.Cart{ID: uuid.New(), Owner: user.ID, Items: []models.LineItem{}}
		mockCartService.On("RemoveItem", mock.Anything, user.ID, itemID).Return(cart, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/cart?itemId="+itemID.String(), nil, user, nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.RemoveItem()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusOK, recorder.Code)
	})

	t.Run("Failure - Missing itemId", func(t *testing.T) {
		// Arrange
		_, cartHandler := setupCartTest(t)
		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/cart", nil, testutils.TestUser(), nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.RemoveItem()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.Equal(t, "itemId is required", decodeError(t, recorder).Message)
	})

	t.Run("Failure - Invalid itemId", func(t *testing.T) {
		// Arrange
		_, cartHandler := setupCartTest(t)
		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/cart?itemId=nope", nil, testutils.TestUser(), nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.RemoveItem()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("Failure - Item Not In Cart", func(t *testing.T) {
		// Arrange
		mockCartService, cartHandler := setupCartTest(t)
		user := testutils.TestUser()
		itemID := uuid.New()
		mockCartService.On("RemoveItem", mock.Anything, user.ID, itemID).
			Return(nil, appErrors.NotFoundError("Item not found in cart")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodDelete, "/cart?itemId="+itemID.String(), nil, user, nil)
		recorder := httptest.NewRecorder()

		// Act
		cartHandler.RemoveItem()(recorder, req)

		// Assert
		assert.Equal(t, http.StatusNotFound, recorder.Code)
		assert.Equal(t, "Item not found in cart", decodeError(t, recorder).Message)
	})
}
