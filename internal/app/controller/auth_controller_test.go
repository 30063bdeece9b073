package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/model"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/repository"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/service"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/db"
	"github.com/gustavo180591/ecommerce-zapatillas/pkg/cartcookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupAuthControllerTest(t *testing.T) (*gin.Engine, service.AuthService, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(userRepo, "test-secret", 15*time.Minute, 7*24*time.Hour)

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)
	variantRepo := repository.NewVariantRepository(testDB)
	pricing := service.NewPricingService(productRepo, variantRepo)
	stock := service.NewStockService(productRepo, variantRepo)
	cartService := service.NewCartService(cartRepo, productRepo, variantRepo, pricing, stock, controllerTestPolicy())

	ctrl := NewAuthController(authService, cartService)

	router := gin.New()
	router.POST("/register", ctrl.Register)
	router.POST("/login", ctrl.Login)

	return router, authService, testDB
}

func TestAuthController_Register_Success(t *testing.T) {
	router, _, _ := setupAuthControllerTest(t)

	reqBody := RegisterRequest{
		Email:    "test@example.com",
		Password: "password123",
		Name:     "Test User",
		Phone:    "+54 11 5555-5555",
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.NotNil(t, response["user"])
	assert.NotNil(t, response["tokens"])

	user := response["user"].(map[string]interface{})
	assert.Equal(t, "test@example.com", user["email"])
	assert.NotContains(t, user, "password_hash")
}

func TestAuthController_Register_InvalidRequest(t *testing.T) {
	router, _, _ := setupAuthControllerTest(t)

	tests := []struct {
		name    string
		reqBody map[string]interface{}
	}{
		{
			name:    "Invalid email",
			reqBody: map[string]interface{}{"email": "invalid-email", "password": "password123", "name": "Test"},
		},
		{
			name:    "Short password",
			reqBody: map[string]interface{}{"email": "test@example.com", "password": "short", "name": "Test"},
		},
		{
			name:    "Missing name",
			reqBody: map[string]interface{}{"email": "test@example.com", "password": "password123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(tt.reqBody)
			req := httptest.NewRequest("POST", "/register", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestAuthController_Register_DuplicateEmail(t *testing.T) {
	router, authService, _ := setupAuthControllerTest(t)

	_, _, err := authService.Register("test@example.com", "password123", "Test User", "")
	require.NoError(t, err)

	reqBody := RegisterRequest{
		Email:    "test@example.com",
		Password: "password456",
		Name:     "Another User",
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "AUTH_EMAIL_EXISTS", response["error"])
}

func TestAuthController_Login_Success(t *testing.T) {
	router, authService, _ := setupAuthControllerTest(t)

	_, _, err := authService.Register("test@example.com", "password123", "Test User", "")
	require.NoError(t, err)

	reqBody := LoginRequest{
		Email:    "test@example.com",
		Password: "password123",
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	tokens := response["tokens"].(map[string]interface{})
	assert.NotEmpty(t, tokens["access_token"])
	assert.NotEmpty(t, tokens["refresh_token"])
}

func TestAuthController_Login_WrongPassword(t *testing.T) {
	router, authService, _ := setupAuthControllerTest(t)

	_, _, err := authService.Register("test@example.com", "password123", "Test User", "")
	require.NoError(t, err)

	reqBody := LoginRequest{
		Email:    "test@example.com",
		Password: "wrongpassword",
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)

	assert.Equal(t, "AUTH_INVALID_CREDENTIALS", response["error"])
}

func TestAuthController_Login_MergesGuestCartAndClearsCookie(t *testing.T) {
	router, authService, testDB := setupAuthControllerTest(t)

	user, _, err := authService.Register("test@example.com", "password123", "Test User", "")
	require.NoError(t, err)

	product := &model.Product{
		Name:     "Zapatilla Test",
		Brand:    "Nike",
		Category: "Running",
		Price:    5000,
		Currency: "ARS",
		Sizes:    []string{"42"},
		Colors:   []string{"Negro"},
	}
	require.NoError(t, testDB.Create(product).Error)
	require.NoError(t, testDB.Create(&model.Variant{ProductID: product.ID, Size: "42", Color: "Negro", Stock: 10}).Error)

	// The user already holds the line; the cookie quantity sums into it
	cartRepo := repository.NewCartRepository(testDB)
	require.NoError(t, cartRepo.Create(&model.CartItem{
		UserID:    user.ID,
		ProductID: product.ID,
		Size:      "42",
		Color:     "Negro",
		Quantity:  2,
	}))

	cart := cartcookie.New()
	cart.Items = []cartcookie.Item{
		{ProductID: product.ID, Size: "42", Color: "Negro", Quantity: 3},
	}
	value, err := cartcookie.Serialize(cart)
	require.NoError(t, err)

	body, _ := json.Marshal(LoginRequest{Email: "test@example.com", Password: "password123"})
	req := httptest.NewRequest("POST", "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: cartcookie.CookieName, Value: url.QueryEscape(value)})
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	err = json.Unmarshal(w.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.NotNil(t, response["cart"])

	items, err := cartRepo.FindByUserID(user.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity) // 2 + 3

	// The cookie is expired so the same snapshot cannot merge twice
	var cookie *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cartcookie.CookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.Less(t, cookie.MaxAge, 0)
}
