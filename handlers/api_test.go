package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	glogger "gorm.io/gorm/logger"

	"food-marketplace-api/config"
	"food-marketplace-api/handlers"
	"food-marketplace-api/models"
	"food-marketplace-api/routes"
)

func newTestServer(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         glogger.Default.LogMode(glogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.Migrate(db))

	cfg := config.Config{
		JWTSecret: []byte("test-secret"),
		TokenTTL:  time.Hour,
		TaxRate:   decimal.Zero,
		Env:       "test",
	}
	r := gin.New()
	routes.SetupRoutes(r, handlers.New(db, cfg), cfg)
	return db, r
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), "body: %s", w.Body.String())
	return w.Code, env
}

func register(t *testing.T, r *gin.Engine, email string) string {
	t.Helper()
	code, env := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Test User", "email": email, "password": "supersecret",
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func TestRegisterLoginFlow(t *testing.T) {
	_, r := newTestServer(t)

	token := register(t, r, "alice@example.com")

	// registration normalizes the email, so a shouting duplicate is still a duplicate
	code, env := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Shouty Alice", "email": "  ALICE@Example.com ", "password": "supersecret",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, env.Success)
	assert.Equal(t, "email is already registered", env.Message)

	code, env = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "supersecret",
	})
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, env.Success)

	code, env = doJSON(t, r, http.MethodPost, "/api/auth/login", "", gin.H{
		"email": "alice@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "invalid credentials", env.Message)

	code, env = doJSON(t, r, http.MethodGet, "/api/auth/profile", token, nil)
	assert.Equal(t, http.StatusOK, code)
	var profile struct {
		User struct {
			Email        string  `json:"email"`
			PasswordHash *string `json:"passwordHash"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	assert.Equal(t, "alice@example.com", profile.User.Email)
	assert.Nil(t, profile.User.PasswordHash, "password hash must never be serialized")
}

func TestAuthMiddleware(t *testing.T) {
	_, r := newTestServer(t)

	code, env := doJSON(t, r, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, env = doJSON(t, r, http.MethodGet, "/api/auth/profile", "not-a-real-token", nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.False(t, env.Success)
}

func TestRegisterValidation(t *testing.T) {
	_, r := newTestServer(t)

	code, _ := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Shorty", "email": "shorty@example.com", "password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "No At Sign", "email": "not-an-email", "password": "supersecret",
	})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestListRestaurantCategoriesEmpty(t *testing.T) {
	_, r := newTestServer(t)

	code, env := doJSON(t, r, http.MethodGet, "/api/restaurant-categories", "", nil)
	assert.Equal(t, http.StatusOK, code)
	var data struct {
		Categories []json.RawMessage `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.NotNil(t, data.Categories)
	assert.Empty(t, data.Categories)
}

func TestDefaultAddressIsExclusive(t *testing.T) {
	db, r := newTestServer(t)
	token := register(t, r, "alice@example.com")

	makeAddress := func(street string, isDefault bool) {
		code, env := doJSON(t, r, http.MethodPost, "/api/addresses", token, gin.H{
			"street": street, "city": "Lima", "state": "Lima", "zipCode": "15046",
			"latitude": -12.05, "longitude": -77.03, "isDefault": isDefault,
		})
		require.Equal(t, http.StatusCreated, code, env.Message)
	}
	makeAddress("First St 1", true)
	makeAddress("Second St 2", true)

	var defaults int64
	require.NoError(t, db.Model(&models.Address{}).Where("is_default = ?", true).Count(&defaults).Error)
	assert.Equal(t, int64(1), defaults)

	var current models.Address
	require.NoError(t, db.Where("is_default = ?", true).First(&current).Error)
	assert.Equal(t, "Second St 2", current.Street)
}

func TestFavoriteTargetRules(t *testing.T) {
	db, r := newTestServer(t)
	token := register(t, r, "alice@example.com")

	restaurant := models.Restaurant{
		Name: "La Lucha", Slug: "la-lucha", Street: "Jr. Union 456", City: "Lima",
		State: "Lima", ZipCode: "15001", Latitude: -12.04, Longitude: -77.02,
		Phone: "999888777", DeliveryFee: decimal.RequireFromString("5.00"),
		DeliveryRadius: 5, EstimatedDeliveryTime: 30,
		Status: models.RestaurantActive, IsOpen: true,
	}
	require.NoError(t, db.Create(&restaurant).Error)

	// neither target
	code, _ := doJSON(t, r, http.MethodPost, "/api/favorites", token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	// both targets
	code, _ = doJSON(t, r, http.MethodPost, "/api/favorites", token, gin.H{
		"restaurantId": restaurant.ID, "productId": 1,
	})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env := doJSON(t, r, http.MethodPost, "/api/favorites", token, gin.H{
		"restaurantId": restaurant.ID,
	})
	assert.Equal(t, http.StatusCreated, code, env.Message)

	code, env = doJSON(t, r, http.MethodPost, "/api/favorites", token, gin.H{
		"restaurantId": restaurant.ID,
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "already in favorites", env.Message)
}

func TestPlaceAndCancelOrderOverHTTP(t *testing.T) {
	db, r := newTestServer(t)
	token := register(t, r, "alice@example.com")

	var user models.User
	require.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)
	address := models.Address{
		UserID: user.ID, Street: "Av. Arequipa 123", City: "Lima", State: "Lima",
		ZipCode: "15046", Latitude: -12.05, Longitude: -77.03, Type: models.AddressHome,
	}
	require.NoError(t, db.Create(&address).Error)

	restaurant := models.Restaurant{
		Name: "La Lucha", Slug: "la-lucha", Street: "Jr. Union 456", City: "Lima",
		State: "Lima", ZipCode: "15001", Latitude: -12.04, Longitude: -77.02,
		Phone: "999888777", DeliveryFee: decimal.RequireFromString("5.00"),
		DeliveryRadius: 5, EstimatedDeliveryTime: 30,
		Status: models.RestaurantActive, IsOpen: true,
	}
	require.NoError(t, db.Create(&restaurant).Error)
	product := models.Product{
		RestaurantID: restaurant.ID, Name: "Chicharron Sandwich", Slug: "chicharron",
		Price: decimal.RequireFromString("12.50"), IsAvailable: true,
	}
	require.NoError(t, db.Create(&product).Error)

	code, env := doJSON(t, r, http.MethodPost, "/api/orders", token, gin.H{
		"restaurantId":  restaurant.ID,
		"addressId":     address.ID,
		"paymentMethod": "cash",
		"items":         []gin.H{{"productId": product.ID, "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)

	var placed struct {
		Order struct {
			ID          uint   `json:"id"`
			OrderNumber string `json:"orderNumber"`
			Status      string `json:"status"`
			Subtotal    string `json:"subtotal"`
			Total       string `json:"total"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &placed))
	assert.Equal(t, "pending", placed.Order.Status)
	assert.Equal(t, "25", placed.Order.Subtotal)
	assert.Equal(t, "30", placed.Order.Total)
	assert.NotEmpty(t, placed.Order.OrderNumber)

	// a second user cannot read the order
	otherToken := register(t, r, "bob@example.com")
	code, _ = doJSON(t, r, http.MethodGet, fmt.Sprintf("/api/orders/%d", placed.Order.ID), otherToken, nil)
	assert.Equal(t, http.StatusForbidden, code)

	// cancellation needs a reason
	code, _ = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/orders/%d/cancel", placed.Order.ID), token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, code)

	code, env = doJSON(t, r, http.MethodPut, fmt.Sprintf("/api/orders/%d/cancel", placed.Order.ID), token, gin.H{
		"reason": "ordered by mistake",
	})
	require.Equal(t, http.StatusOK, code, env.Message)

	var order models.Order
	require.NoError(t, db.First(&order, placed.Order.ID).Error)
	assert.Equal(t, models.StatusCancelled, order.Status)
	assert.NotNil(t, order.CancelledAt)
}

func TestOrderStatusUpdateOverHTTP(t *testing.T) {
	db, r := newTestServer(t)
	token := register(t, r, "alice@example.com")

	var user models.User
	require.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)
	address := models.Address{
		UserID: user.ID, Street: "Av. Arequipa 123", City: "Lima", State: "Lima",
		ZipCode: "15046", Latitude: -12.05, Longitude: -77.03, Type: models.AddressHome,
	}
	require.NoError(t, db.Create(&address).Error)
	restaurant := models.Restaurant{
		Name: "La Lucha", Slug: "la-lucha", Street: "Jr. Union 456", City: "Lima",
		State: "Lima", ZipCode: "15001", Latitude: -12.04, Longitude: -77.02,
		Phone: "999888777", DeliveryFee: decimal.RequireFromString("5.00"),
		DeliveryRadius: 5, EstimatedDeliveryTime: 30,
		Status: models.RestaurantActive, IsOpen: true,
	}
	require.NoError(t, db.Create(&restaurant).Error)
	product := models.Product{
		RestaurantID: restaurant.ID, Name: "Chicharron Sandwich", Slug: "chicharron",
		Price: decimal.RequireFromString("12.50"), IsAvailable: true,
	}
	require.NoError(t, db.Create(&product).Error)

	code, env := doJSON(t, r, http.MethodPost, "/api/orders", token, gin.H{
		"restaurantId":  restaurant.ID,
		"addressId":     address.ID,
		"paymentMethod": "card",
		"items":         []gin.H{{"productId": product.ID, "quantity": 1}},
	})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var placed struct {
		Order struct {
			ID uint `json:"id"`
		} `json:"order"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &placed))
	statusPath := fmt.Sprintf("/api/orders/%d/status", placed.Order.ID)

	code, env = doJSON(t, r, http.MethodPut, statusPath, token, gin.H{"status": "confirmed"})
	require.Equal(t, http.StatusOK, code, env.Message)

	// skipping a stage is a state conflict
	code, _ = doJSON(t, r, http.MethodPut, statusPath, token, gin.H{"status": "on_delivery"})
	assert.Equal(t, http.StatusConflict, code)

	// rejection is only reachable from pending
	code, _ = doJSON(t, r, http.MethodPut, statusPath, token, gin.H{"status": "rejected", "reason": "x"})
	assert.Equal(t, http.StatusConflict, code)
}

func TestOrderOnlyReviewVerifiedFromLinkedOrder(t *testing.T) {
	db, r := newTestServer(t)
	token := register(t, r, "alice@example.com")

	var user models.User
	require.NoError(t, db.Where("email = ?", "alice@example.com").First(&user).Error)
	address := models.Address{
		UserID: user.ID, Street: "Av. Arequipa 123", City: "Lima", State: "Lima",
		ZipCode: "15046", Latitude: -12.05, Longitude: -77.03, Type: models.AddressHome,
	}
	require.NoError(t, db.Create(&address).Error)
	restaurant := models.Restaurant{
		Name: "La Lucha", Slug: "la-lucha", Street: "Jr. Union 456", City: "Lima",
		State: "Lima", ZipCode: "15001", Latitude: -12.04, Longitude: -77.02,
		Phone: "999888777", DeliveryFee: decimal.RequireFromString("5.00"),
		DeliveryRadius: 5, EstimatedDeliveryTime: 30,
		Status: models.RestaurantActive, IsOpen: true,
	}
	require.NoError(t, db.Create(&restaurant).Error)

	makeOrder := func(number string, status models.OrderStatus) uint {
		order := models.Order{
			OrderNumber: number, UserID: user.ID, RestaurantID: restaurant.ID,
			AddressID: address.ID, Status: status,
			Subtotal: decimal.RequireFromString("20.00"),
			Total:    decimal.RequireFromString("25.00"),
			PaymentMethod: models.PaymentCash, PaymentStatus: models.PaymentPending,
		}
		require.NoError(t, db.Create(&order).Error)
		return order.ID
	}
	deliveredID := makeOrder("ORD-20250101-AAAAA1", models.StatusDelivered)
	pendingID := makeOrder("ORD-20250101-AAAAA2", models.StatusPending)

	postReview := func(orderID uint) bool {
		code, env := doJSON(t, r, http.MethodPost, "/api/reviews", token, gin.H{
			"orderId": orderID, "rating": 5,
		})
		require.Equal(t, http.StatusCreated, code, env.Message)
		var data struct {
			Review struct {
				IsVerifiedPurchase bool `json:"isVerifiedPurchase"`
			} `json:"review"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		return data.Review.IsVerifiedPurchase
	}

	assert.True(t, postReview(deliveredID), "a delivered linked order is a verified purchase")
	assert.False(t, postReview(pendingID), "an undelivered linked order is not")
}

func TestRegisterRaceLoserGetsDuplicateMessage(t *testing.T) {
	db, r := newTestServer(t)

	// A concurrent registration lands between the duplicate pre-check and the
	// insert; the unique index resolves the race.
	raced := false
	require.NoError(t, db.Callback().Create().Before("gorm:create").Register("register_behind_back", func(tx *gorm.DB) {
		if raced {
			return
		}
		if _, ok := tx.Statement.Dest.(*models.User); !ok {
			return
		}
		raced = true
		tx.Session(&gorm.Session{NewDB: true}).Create(&models.User{
			Name: "First Mover", Email: "alice@example.com", PasswordHash: "x",
		})
	}))
	defer db.Callback().Create().Remove("register_behind_back")

	code, env := doJSON(t, r, http.MethodPost, "/api/auth/register", "", gin.H{
		"name": "Alice", "email": "alice@example.com", "password": "supersecret",
	})
	require.True(t, raced)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "email is already registered", env.Message)
}

func TestValidateCouponEndpoint(t *testing.T) {
	db, r := newTestServer(t)
	token := register(t, r, "alice@example.com")

	restaurant := models.Restaurant{
		Name: "La Lucha", Slug: "la-lucha", Street: "Jr. Union 456", City: "Lima",
		State: "Lima", ZipCode: "15001", Latitude: -12.04, Longitude: -77.02,
		Phone: "999888777", DeliveryFee: decimal.RequireFromString("5.00"),
		DeliveryRadius: 5, EstimatedDeliveryTime: 30,
		Status: models.RestaurantActive, IsOpen: true,
	}
	require.NoError(t, db.Create(&restaurant).Error)
	coupon := models.Coupon{
		Code: "TENOFF", DiscountType: models.DiscountPercentage,
		DiscountValue: decimal.RequireFromString("10"), MaxUsesPerUser: 1,
		ValidFrom: time.Now().Add(-time.Hour), ValidUntil: time.Now().Add(time.Hour),
		IsActive: true,
	}
	require.NoError(t, db.Create(&coupon).Error)

	code, env := doJSON(t, r, http.MethodPost, "/api/coupons/validate", token, gin.H{
		"code": "TENOFF", "restaurantId": restaurant.ID, "subtotal": "50.00",
	})
	require.Equal(t, http.StatusOK, code, env.Message)
	var data struct {
		Discount string `json:"discount"`
		Valid    bool   `json:"valid"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.True(t, data.Valid)
	assert.Equal(t, "5", data.Discount)

	code, env = doJSON(t, r, http.MethodPost, "/api/coupons/validate", token, gin.H{
		"code": "NOPE", "restaurantId": restaurant.ID, "subtotal": "50.00",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "invalid coupon code", env.Message)
}
