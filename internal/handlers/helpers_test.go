package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/Pratonic/ApniMandi/internal/auth"
	"github.com/Pratonic/ApniMandi/internal/db"
	"github.com/Pratonic/ApniMandi/internal/handlers"
	"github.com/Pratonic/ApniMandi/internal/models"
)

const testSessionSecret = "test-secret-key"

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	// Initialize an in-memory SQLite database. The unique shared-cache
	// name keeps every pooled connection on the same database while
	// isolating this test from the others in the package.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		panic("failed to connect test database: " + err.Error())
	}

	// AutoMigrate all relevant models
	err = testDB.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.ProcurementPrice{},
		&models.Delivery{},
	)
	if err != nil {
		panic("failed to auto-migrate models: " + err.Error())
	}

	originalDB := db.DB
	db.SetTestDB(testDB)

	r := gin.New()
	r.Use(gin.Recovery())

	store := cookie.NewStore([]byte(testSessionSecret))
	r.Use(sessions.Sessions("mandisess", store))

	r.POST("/api/auth/register", auth.Register)
	r.POST("/api/auth/login", auth.Login)

	api := r.Group("/api")
	api.Use(auth.RequireAuth())
	{
		api.GET("/user/:id", handlers.GetUser)
		api.GET("/products", handlers.ListProducts)
		api.GET("/average-price/:productId", handlers.GetAveragePrice)
		api.GET("/procurement-prices", handlers.ListLatestPrices)
		api.POST("/orders", handlers.CreateOrder)
		api.GET("/orders/mine", handlers.ListMyOrders)

		partner := api.Group("")
		partner.Use(auth.RequireRole(models.RolePartner))
		{
			partner.GET("/orders", handlers.ListAllOrders)
			partner.PATCH("/orders/:id/status", handlers.UpdateOrderStatus)
			partner.GET("/partner/procurement", handlers.GetProcurementList)
			partner.GET("/partner/procurement-list", handlers.GetProductsWithPrices)
			partner.POST("/partner/set-price", handlers.SetPrice)
			partner.POST("/partner/mark-delivered", handlers.MarkDelivered)
			partner.GET("/partner/earnings", handlers.GetPartnerEarnings)
		}
	}

	t.Cleanup(func() {
		db.SetTestDB(originalDB)
	})

	return r, testDB
}

func newJSONRequest(method, path string, body interface{}) *http.Request {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func performAuthenticatedRequest(router *gin.Engine, method, path string, body interface{}, userID *string) *httptest.ResponseRecorder {
	recorder := httptest.NewRecorder()
	req := newJSONRequest(method, path, body)

	// Create a new context to simulate the session middleware
	tempW := httptest.NewRecorder()
	tempC, _ := gin.CreateTestContext(tempW)
	tempC.Request = httptest.NewRequest(http.MethodGet, "/", nil) // Dummy request for context
	store := cookie.NewStore([]byte(testSessionSecret))
	sessions.Sessions("mandisess", store)(tempC) // Apply session middleware to temp context

	session := sessions.Default(tempC)
	if userID != nil {
		session.Set("user_id", *userID)
	} else {
		session.Delete("user_id") // Ensure no user_id is set if nil
	}
	session.Save()

	// Copy the session cookie from tempC to the actual request
	req.Header.Set("Cookie", tempW.Header().Get("Set-Cookie"))

	router.ServeHTTP(recorder, req)
	return recorder
}

func createTestUser(t *testing.T, testDB *gorm.DB, name, email, role string) models.User {
	user := models.User{
		Email:    email,
		Password: "not-a-real-hash",
		Name:     name,
		Phone:    "",
		Role:     role,
		Status:   models.UserStatusApproved,
	}
	if err := testDB.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return user
}

func createTestProduct(t *testing.T, testDB *gorm.DB, name, unit string) models.Product {
	product := models.Product{Name: name, Unit: unit}
	if err := testDB.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product %s: %v", name, err)
	}
	return product
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
