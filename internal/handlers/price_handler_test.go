package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Pratonic/ApniMandi/internal/handlers"
	"github.com/Pratonic/ApniMandi/internal/models"
)

func TestSetPriceHandler(t *testing.T) {

	router, testDB := setupTestRouter(t)

	vendor := createTestUser(t, testDB, "Ramesh", "ramesh@example.com", models.RoleVendor)
	partner := createTestUser(t, testDB, "Kiran", "kiran@example.com", models.RolePartner)
	partnerID := partner.ID
	onions := createTestProduct(t, testDB, "Onions", "kg")
	potatoes := createTestProduct(t, testDB, "Potatoes", "kg")

	now := time.Now()
	testDB.Create(&models.ProcurementPrice{ProductID: onions.ID, Price: dec("15.00"), Date: now.Add(-time.Hour)})
	testDB.Create(&models.ProcurementPrice{ProductID: potatoes.ID, Price: dec("10.00"), Date: now.Add(-time.Hour)})

	// Open order priced off the current market: 40 + 15x2 + 10x3 = 100.00
	order := models.Order{UserID: vendor.ID, Status: models.StatusPlaced, Total: dec("100.00")}
	testDB.Create(&order)
	onionItem := models.OrderItem{OrderID: order.ID, ProductID: onions.ID, Quantity: 2, Price: dec("15.00")}
	potatoItem := models.OrderItem{OrderID: order.ID, ProductID: potatoes.ID, Quantity: 3, Price: dec("10.00")}
	testDB.Create(&onionItem)
	testDB.Create(&potatoItem)

	t.Run("Stores the observation and reconciles open orders", func(t *testing.T) {
		reqBody := handlers.SetPriceRequest{ProductID: onions.ID, Price: dec("18.00")}
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/partner/set-price", reqBody, &partnerID)

		assert.Equal(t, http.StatusOK, recorder.Code)

		var observation models.ProcurementPrice
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &observation))
		assert.NotEmpty(t, observation.ID)
		assert.True(t, observation.Price.Equal(dec("18.00")))

		// The open order's onion line was rewritten and the total
		// recomputed: 40 + 18x2 + 10x3 = 106.00
		var updatedItem models.OrderItem
		testDB.First(&updatedItem, "id = ?", onionItem.ID)
		assert.True(t, updatedItem.Price.Equal(dec("18.00")), "got %s", updatedItem.Price)

		var updatedOrder models.Order
		testDB.First(&updatedOrder, "id = ?", order.ID)
		assert.True(t, updatedOrder.Total.Equal(dec("106.00")), "got %s", updatedOrder.Total)

		// The untouched potato line keeps its price.
		var untouched models.OrderItem
		testDB.First(&untouched, "id = ?", potatoItem.ID)
		assert.True(t, untouched.Price.Equal(dec("10.00")))
	})

	t.Run("Appends rather than overwriting the ledger", func(t *testing.T) {
		reqBody := handlers.SetPriceRequest{ProductID: onions.ID, Price: dec("19.00")}
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/partner/set-price", reqBody, &partnerID)
		assert.Equal(t, http.StatusOK, recorder.Code)

		var count int64
		testDB.Model(&models.ProcurementPrice{}).Where("product_id = ?", onions.ID).Count(&count)
		assert.Equal(t, int64(3), count)
	})

	t.Run("Never touches a delivered order", func(t *testing.T) {
		delivered := models.Order{UserID: vendor.ID, Status: models.StatusDelivered, Total: dec("70.00")}
		testDB.Create(&delivered)
		frozen := models.OrderItem{OrderID: delivered.ID, ProductID: onions.ID, Quantity: 2, Price: dec("15.00")}
		testDB.Create(&frozen)

		reqBody := handlers.SetPriceRequest{ProductID: onions.ID, Price: dec("25.00")}
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/partner/set-price", reqBody, &partnerID)
		assert.Equal(t, http.StatusOK, recorder.Code)

		var frozenReloaded models.OrderItem
		testDB.First(&frozenReloaded, "id = ?", frozen.ID)
		assert.True(t, frozenReloaded.Price.Equal(dec("15.00")), "delivered item was rewritten")

		var deliveredReloaded models.Order
		testDB.First(&deliveredReloaded, "id = ?", delivered.ID)
		assert.True(t, deliveredReloaded.Total.Equal(dec("70.00")), "delivered total was rewritten")
	})

	t.Run("Rejects a non-positive price with no ledger write", func(t *testing.T) {
		var before int64
		testDB.Model(&models.ProcurementPrice{}).Count(&before)

		reqBody := handlers.SetPriceRequest{ProductID: onions.ID, Price: dec("0")}
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/partner/set-price", reqBody, &partnerID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		reqBody = handlers.SetPriceRequest{ProductID: onions.ID, Price: dec("-4.00")}
		recorder = performAuthenticatedRequest(router, http.MethodPost, "/api/partner/set-price", reqBody, &partnerID)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)

		var after int64
		testDB.Model(&models.ProcurementPrice{}).Count(&after)
		assert.Equal(t, before, after)
	})

	t.Run("Returns 404 for an unknown product", func(t *testing.T) {
		reqBody := handlers.SetPriceRequest{ProductID: "no-such-product", Price: dec("12.00")}
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/partner/set-price", reqBody, &partnerID)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("Vendors cannot set prices", func(t *testing.T) {
		vendorID := vendor.ID
		reqBody := handlers.SetPriceRequest{ProductID: onions.ID, Price: dec("12.00")}
		recorder := performAuthenticatedRequest(router, http.MethodPost, "/api/partner/set-price", reqBody, &vendorID)
		assert.Equal(t, http.StatusForbidden, recorder.Code)
	})
}

func TestListLatestPricesHandler(t *testing.T) {

	router, testDB := setupTestRouter(t)

	vendor := createTestUser(t, testDB, "Ramesh", "ramesh@example.com", models.RoleVendor)
	vendorID := vendor.ID
	onions := createTestProduct(t, testDB, "Onions", "kg")
	potatoes := createTestProduct(t, testDB, "Potatoes", "kg")

	now := time.Now()
	testDB.Create(&models.ProcurementPrice{ProductID: onions.ID, Price: dec("12.00"), Date: now.Add(-2 * time.Hour)})
	testDB.Create(&models.ProcurementPrice{ProductID: onions.ID, Price: dec("15.00"), Date: now.Add(-1 * time.Hour)})
	testDB.Create(&models.ProcurementPrice{ProductID: potatoes.ID, Price: dec("10.00"), Date: now.Add(-1 * time.Hour)})

	recorder := performAuthenticatedRequest(router, http.MethodGet, "/api/procurement-prices", nil, &vendorID)
	assert.Equal(t, http.StatusOK, recorder.Code)

	var observations []models.ProcurementPrice
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &observations))
	assert.Len(t, observations, 2)

	byProduct := map[string]models.ProcurementPrice{}
	for _, observation := range observations {
		byProduct[observation.ProductID] = observation
	}
	assert.True(t, byProduct[onions.ID].Price.Equal(dec("15.00")))
	assert.True(t, byProduct[potatoes.ID].Price.Equal(dec("10.00")))
}
