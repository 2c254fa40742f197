package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Pratonic/ApniMandi/internal/db"
	"github.com/Pratonic/ApniMandi/internal/models"
	"github.com/Pratonic/ApniMandi/internal/pricing"
)

type SetPriceRequest struct {
	ProductID string          `json:"product_id" binding:"required"`
	Price     decimal.Decimal `json:"price"`
}

// POST /api/partner/set-price
//
// Records the observation first, then propagates it to open orders. A
// reconciliation failure is logged and swallowed: the observation is
// already in the ledger and the submission still succeeds, at the cost
// of totals staying stale until the next price update.
func SetPrice(c *gin.Context) {

	var req SetPriceRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id and price are required"})
		return
	}

	var product models.Product
	if err := db.DB.First(&product, "id = ?", req.ProductID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	observation, err := pricing.RecordPrice(db.DB, req.ProductID, req.Price)
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidPrice) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := pricing.ReconcileOpenOrders(db.DB); err != nil {
		log.Printf("Price recorded for product %s but reconciliation failed: %v", req.ProductID, err)
	}

	c.JSON(http.StatusOK, observation)
}

// GET /api/procurement-prices — the latest observation per product.
// Dashboard read: degrades to an empty list rather than failing.
func ListLatestPrices(c *gin.Context) {

	observations, err := pricing.LatestObservations(db.DB)
	if err != nil {
		log.Printf("Failed to fetch latest procurement prices: %v", err)
		c.JSON(http.StatusOK, []models.ProcurementPrice{})
		return
	}

	c.JSON(http.StatusOK, observations)
}
