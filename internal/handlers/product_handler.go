package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/Pratonic/ApniMandi/internal/db"
	"github.com/Pratonic/ApniMandi/internal/models"
	"github.com/Pratonic/ApniMandi/internal/pricing"
)

// GET /api/products
func ListProducts(c *gin.Context) {

	var products []models.Product
	if err := db.DB.Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, products)
}

// GET /api/average-price/:productId?date=2006-01-02
//
// Vendor-facing daily average. An average of 0 means no observations in
// that window, not a free product. Degrades to 0 if the read fails.
func GetAveragePrice(c *gin.Context) {

	productID := c.Param("productId")

	var product models.Product
	if err := db.DB.First(&product, "id = ?", productID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	day := time.Now()
	if dateParam := c.Query("date"); dateParam != "" {
		parsed, err := time.ParseInLocation("2006-01-02", dateParam, time.Local)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
			return
		}
		day = parsed
	}

	average, err := pricing.AveragePriceForDay(db.DB, productID, day)
	if err != nil {
		log.Printf("Failed to calculate average price for product %s: %v", productID, err)
		average = decimal.Zero
	}

	c.JSON(http.StatusOK, gin.H{
		"product_id":    productID,
		"average_price": average,
		"date":          day.Format("2006-01-02"),
	})
}
