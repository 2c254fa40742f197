package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Pratonic/ApniMandi/internal/auth"
	"github.com/Pratonic/ApniMandi/internal/db"
	"github.com/Pratonic/ApniMandi/internal/models"
	"github.com/Pratonic/ApniMandi/internal/notifier"
	"github.com/Pratonic/ApniMandi/internal/pricing"
)

// CommissionRate is the flat partner cut of each self-reported payment.
var CommissionRate = decimal.NewFromFloat(0.10)

type ProcurementEntry struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	TotalQuantity int    `json:"total_quantity"`
	Unit          string `json:"unit"`
}

// GET /api/partner/procurement — per-product demand across PLACED orders.
// Dashboard read: degrades to an empty list rather than failing.
func GetProcurementList(c *gin.Context) {

	var entries []ProcurementEntry
	err := db.DB.Table("order_items").
		Select("order_items.product_id AS product_id, products.name AS product_name, SUM(order_items.quantity) AS total_quantity, products.unit AS unit").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Joins("JOIN products ON products.id = order_items.product_id").
		Where("orders.status = ?", models.StatusPlaced).
		Group("order_items.product_id, products.name, products.unit").
		Scan(&entries).Error
	if err != nil {
		log.Printf("Failed to fetch aggregated procurement list: %v", err)
		entries = []ProcurementEntry{}
	}

	if entries == nil {
		entries = []ProcurementEntry{}
	}

	c.JSON(http.StatusOK, entries)
}

type ProductWithPrice struct {
	ProductID           string           `json:"product_id"`
	ProductName         string           `json:"product_name"`
	Unit                string           `json:"unit"`
	CurrentPrice        *decimal.Decimal `json:"current_price,omitempty"`
	TotalQuantityNeeded int              `json:"total_quantity_needed"`
}

// GET /api/partner/procurement-list — every catalog product with its
// latest market price (absent when unpriced) and the quantity currently
// demanded by PLACED orders.
func GetProductsWithPrices(c *gin.Context) {

	var products []models.Product
	if err := db.DB.Find(&products).Error; err != nil {
		log.Printf("Failed to fetch products with prices: %v", err)
		c.JSON(http.StatusOK, []ProductWithPrice{})
		return
	}

	latestPrices, err := pricing.LatestPrices(db.DB)
	if err != nil {
		log.Printf("Failed to fetch latest prices: %v", err)
		latestPrices = map[string]decimal.Decimal{}
	}

	type demand struct {
		ProductID string
		Quantity  int
	}
	var demands []demand
	err = db.DB.Table("order_items").
		Select("order_items.product_id AS product_id, SUM(order_items.quantity) AS quantity").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ?", models.StatusPlaced).
		Group("order_items.product_id").
		Scan(&demands).Error
	if err != nil {
		log.Printf("Failed to aggregate order quantities: %v", err)
		demands = nil
	}

	quantityByProduct := make(map[string]int, len(demands))
	for _, d := range demands {
		quantityByProduct[d.ProductID] = d.Quantity
	}

	out := make([]ProductWithPrice, 0, len(products))
	for _, product := range products {
		entry := ProductWithPrice{
			ProductID:           product.ID,
			ProductName:         product.Name,
			Unit:                product.Unit,
			TotalQuantityNeeded: quantityByProduct[product.ID],
		}
		if price, ok := latestPrices[product.ID]; ok {
			entry.CurrentPrice = &price
		}
		out = append(out, entry)
	}

	c.JSON(http.StatusOK, out)
}

type MarkDeliveredRequest struct {
	OrderID         string          `json:"order_id" binding:"required"`
	PaymentReceived decimal.Decimal `json:"payment_received"`
}

// POST /api/partner/mark-delivered
//
// Creates the delivery record and moves the order to DELIVERED in one
// transaction: either both happen or neither does.
func MarkDelivered(c *gin.Context) {

	partner := auth.CurrentUser(c)
	if partner == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req MarkDeliveredRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	if req.PaymentReceived.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "payment_received must not be negative"})
		return
	}

	var delivery models.Delivery
	var vendor models.User

	err := db.DB.Transaction(func(tx *gorm.DB) error {

		var order models.Order
		if err := tx.First(&order, "id = ?", req.OrderID).Error; err != nil {
			return fmt.Errorf("order not found")
		}

		if !models.CanTransition(order.Status, models.StatusDelivered) {
			return fmt.Errorf("illegal status transition: %s -> %s", order.Status, models.StatusDelivered)
		}

		// Payment is self-reported and trusted; a mismatch against the
		// computed total is only logged.
		if !req.PaymentReceived.Equal(order.Total) {
			log.Printf("Order %s payment mismatch: received %s, order total %s",
				order.ID, req.PaymentReceived, order.Total)
		}

		delivery = models.Delivery{
			OrderID:         order.ID,
			PartnerID:       partner.ID,
			PaymentReceived: req.PaymentReceived,
		}
		if err := tx.Create(&delivery).Error; err != nil {
			return err
		}

		if err := tx.First(&vendor, "id = ?", order.UserID).Error; err != nil {
			return err
		}

		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("status", models.StatusDelivered).Error
	})

	if err != nil {
		status := http.StatusBadRequest
		if err.Error() == "order not found" {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	go func(vendor models.User, delivery models.Delivery) {

		if err := notifier.SendDeliverySMS(vendor.Phone, delivery.OrderID, delivery.PaymentReceived); err != nil {
			fmt.Printf("Failed to send delivery SMS for order %s: %v\n", delivery.OrderID, err)
		}
	}(vendor, delivery)

	c.JSON(http.StatusOK, delivery)
}

// GET /api/partner/earnings
//
// Earnings are scoped to the authenticated partner's own deliveries: a
// flat 10% commission on each self-reported payment. Dashboard read,
// degrades to zeroes on failure.
func GetPartnerEarnings(c *gin.Context) {

	partner := auth.CurrentUser(c)
	if partner == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var deliveries []models.Delivery
	if err := db.DB.Where("partner_id = ?", partner.ID).Find(&deliveries).Error; err != nil {
		log.Printf("Failed to fetch partner earnings: %v", err)
		c.JSON(http.StatusOK, gin.H{"total_deliveries": 0, "total_earnings": decimal.Zero})
		return
	}

	totalEarnings := decimal.Zero
	for _, d := range deliveries {
		totalEarnings = totalEarnings.Add(d.PaymentReceived.Mul(CommissionRate))
	}

	c.JSON(http.StatusOK, gin.H{
		"total_deliveries": len(deliveries),
		"total_earnings":   totalEarnings.Round(2),
	})
}
