package handlers

import (
	"errors"
	"fmt"
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

var errProductNotFound = errors.New("product not found")

type OrderItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type CreateOrderRequest struct {
	// RequestID is optional: when a client retries a create with the same
	// key, the original order is returned instead of a duplicate.
	RequestID string             `json:"request_id"`
	Items     []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

func CreateOrder(c *gin.Context) {

	user := auth.CurrentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateOrderRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if req.RequestID != "" {
		var existing models.Order
		err := db.DB.Preload("Items").Preload("Items.Product").
			Where("request_id = ?", req.RequestID).First(&existing).Error
		if err == nil {
			c.JSON(http.StatusOK, gin.H{"message": "order already created", "order": existing})
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	var order models.Order

	err := db.DB.Transaction(func(tx *gorm.DB) error {

		latestPrices, err := pricing.LatestPrices(tx)
		if err != nil {
			return err
		}

		order = models.Order{
			UserID: user.ID,
			Status: models.StatusPlaced,
			Total:  decimal.Zero,
		}
		if req.RequestID != "" {
			order.RequestID = &req.RequestID
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		// Total is seeded with the convenience fee and accumulated from the
		// snapshot prices. A product with no observation yet prices at 0,
		// until a partner sets a price and reconciliation catches it up.
		total := models.ConvenienceFee
		var orderItems []models.OrderItem

		for _, item := range req.Items {

			var product models.Product
			if err := tx.First(&product, "id = ?", item.ProductID).Error; err != nil {
				return fmt.Errorf("%w with ID: %s", errProductNotFound, item.ProductID)
			}

			price := decimal.Zero
			if latest, ok := latestPrices[item.ProductID]; ok {
				price = latest
			}

			orderItems = append(orderItems, models.OrderItem{
				OrderID:   order.ID,
				ProductID: product.ID,
				Quantity:  item.Quantity,
				Price:     price,
			})

			quantity := decimal.NewFromInt(int64(item.Quantity))
			total = total.Add(price.Mul(quantity))
		}

		if err := tx.CreateInBatches(&orderItems, len(orderItems)).Error; err != nil {
			return err
		}

		// The order row must never commit with the placeholder total.
		order.Total = total
		return tx.Model(&models.Order{}).Where("id = ?", order.ID).Update("total", total).Error
	})

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errProductNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	if err := db.DB.Preload("Items").Preload("Items.Product").First(&order, "id = ?", order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve order with items"})
		return
	}

	go func(user models.User, order models.Order) {

		if err := notifier.SendOrderConfirmationEmail(user.Email, user.Name, order.ID, order.Total); err != nil {
			fmt.Printf("Failed to send confirmation email for order %s to %s: %v\n", order.ID, user.Email, err)
		}
	}(*user, order)

	c.JSON(http.StatusCreated, gin.H{"message": "order created successfully", "order": order})
}

// GET /api/orders/mine — the vendor's own orders with items.
func ListMyOrders(c *gin.Context) {

	user := auth.CurrentUser(c)
	if user == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var orders []models.Order
	err := db.DB.Preload("Items").Preload("Items.Product").
		Where("user_id = ?", user.ID).
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// GET /api/orders — partner-facing: every order with items and vendor info.
func ListAllOrders(c *gin.Context) {

	var orders []models.Order
	err := db.DB.Preload("Items").Preload("Items.Product").Preload("User").
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, orders)
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

// PATCH /api/orders/:id/status
//
// Only forward moves along PLACED -> PROCURING -> ON_THE_WAY are accepted
// here. The DELIVERED transition must go through mark-delivered so the
// delivery record and the status change commit together.
func UpdateOrderStatus(c *gin.Context) {

	var req UpdateOrderStatusRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	if !req.Status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown status: %s", req.Status)})
		return
	}

	if req.Status == models.StatusDelivered {
		c.JSON(http.StatusBadRequest, gin.H{"error": "use mark-delivered to complete an order"})
		return
	}

	var order models.Order
	if err := db.DB.First(&order, "id = ?", c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	if !models.CanTransition(order.Status, req.Status) {
		errorMessage := fmt.Sprintf("illegal status transition: %s -> %s", order.Status, req.Status)
		c.JSON(http.StatusBadRequest, gin.H{"error": errorMessage})
		return
	}

	err := db.DB.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, order.Status).
		Update("status", req.Status).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
		return
	}

	order.Status = req.Status
	c.JSON(http.StatusOK, order)
}
