package main

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/Pratonic/ApniMandi/configs"
	"github.com/Pratonic/ApniMandi/internal/auth"
	"github.com/Pratonic/ApniMandi/internal/db"
	"github.com/Pratonic/ApniMandi/internal/handlers"
	"github.com/Pratonic/ApniMandi/internal/models"
)

func main() {

	cfg := config.LoadServerConfig()

	db.Init()

	r := gin.Default()

	// ── session store ──
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions("mandisess", store))

	// ── public endpoints ──
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.POST("/api/auth/register", auth.Register)
	r.POST("/api/auth/login", auth.Login)

	// ── protected API ──
	api := r.Group("/api")
	api.Use(auth.RequireAuth())
	{
		api.GET("/user/:id", handlers.GetUser)
		api.GET("/products", handlers.ListProducts)
		api.GET("/average-price/:productId", handlers.GetAveragePrice)
		api.GET("/procurement-prices", handlers.ListLatestPrices)

		// vendor side
		api.POST("/orders", handlers.CreateOrder)
		api.GET("/orders/mine", handlers.ListMyOrders)

		// partner side
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

	r.Run(cfg.Addr)
}
