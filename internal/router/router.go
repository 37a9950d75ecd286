package router

import (
	"github.com/gin-gonic/gin"
	"github.com/wkim/teamshop-backend/config"
	"github.com/wkim/teamshop-backend/internal/app/controller"
	"github.com/wkim/teamshop-backend/internal/middleware"
)

type Router struct {
	authController   *controller.AuthController
	itemController   *controller.ItemController
	cartController   *controller.CartController
	orderController  *controller.OrderController
	playerController *controller.PlayerController
	uploadController *controller.UploadController
	authMiddleware   *middleware.AuthMiddleware
	config           *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	itemController *controller.ItemController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	playerController *controller.PlayerController,
	uploadController *controller.UploadController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:   authController,
		itemController:   itemController,
		cartController:   cartController,
		orderController:  orderController,
		playerController: playerController,
		uploadController: uploadController,
		authMiddleware:   authMiddleware,
		config:           cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "TEAMSHOP API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/request-link", r.authController.RequestLink)
			auth.POST("/verify", r.authController.Verify)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.Me)
		}

		items := v1.Group("/items")
		{
			items.GET("", r.itemController.ListItems)
			items.GET("/:id", r.itemController.GetItem)
		}

		cart := v1.Group("/cart", r.authMiddleware.Authenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("/items", r.cartController.AddItem)
			cart.PUT("/items/:id", r.cartController.UpdateLine)
			cart.DELETE("/items/:id", r.cartController.RemoveLine)
			cart.PUT("/note", r.cartController.SetNote)
		}

		orders := v1.Group("/orders", r.authMiddleware.Authenticate())
		{
			orders.POST("/submit", r.orderController.Submit)
			orders.GET("", r.orderController.ListMine)
			orders.GET("/:id", r.orderController.GetOrder)
		}

		players := v1.Group("/players", r.authMiddleware.Authenticate())
		{
			players.GET("", r.playerController.ListPlayers)
			players.POST("", r.playerController.CreatePlayer)
			players.GET("/me", r.playerController.MyPlayers)
			players.POST("/:id/link", r.playerController.LinkPlayer)
		}

		admin := v1.Group("/admin", r.authMiddleware.Authenticate(), r.authMiddleware.RequireAdmin())
		{
			admin.POST("/items", r.itemController.CreateItem)
			admin.PUT("/items/:id", r.itemController.UpdateItem)
			admin.DELETE("/items/:id", r.itemController.DeleteItem)
			admin.POST("/items/swap", r.itemController.SwapDisplayOrder)
			admin.POST("/items/:id/move", r.itemController.MoveItem)

			admin.GET("/orders", r.orderController.List)
			admin.GET("/orders/export", r.orderController.Export)
			admin.GET("/orders/feed", r.orderController.Feed)
			admin.PUT("/orders/status", r.orderController.BulkUpdateStatus)
			admin.PUT("/orders/:id/status", r.orderController.UpdateStatus)
			admin.PUT("/orders/:id/paid", r.orderController.SetPaid)

			admin.POST("/uploads/item-image", r.uploadController.PresignItemImage)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
