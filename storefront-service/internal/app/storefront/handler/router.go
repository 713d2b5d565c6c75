package handler

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"brisamarket/pkg/logger"
	"brisamarket/pkg/metrics"
)

// SetupRoutes настраивает все маршруты Storefront Service с использованием Gin
// Каталог и отзывы читаются публично, всё остальное требует JWT
func SetupRoutes(
	catalogHandler *CatalogHandler,
	cartHandler *CartHandler,
	orderHandler *OrderHandler,
	reviewHandler *ReviewHandler,
	authMiddleware *AuthMiddleware,
) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	// JSON logging middleware для HTTP-запросов
	router.Use(logger.GinLoggerMiddleware())

	// Prometheus metrics middleware
	router.Use(metrics.GinPrometheusMiddleware("storefront-service"))

	// CORS настройки
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://*", "http://*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposeHeaders:    []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "storefront-service",
		})
	})

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Каталог: чтение публичное, мутации для продавцов и админов
	products := router.Group("/products")
	{
		products.GET("", catalogHandler.GetProducts)
		products.GET("/:id", catalogHandler.GetProduct)
		products.GET("/:id/reviews", reviewHandler.GetProductReviews)

		protected := products.Group("")
		protected.Use(authMiddleware.Authenticate())
		{
			protected.POST("", authMiddleware.RequireRole("seller", "admin"), catalogHandler.CreateProduct)
			protected.PATCH("/:id", authMiddleware.RequireRole("seller", "admin"), catalogHandler.UpdateProduct)
			protected.DELETE("/:id", authMiddleware.RequireRole("seller", "admin"), catalogHandler.DeleteProduct)
			protected.POST("/:id/reviews", reviewHandler.CreateReview)
		}
	}

	// Отзывы: мутации требуют аутентификации
	reviews := router.Group("/reviews")
	reviews.Use(authMiddleware.Authenticate())
	{
		reviews.PATCH("/:id", reviewHandler.UpdateReview)
		reviews.DELETE("/:id", reviewHandler.DeleteReview)
		reviews.POST("/:id/like", reviewHandler.LikeReview)
		reviews.POST("/:id/dislike", reviewHandler.DislikeReview)
		reviews.POST("/:id/verify", authMiddleware.RequireRole("admin"), reviewHandler.VerifyReview)
	}

	// Корзина: все операции от имени текущего пользователя
	cart := router.Group("/cart")
	cart.Use(authMiddleware.Authenticate())
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/items", cartHandler.AddItem)
		cart.PATCH("/items/:id", cartHandler.UpdateItem)
		cart.DELETE("/items/:id", cartHandler.RemoveItem)
	}

	// Заказы
	orders := router.Group("/orders")
	orders.Use(authMiddleware.Authenticate())
	{
		orders.POST("", orderHandler.CreateOrder)
		orders.GET("", orderHandler.GetMyOrders)
		orders.GET("/all", authMiddleware.RequireRole("admin"), orderHandler.GetAllOrders)
		orders.GET("/:id", orderHandler.GetOrder)
		orders.POST("/:id/pay", orderHandler.PayOrder)
		orders.POST("/:id/ship", authMiddleware.RequireRole("admin"), orderHandler.ShipOrder)
		orders.POST("/:id/deliver", authMiddleware.RequireRole("admin"), orderHandler.DeliverOrder)
		orders.POST("/:id/cancel", orderHandler.CancelOrder)
	}

	return router
}
