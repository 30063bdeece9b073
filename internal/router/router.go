package router

import (
	"github.com/gin-gonic/gin"
	"github.com/gustavo180591/ecommerce-zapatillas/config"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/app/controller"
	"github.com/gustavo180591/ecommerce-zapatillas/internal/middleware"
)

type Router struct {
	authController    *controller.AuthController
	productController *controller.ProductController
	cartController    *controller.CartController
	orderController   *controller.OrderController
	paymentController *controller.PaymentController
	reviewController  *controller.ReviewController
	adminController   *controller.AdminController
	authMiddleware    *middleware.AuthMiddleware
	config            *config.Config
}

func NewRouter(
	authController *controller.AuthController,
	productController *controller.ProductController,
	cartController *controller.CartController,
	orderController *controller.OrderController,
	paymentController *controller.PaymentController,
	reviewController *controller.ReviewController,
	adminController *controller.AdminController,
	authMiddleware *middleware.AuthMiddleware,
	cfg *config.Config,
) *Router {
	return &Router{
		authController:    authController,
		productController: productController,
		cartController:    cartController,
		orderController:   orderController,
		paymentController: paymentController,
		reviewController:  reviewController,
		adminController:   adminController,
		authMiddleware:    authMiddleware,
		config:            cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Zapatillas API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", r.authController.Register)
			auth.POST("/login", r.authController.Login)
			auth.POST("/logout", r.authMiddleware.Authenticate(), r.authController.Logout)
			auth.GET("/me", r.authMiddleware.Authenticate(), r.authController.GetProfile)
			auth.PUT("/me", r.authMiddleware.Authenticate(), r.authController.UpdateProfile)
		}

		products := v1.Group("/products")
		{
			products.GET("", r.productController.GetProducts)
			products.GET("/:id", r.productController.GetProduct)
			products.GET("/:id/reviews", r.reviewController.GetProductReviews)
			products.POST("/:id/reviews", r.authMiddleware.Authenticate(), r.reviewController.CreateReview)
		}

		reviews := v1.Group("/reviews", r.authMiddleware.Authenticate())
		{
			reviews.PUT("/:id", r.reviewController.UpdateReview)
			reviews.DELETE("/:id", r.reviewController.DeleteReview)
			reviews.POST("/:id/helpful", r.reviewController.ToggleHelpful)
		}

		// The cart routes serve guests (cookie cart) and logged-in users
		// (durable cart) alike; OptionalAuthenticate decides which.
		cart := v1.Group("/cart", r.authMiddleware.OptionalAuthenticate())
		{
			cart.GET("", r.cartController.GetCart)
			cart.POST("", r.cartController.AddToCart)
			cart.PUT("/:id", r.cartController.UpdateCartItem)
			cart.DELETE("/:id", r.cartController.RemoveCartItem)
			cart.DELETE("", r.cartController.ClearCart)
		}

		orders := v1.Group("/orders", r.authMiddleware.OptionalAuthenticate())
		{
			orders.POST("", r.orderController.Checkout)
			orders.GET("/:id", r.orderController.GetOrder)
			orders.GET("", r.orderController.ListMyOrders)
			orders.POST("/:id/payments", r.paymentController.CreatePayment)
			orders.GET("/:id/payments", r.paymentController.ListOrderPayments)
		}

		webhooks := v1.Group("/webhooks")
		{
			webhooks.POST("/mercadopago", r.paymentController.MercadoPagoWebhook)
			webhooks.POST("/stripe", r.paymentController.StripeWebhook)
		}

		admin := v1.Group("/admin",
			r.authMiddleware.Authenticate(),
			r.authMiddleware.RequireRole("admin"),
		)
		{
			admin.POST("/products", r.adminController.CreateProduct)
			admin.PUT("/products/:id", r.adminController.UpdateProduct)
			admin.DELETE("/products/:id", r.adminController.DeleteProduct)
			admin.POST("/variants/:id/stock", r.adminController.AdjustStock)
			admin.GET("/inventory/export", r.adminController.ExportInventory)
			admin.GET("/reviews", r.reviewController.ListReviews)
			admin.PUT("/reviews/:id/status", r.reviewController.ModerateReview)
			admin.PUT("/orders/:id/ship", r.adminController.ShipOrder)
			admin.PUT("/orders/:id/deliver", r.adminController.DeliverOrder)
			admin.PUT("/orders/:id/cancel", r.adminController.CancelOrder)
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
