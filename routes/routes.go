package routes

import (
	"github.com/gin-gonic/gin"

	"food-marketplace-api/config"
	"food-marketplace-api/handlers"
	"food-marketplace-api/middleware"
)

func SetupRoutes(r *gin.Engine, h *handlers.Handler, cfg config.Config) {
	// ── Public routes ──────────────────────────────────────────────
	public := r.Group("/api")
	{
		public.POST("/auth/register", h.Register)
		public.POST("/auth/login", h.Login)

		public.GET("/restaurant-categories", h.ListRestaurantCategories)

		public.GET("/restaurants", h.ListRestaurants)
		public.GET("/restaurants/:id", h.GetRestaurant)
		public.GET("/restaurants/:id/menu", h.GetMenu)
		public.GET("/restaurants/:id/reviews", h.ListRestaurantReviews)
		public.GET("/products/:id/reviews", h.ListProductReviews)
	}

	// ── Authenticated routes ───────────────────────────────────────
	auth := r.Group("/api")
	auth.Use(middleware.AuthRequired(cfg.JWTSecret))
	{
		auth.GET("/auth/profile", h.GetProfile)
		auth.DELETE("/auth/profile", h.DeleteAccount)

		// Addresses
		auth.GET("/addresses", h.ListAddresses)
		auth.POST("/addresses", h.CreateAddress)
		auth.PUT("/addresses/:id", h.UpdateAddress)
		auth.DELETE("/addresses/:id", h.DeleteAddress)

		// Catalog management
		auth.POST("/restaurant-categories", h.CreateRestaurantCategory)
		auth.PUT("/restaurant-categories/:id", h.UpdateRestaurantCategory)
		auth.DELETE("/restaurant-categories/:id", h.DeleteRestaurantCategory)

		auth.POST("/restaurants", h.CreateRestaurant)
		auth.PUT("/restaurants/:id", h.UpdateRestaurant)
		auth.DELETE("/restaurants/:id", h.DeleteRestaurant)
		auth.PUT("/restaurants/:id/hours", h.SetRestaurantHours)

		auth.POST("/restaurants/:id/product-categories", h.CreateProductCategory)
		auth.DELETE("/product-categories/:id", h.DeleteProductCategory)

		auth.POST("/restaurants/:id/products", h.CreateProduct)
		auth.PUT("/products/:id", h.UpdateProduct)
		auth.DELETE("/products/:id", h.DeleteProduct)

		auth.POST("/products/:id/option-groups", h.CreateOptionGroup)
		auth.DELETE("/option-groups/:id", h.DeleteOptionGroup)
		auth.POST("/option-groups/:id/options", h.CreateOption)
		auth.DELETE("/options/:id", h.DeleteOption)

		// Orders
		auth.POST("/orders", h.PlaceOrder)
		auth.GET("/orders", h.GetMyOrders)
		auth.GET("/orders/:id", h.GetOrderDetail)
		auth.PUT("/orders/:id/status", h.UpdateOrderStatus)
		auth.PUT("/orders/:id/cancel", h.CancelOrder)

		// Coupons
		auth.POST("/coupons", h.CreateCoupon)
		auth.POST("/coupons/validate", h.ValidateCoupon)

		// Engagement
		auth.POST("/reviews", h.CreateReview)
		auth.DELETE("/reviews/:id", h.DeleteReview)
		auth.GET("/favorites", h.ListFavorites)
		auth.POST("/favorites", h.CreateFavorite)
		auth.DELETE("/favorites/:id", h.DeleteFavorite)
	}
}
