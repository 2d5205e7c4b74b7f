package api

import (
	"booking-system/internal/api/handlers"
	"booking-system/internal/api/interfaces"
	"booking-system/internal/api/middlewares"
	"booking-system/internal/database"
	"booking-system/internal/metrics"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes with proper middleware
func SetupRoutes(router *gin.Engine, services interfaces.Services, limiter *middlewares.RateLimiter) {
	cfg := services.GetConfig()

	// Global middleware
	router.Use(middlewares.RequestLogging(services.GetLogger()))
	router.Use(middlewares.Recovery(services.GetLogger()))
	router.Use(middlewares.CORS(cfg.API.CORS))
	router.Use(middlewares.Security())
	if cfg.API.Metrics {
		router.Use(metrics.Instrument())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}
	if limiter != nil {
		router.Use(limiter.Middleware())
	}

	// Health check (no auth required)
	router.GET("/health", handlers.HealthCheck(services))
	router.GET("/ping", handlers.HealthCheck(services))

	v1 := router.Group("/api/v1")
	{
		setupPublicRoutes(v1, services)
		setupAccountRoutes(v1, services)
		setupStoreRoutes(v1, services)
		setupBookingRoutes(v1, services)
		setupSocialRoutes(v1, services)
	}

	ws := router.Group("/ws")
	ws.Use(middlewares.WSAuthRequired(services))
	{
		ws.GET("/chat/:id", handlers.ChatWebSocket(services))
	}
}

// setupPublicRoutes configures routes that don't require authentication
func setupPublicRoutes(rg *gin.RouterGroup, services interfaces.Services) {
	rg.POST("/register", handlers.Register(services))
	rg.POST("/login", handlers.Login(services))
	rg.GET("/faq", handlers.GetFAQ(services))

	rg.GET("/stores", handlers.ListStores(services))
	rg.GET("/stores/nearby", handlers.NearbyStores(services))
	rg.GET("/stores/:id", handlers.GetStore(services))
	rg.GET("/stores/:id/workers", handlers.ListStoreWorkers(services))
	rg.GET("/workers/:id/slots", handlers.WorkerSlots(services))
}

// setupAccountRoutes configures the authentication and account routes
func setupAccountRoutes(rg *gin.RouterGroup, services interfaces.Services) {
	authenticated := rg.Group("")
	authenticated.Use(middlewares.AuthRequired(services))
	{
		authenticated.DELETE("/delete", handlers.DeleteAccount(services))
		authenticated.PUT("/update", handlers.UpdateAccount(services))
		authenticated.GET("/me", handlers.Me(services))
		authenticated.POST("/logout", handlers.Logout(services))
		authenticated.PUT("/profile", handlers.UpdateProfile(services))
		authenticated.GET("/isStoreOwner", handlers.IsStoreOwner(services))
		authenticated.GET("/is-connected-to-store", handlers.IsConnectedToStore(services))
		authenticated.GET("/activity", handlers.GetActivity(services))
		authenticated.GET("/system/stats", handlers.GetSystemStats(services))

		authenticated.GET("/client", middlewares.RoleRequired(database.RoleClient), handlers.ClientWelcome(services))
		authenticated.GET("/hair", middlewares.RoleRequired(database.RoleWorker), handlers.HairWelcome(services))
	}
}

// setupStoreRoutes configures the store management routes; ownership is checked per store
func setupStoreRoutes(rg *gin.RouterGroup, services interfaces.Services) {
	stores := rg.Group("/stores")
	stores.Use(middlewares.AuthRequired(services), middlewares.RoleRequired(database.RoleWorker))
	{
		stores.POST("", handlers.CreateStore(services))
		stores.PUT("/:id", handlers.UpdateStore(services))
		stores.POST("/:id/pictures", handlers.AddStorePicture(services))
		stores.DELETE("/:id/pictures/:pictureId", handlers.DeleteStorePicture(services))
		stores.POST("/:id/workers", handlers.AddStoreWorker(services))
		stores.DELETE("/:id/workers/:workerId", handlers.RemoveStoreWorker(services))
	}
}

// setupBookingRoutes configures availability and appointment routes
func setupBookingRoutes(rg *gin.RouterGroup, services interfaces.Services) {
	availability := rg.Group("/availability")
	availability.Use(middlewares.AuthRequired(services), middlewares.RoleRequired(database.RoleWorker))
	{
		availability.POST("", handlers.CreateAvailability(services))
		availability.GET("", handlers.ListAvailability(services))
		availability.DELETE("/:id", handlers.DeleteAvailability(services))
	}

	appointments := rg.Group("/appointments")
	appointments.Use(middlewares.AuthRequired(services))
	{
		appointments.POST("", middlewares.RoleRequired(database.RoleClient), handlers.BookAppointment(services))
		appointments.GET("", handlers.ListAppointments(services))
		appointments.POST("/:id/cancel", handlers.CancelAppointment(services))
	}
}

// setupSocialRoutes configures friendship and chat routes
func setupSocialRoutes(rg *gin.RouterGroup, services interfaces.Services) {
	friends := rg.Group("/friends")
	friends.Use(middlewares.AuthRequired(services))
	{
		friends.GET("", handlers.ListFriends(services))
		friends.GET("/requests", handlers.ListFriendRequests(services))
		friends.POST("/:userId", handlers.SendFriendRequest(services))
		friends.POST("/:userId/accept", handlers.AcceptFriendRequest(services))
		friends.DELETE("/:userId", handlers.RemoveFriend(services))
	}

	chat := rg.Group("/chat")
	chat.Use(middlewares.AuthRequired(services))
	{
		chat.POST("/rooms", handlers.OpenChatRoom(services))
		chat.GET("/rooms", handlers.ListChatRooms(services))
		chat.GET("/rooms/:id/messages", handlers.ListMessages(services))
		chat.POST("/rooms/:id/messages", handlers.PostMessage(services))
	}
}
