package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atlas-backend/internal/shared/middleware"
	"atlas-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.DashboardGuard(),
	)

	api := router.Group("/api")
	{
		api.GET("/health", healthCheckHandler(c))

		setupAuthRoutes(api, c)
		setupPostRoutes(api, c)
		setupUserRoutes(api, c)
		setupUploadRoutes(api, c)
	}

	return router
}

// ========================================
// AUTH ROUTES
// ========================================
func setupAuthRoutes(api *gin.RouterGroup, c *container.Container) {
	auth := api.Group("/auth")
	{
		auth.POST("/signup", c.AuthHandler.SignUp)
		auth.POST("/signin", c.AuthHandler.SignIn)
		auth.GET("/google", c.GoogleHandler.Redirect)
		auth.POST("/google", c.GoogleHandler.Token)
		auth.POST("/signout", c.AuthHandler.SignOut)
		auth.GET("/me", c.AuthHandler.Me)
		auth.GET("/verify-email", c.AuthHandler.VerifyEmail)
	}
}

// ========================================
// POST ROUTES
// ========================================
func setupPostRoutes(api *gin.RouterGroup, c *container.Container) {
	posts := api.Group("/posts")
	{
		posts.GET("", c.PostHandler.List)
		posts.POST("", c.PostHandler.Create)
		posts.GET("/:id", c.PostHandler.Get)
		posts.DELETE("/:id", c.PostHandler.Delete)
	}
}

// ========================================
// USER ROUTES
// ========================================
func setupUserRoutes(api *gin.RouterGroup, c *container.Container) {
	users := api.Group("/users")
	{
		users.PUT("/update", c.AuthHandler.UpdateProfile)
	}
}

// ========================================
// UPLOAD ROUTES
// ========================================
func setupUploadRoutes(api *gin.RouterGroup, c *container.Container) {
	api.POST("/upload", c.UploadHandler.Upload)
}

// healthCheckHandler reports process liveness plus the state of optional
// backing services.
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		dbStatus := "not_configured"
		if c.Config.Database.Configured() {
			dbStatus = "ok"
			if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
				dbStatus = "unavailable"
			}
		}

		cacheStatus := "ok"
		if err := c.Cache.Ping(ctx.Request.Context()); err != nil {
			cacheStatus = "unavailable"
		}

		ctx.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"environment": c.Config.App.Environment,
			"database":    dbStatus,
			"cache":       cacheStatus,
		})
	}
}
