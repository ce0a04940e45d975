package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"fuser-service/internal/adapter/gin/handler"
	"fuser-service/internal/adapter/gin/middleware"
	usecase "fuser-service/internal/usecase/user"
)

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(
	userHandler *handler.UserHandler,
	uc usecase.Usecase,
	redisClient *redis.Client,
	rateLimit middleware.RateLimiterConfig,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(log))
	router.Use(middleware.Logger(log))
	router.Use(middleware.RateLimiter(redisClient, rateLimit, log))
	router.Use(middleware.BasicAuth(uc, log))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "fuser-service",
		})
	})

	users := router.Group("/user")
	{
		users.POST("/", userHandler.CreateUser)
		users.GET("/", userHandler.ListUsers)
		users.GET("/:id", userHandler.GetUser)
		users.PUT("/:id", userHandler.UpdateUser)
		users.PATCH("/:id", userHandler.PartialUpdateUser)
		users.DELETE("/:id", userHandler.DeleteUser)
		users.POST("/:id/update-verification", userHandler.UpdateVerification)
		users.POST("/:id/update-balance", userHandler.UpdateBalance)
	}

	return router
}
