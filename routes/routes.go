package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"prompteria-api/config"
	"prompteria-api/controllers"
	"prompteria-api/logger"
	"prompteria-api/metrics"
	"prompteria-api/middleware"
	"prompteria-api/services"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Config  *config.Config
	Log     logger.Logger
	Store   controllers.Pinger
	Metrics *metrics.Metrics
	Limiter *middleware.RateLimiter

	Auth    *services.AuthService
	Prompts *services.PromptService
	Likes   *services.LikeService
	Views   *services.ViewService
	Lists   *services.ListService
	Users   *services.UserService
}

// NewRouter builds the engine with the global middleware chain and all routes.
func NewRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(SetupCORS())
	r.Use(middleware.SecurityHeaders())
	r.Use(deps.Metrics.Middleware())
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.ErrorHandler(deps.Log))

	SetupRoutes(r, deps)
	return r
}

func SetupRoutes(r *gin.Engine, deps Dependencies) {
	// Controllers
	healthController := controllers.NewHealthController(deps.Store)
	authController := controllers.NewAuthController(deps.Auth)
	promptController := controllers.NewPromptController(deps.Prompts, deps.Likes, deps.Views, deps.Lists)
	userController := controllers.NewUserController(deps.Users, deps.Lists)

	requireAuth := middleware.Auth(deps.Auth)
	optionalAuth := middleware.OptionalAuth(deps.Auth)
	rateLimit := middleware.RateLimit(deps.Limiter, deps.Config.RateLimitPerMinute)

	r.GET("/ping", healthController.Ping)
	r.GET("/health", healthController.Health)
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// Auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/google", authController.GoogleLogin)
		auth.GET("/session", requireAuth, authController.Session)
	}

	// Prompt routes
	prompt := r.Group("/prompt")
	{
		prompt.GET("", promptController.GetFeed)
		prompt.POST("/new", requireAuth, promptController.CreatePrompt)
		prompt.GET("/:id", promptController.GetPrompt)
		prompt.PATCH("/:id", requireAuth, promptController.UpdatePrompt)
		prompt.DELETE("/:id", requireAuth, promptController.DeletePrompt)

		prompt.POST("/:id/like", requireAuth, rateLimit, promptController.ToggleLike)
		prompt.POST("/:id/view", optionalAuth, rateLimit, promptController.RecordView)
	}

	// User routes
	users := r.Group("/users")
	{
		users.GET("/:id", userController.GetUser)
		users.GET("/:id/posts", userController.GetUserPosts)
		users.GET("/:id/likes", userController.GetUserLikes)
	}
}

// SetupCORS allows browser clients from any origin to call the API with a
// bearer token.
func SetupCORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
