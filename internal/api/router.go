package api

import (
	"strings"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/amiyamandal-dev/inkwell/internal/api/handlers"
	"github.com/amiyamandal-dev/inkwell/internal/api/middleware"
	"github.com/amiyamandal-dev/inkwell/internal/auth"
	"github.com/amiyamandal-dev/inkwell/internal/config"
	"github.com/amiyamandal-dev/inkwell/internal/repository"
	"github.com/amiyamandal-dev/inkwell/pkg/logger"
)

// Handlers groups every HTTP handler the router mounts
type Handlers struct {
	Auth       *handlers.AuthHandler
	Article    *handlers.ArticleHandler
	Category   *handlers.CategoryHandler
	Tag        *handlers.TagHandler
	Comment    *handlers.CommentHandler
	Like       *handlers.LikeHandler
	Profile    *handlers.ProfileHandler
	Search     *handlers.SearchHandler
	Share      *handlers.ShareHandler
	Statistics *handlers.StatisticsHandler
	Upload     *handlers.UploadHandler
	Admin      *handlers.AdminHandler
	Health     *handlers.HealthHandler
}

// Router sets up the HTTP router with all routes and middleware
type Router struct {
	engine     *gin.Engine
	h          Handlers
	jwtManager *auth.JWTManager
	users      repository.UserRepository
	cfg        *config.Config
	logger     *logger.Logger
}

// NewRouter creates a new router
func NewRouter(
	h Handlers,
	jwtManager *auth.JWTManager,
	users repository.UserRepository,
	cfg *config.Config,
	logger *logger.Logger,
) *Router {
	return &Router{
		h:          h,
		jwtManager: jwtManager,
		users:      users,
		cfg:        cfg,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.cfg.Server.Mode)

	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	r.engine.Use(middleware.CORSMiddleware(r.cfg.CORS.AllowedOrigins))
	r.engine.Use(gzip.Gzip(gzip.DefaultCompression))
	r.engine.Use(middleware.LoggerMiddleware(r.logger))

	// Health check endpoints (no rate limiting, no auth)
	r.engine.GET("/health", r.h.Health.Health)
	r.engine.GET("/health/ready", r.h.Health.Readiness)
	r.engine.GET("/health/live", r.h.Health.Liveness)

	// Locally stored uploads are served from their public base path
	if r.cfg.Uploads.Backend == "local" && strings.HasPrefix(r.cfg.Uploads.BaseURL, "/") {
		r.engine.Static(r.cfg.Uploads.BaseURL, r.cfg.Uploads.Dir)
	}

	authRequired := middleware.AuthMiddleware(r.jwtManager, r.users)
	authOptional := middleware.OptionalAuthMiddleware(r.jwtManager, r.users)
	adminOnly := middleware.AdminMiddleware()

	api := r.engine.Group("/api")
	api.Use(middleware.RateLimitMiddleware(
		r.cfg.RateLimit.RequestsPerMinute,
		r.cfg.RateLimit.Burst,
	))

	email := api.Group("/email")
	{
		email.POST("/send-code", r.h.Auth.SendCode)
		email.POST("/verify", r.h.Auth.VerifyEmail)
	}

	users := api.Group("/users")
	{
		users.POST("/register", r.h.Auth.Register)
		users.POST("/login", r.h.Auth.Login)
		users.POST("/refresh", r.h.Auth.RefreshToken)

		protected := users.Group("", authRequired)
		protected.GET("/me", r.h.Auth.GetMe)
		protected.PUT("/me", r.h.Auth.UpdateMe)
		protected.PUT("/change-password", r.h.Auth.ChangePassword)
		protected.DELETE("/:id", r.h.Auth.Delete)
	}

	articles := api.Group("/articles")
	{
		articles.GET("", authOptional, r.h.Article.List)
		articles.GET("/:id", authOptional, r.h.Article.Get)

		protected := articles.Group("", authRequired)
		protected.POST("", r.h.Article.Create)
		protected.POST("/upload", r.h.Article.UploadImage)
		protected.PUT("/:id", r.h.Article.Update)
		protected.DELETE("/:id", r.h.Article.Delete)
	}

	categories := api.Group("/categories")
	{
		categories.GET("", r.h.Category.List)
		categories.GET("/:id", r.h.Category.Get)

		admin := categories.Group("", authRequired, adminOnly)
		admin.POST("", r.h.Category.Create)
		admin.PUT("/:id", r.h.Category.Update)
		admin.DELETE("/:id", r.h.Category.Delete)
	}

	tags := api.Group("/tags")
	{
		tags.GET("", r.h.Tag.List)
		tags.GET("/hot", r.h.Tag.Hot)
		tags.GET("/:id", r.h.Tag.Get)

		admin := tags.Group("", authRequired, adminOnly)
		admin.POST("", r.h.Tag.Create)
		admin.PUT("/:id", r.h.Tag.Update)
		admin.DELETE("/:id", r.h.Tag.Delete)
	}

	comments := api.Group("/comments")
	{
		comments.GET("/article/:articleId", r.h.Comment.ListByArticle)
		comments.GET("/:commentId/replies", r.h.Comment.ListReplies)
		comments.POST("", authRequired, r.h.Comment.Create)
		comments.DELETE("/:commentId", authRequired, r.h.Comment.Delete)
	}

	likes := api.Group("/likes", authRequired)
	{
		likes.POST("/articles/:articleId/like", r.h.Like.ToggleArticle)
		likes.GET("/articles/:articleId/status", r.h.Like.ArticleStatus)
		likes.POST("/comments/:commentId/like", r.h.Like.ToggleComment)
	}

	profile := api.Group("/profile")
	{
		profile.GET("/:id", r.h.Profile.Get)
		profile.GET("/:id/followers", r.h.Profile.Followers)
		profile.GET("/:id/following", r.h.Profile.Following)

		protected := profile.Group("", authRequired)
		protected.PUT("/me", r.h.Profile.Update)
		protected.POST("/avatar", r.h.Profile.UpdateAvatar)
		protected.POST("/follow/:id", r.h.Profile.ToggleFollow)
	}

	search := api.Group("/search")
	{
		search.GET("/articles", r.h.Search.Articles)
		search.GET("/users", authRequired, r.h.Search.Users)
		search.GET("/all", r.h.Search.All)
	}

	share := api.Group("/share/articles")
	{
		share.GET("/:articleId", r.h.Share.View)
		share.GET("/:articleId/link", authRequired, r.h.Share.Link)
		share.GET("/:articleId/data", r.h.Share.Data)
	}

	statistics := api.Group("/statistics")
	{
		statistics.GET("/articles/:articleId", r.h.Statistics.Article)
		statistics.GET("/users/:userId", r.h.Statistics.User)
		statistics.GET("/overall", authRequired, r.h.Statistics.Overall)
		statistics.GET("/hot", r.h.Statistics.Hot)
	}

	stats := api.Group("/stats")
	{
		stats.POST("/articles/:id/view", r.h.Statistics.RegisterView)
		stats.GET("/hot-articles", r.h.Statistics.HotArticles)
		stats.GET("/overview", r.h.Statistics.Overview)
	}

	uploads := api.Group("/uploads", authRequired)
	{
		uploads.POST("/avatars", r.h.Upload.UploadAvatar)
		uploads.POST("/articles", r.h.Upload.UploadArticle)
		uploads.DELETE("/:filename", r.h.Upload.Delete)
	}

	admin := api.Group("/admin", authRequired, adminOnly)
	{
		admin.GET("/dashboard", r.h.Admin.Dashboard)
		admin.GET("/system", r.h.Admin.System)

		admin.GET("/users", r.h.Admin.ListUsers)
		admin.GET("/user/:id", r.h.Admin.GetUser)
		admin.DELETE("/user/:id", r.h.Admin.DeleteUser)
		admin.PUT("/users/:userId/status", r.h.Admin.SetUserStatus)
		admin.POST("/make-admin", r.h.Admin.MakeAdmin)
		admin.POST("/remove-admin", r.h.Admin.RemoveAdmin)

		admin.GET("/articles", r.h.Admin.ListArticles)
		admin.PUT("/articles/:id/status", r.h.Admin.SetArticleStatus)

		admin.GET("/comments", r.h.Admin.ListComments)
		admin.DELETE("/comments/:commentId", r.h.Admin.DeleteComment)
		admin.PUT("/comments/:commentId/restore", r.h.Admin.RestoreComment)

		admin.GET("/search/stats", r.h.Search.Stats)
		admin.POST("/search/reindex", r.h.Search.Reindex)
	}

	return r.engine
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	if r.engine == nil {
		return r.Setup()
	}
	return r.engine
}
