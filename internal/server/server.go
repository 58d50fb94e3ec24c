package server

import (
	"fmt"
	"io/fs"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/blogicum/blogicum/internal/auth"
	"github.com/blogicum/blogicum/internal/config"
	"github.com/blogicum/blogicum/internal/database"
	"github.com/blogicum/blogicum/internal/forms"
	"github.com/blogicum/blogicum/internal/handlers"
	"github.com/blogicum/blogicum/internal/logger"
	"github.com/blogicum/blogicum/internal/middleware"
	"github.com/blogicum/blogicum/internal/notify"
	"github.com/blogicum/blogicum/internal/render"
	"github.com/blogicum/blogicum/internal/storage"
	"github.com/blogicum/blogicum/web"
)

type Server struct {
	cfg      config.Config
	db       database.Service
	media    storage.Store
	sessions *auth.Sessions
	handler  *handlers.Handler
}

// New wires the handlers to their collaborators.
func New(cfg config.Config, db database.Service, media storage.Store, notifier notify.Notifier) *Server {
	if cfg.TimeZone == nil {
		cfg.TimeZone = time.UTC
	}
	if cfg.LoginRateLimit < 1 {
		cfg.LoginRateLimit = 5
	}
	sessions := auth.NewSessions(cfg.JWTSecret, cfg.SessionTTL, cfg.CookieSecure)

	handler := handlers.NewHandler(db.GetDB(), handlers.Options{
		Sessions: sessions,
		Media:    media,
		Notifier: notifier,
		PerPage:  cfg.PostsPerPage,
		Location: cfg.TimeZone,
	})

	return &Server{
		cfg:      cfg,
		db:       db,
		media:    media,
		sessions: sessions,
		handler:  handler,
	}
}

// HTTPServer builds the http.Server for the configured port.
func (s *Server) HTTPServer() (*http.Server, error) {
	router, err := s.RegisterRoutes()
	if err != nil {
		return nil, err
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + s.cfg.Port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return server, nil
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() (*gin.Engine, error) {
	forms.Setup()

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.MaxMultipartMemory = 8 << 20
	// ClientIP keys the login limiter; forwarded headers count only from these peers.
	if err := r.SetTrustedProxies(s.cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	renderer, err := render.New(web.FS, "templates", render.Funcs(s.media.URL, s.cfg.TimeZone))
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	for _, page := range []string{"pages/403.html", "pages/404.html", "pages/405.html", "pages/500.html"} {
		if !renderer.Has(page) {
			return nil, fmt.Errorf("load templates: missing %s", page)
		}
	}
	r.HTMLRender = renderer

	h := s.handler
	r.Use(middleware.RequestLogger(logger.Logger))
	r.Use(gin.CustomRecovery(h.Page.Recover))

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return nil, err
	}
	r.StaticFS("/static", http.FS(static))
	if s.cfg.Media.Backend == "local" && strings.HasPrefix(s.cfg.Media.URL, "/") {
		r.Static(strings.TrimSuffix(s.cfg.Media.URL, "/"), s.cfg.Media.Root)
	}

	// Health check endpoint
	r.GET("/health", handlers.Health(s.db.Health))

	// Read-only JSON API
	api := r.Group("/api")
	api.Use(cors.New(s.corsConfig()))
	{
		api.GET("/posts", h.API.Posts)
		api.GET("/posts/:post_id", h.API.Post)
		// Preflight requests are answered by the cors middleware.
		api.OPTIONS("/*path", func(c *gin.Context) { c.AbortWithStatus(http.StatusNoContent) })
	}

	site := r.Group("")
	site.Use(middleware.AuthMiddleware(s.sessions, s.db.GetDB()), middleware.NoCache())

	r.NoRoute(middleware.AuthMiddleware(s.sessions, s.db.GetDB()), h.Page.NotFound)
	r.NoMethod(middleware.AuthMiddleware(s.sessions, s.db.GetDB()), h.Page.MethodNotAllowed)

	// Public pages
	site.GET("/", h.Post.Index)
	site.GET("/posts/:post_id/", h.Post.Detail)
	site.GET("/category/:category_slug/", h.Category.Posts)
	site.GET("/profile/:username/", h.User.Profile)
	site.GET("/pages/about/", h.Page.About)
	site.GET("/pages/rules/", h.Page.Rules)

	// Account routes
	limiter := middleware.NewRateLimiter(s.cfg.LoginRateLimit, time.Minute)
	accounts := site.Group("/auth")
	{
		accounts.Match(getPost, "/registration/", limiter.Limit(), h.Auth.Registration)
		accounts.Match(getPost, "/login/", limiter.Limit(), h.Auth.Login)
		accounts.Match(getPost, "/logout/", h.Auth.Logout)
	}

	// Protected routes (authentication required)
	protected := site.Group("")
	protected.Use(middleware.LoginRequired(handlers.LoginURL))
	{
		protected.Match(getPost, "/posts/create/", h.Post.Create)
		protected.Match(getPost, "/posts/:post_id/edit/", h.Post.Edit)
		protected.Match(getPost, "/posts/:post_id/delete/", h.Post.Delete)
		protected.POST("/posts/:post_id/comment/", h.Comment.Add)
		protected.Match(getPost, "/posts/:post_id/edit_comment/:comment_id/", h.Comment.Edit)
		protected.Match(getPost, "/posts/:post_id/delete_comment/:comment_id/", h.Comment.Delete)
		protected.Match(getPost, "/edit_profile/", h.User.EditProfile)
		protected.Match(getPost, "/auth/password_change/", h.Auth.PasswordChange)
	}

	// Staff area
	admin := protected.Group("/admin")
	admin.Use(h.Admin.RequireStaff)
	{
		admin.GET("/", h.Admin.Index)

		admin.GET("/categories/", h.Admin.Categories)
		admin.Match(getPost, "/categories/add/", h.Admin.CategoryForm)
		admin.Match(getPost, "/categories/:id/", h.Admin.CategoryForm)
		admin.POST("/categories/:id/toggle/", h.Admin.TogglePublished("categories", "/admin/categories/"))

		admin.GET("/locations/", h.Admin.Locations)
		admin.Match(getPost, "/locations/add/", h.Admin.LocationForm)
		admin.Match(getPost, "/locations/:id/", h.Admin.LocationForm)
		admin.POST("/locations/:id/toggle/", h.Admin.TogglePublished("locations", "/admin/locations/"))

		admin.GET("/posts/", h.Admin.Posts)
		admin.POST("/posts/:id/toggle/", h.Admin.TogglePublished("posts", "/admin/posts/"))

		admin.GET("/comments/", h.Admin.Comments)
		admin.POST("/comments/:id/delete/", h.Admin.DeleteComment)
	}

	return r, nil
}

var getPost = []string{http.MethodGet, http.MethodPost}

func (s *Server) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodOptions},
		AllowHeaders:  []string{"Accept", "Content-Type", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(s.cfg.CorsAllowedOrigins) == 0 || slices.Contains(s.cfg.CorsAllowedOrigins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = s.cfg.CorsAllowedOrigins
	}
	return cfg
}
