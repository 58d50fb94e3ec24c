package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogicum/blogicum/internal/auth"
	"github.com/blogicum/blogicum/internal/logger"
	"github.com/blogicum/blogicum/internal/middleware"
	"github.com/blogicum/blogicum/internal/notify"
	"github.com/blogicum/blogicum/internal/storage"
)

// Options carries the collaborators shared by every handler.
type Options struct {
	Sessions *auth.Sessions
	Media    storage.Store
	Notifier notify.Notifier
	PerPage  int
	Location *time.Location
	Now      func() time.Time
}

// Handler combines all handler types
type Handler struct {
	Auth     *AuthHandler
	Post     *PostHandler
	Comment  *CommentHandler
	Category *CategoryHandler
	User     *UserHandler
	Page     *PageHandler
	Admin    *AdminHandler
	API      *APIHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(db *gorm.DB, opts Options) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.PerPage < 1 {
		opts.PerPage = 10
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Noop{}
	}

	b := &base{db: db, opts: opts}
	return &Handler{
		Auth:     &AuthHandler{base: b},
		Post:     &PostHandler{base: b},
		Comment:  &CommentHandler{base: b},
		Category: &CategoryHandler{base: b},
		User:     &UserHandler{base: b},
		Page:     &PageHandler{base: b},
		Admin:    &AdminHandler{base: b},
		API:      &APIHandler{base: b},
	}
}

type base struct {
	db   *gorm.DB
	opts Options
}

func (b *base) now() time.Time {
	return b.opts.Now().UTC()
}

func (b *base) dbc(c *gin.Context) *gorm.DB {
	return b.db.WithContext(c.Request.Context())
}

// render adds the values every page needs and writes the template.
func render(c *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["user"] = middleware.CurrentUser(c)
	data["request"] = c.Request
	c.HTML(status, name, data)
}

func notFound(c *gin.Context) {
	render(c, http.StatusNotFound, "pages/404.html", nil)
	c.Abort()
}

func forbidden(c *gin.Context) {
	render(c, http.StatusForbidden, "pages/403.html", nil)
	c.Abort()
}

func serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	logger.Error("request failed", err, map[string]any{"path": c.Request.URL.Path})
	render(c, http.StatusInternalServerError, "pages/500.html", nil)
	c.Abort()
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// dbError renders 404 for missing rows and 500 for everything else.
func dbError(c *gin.Context, err error) {
	if isNotFound(err) {
		notFound(c)
		return
	}
	serverError(c, err)
}

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}

func profileURL(username string) string {
	return "/profile/" + username + "/"
}
