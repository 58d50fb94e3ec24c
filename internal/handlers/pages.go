package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type PageHandler struct {
	*base
}

func (h *PageHandler) About(c *gin.Context) {
	render(c, http.StatusOK, "pages/about.html", nil)
}

func (h *PageHandler) Rules(c *gin.Context) {
	render(c, http.StatusOK, "pages/rules.html", nil)
}

// NotFound answers unknown routes.
func (h *PageHandler) NotFound(c *gin.Context) {
	notFound(c)
}

// MethodNotAllowed answers known routes hit with an unsupported method.
func (h *PageHandler) MethodNotAllowed(c *gin.Context) {
	render(c, http.StatusMethodNotAllowed, "pages/405.html", nil)
	c.Abort()
}

// Recover renders the 500 page for a panic caught by gin.CustomRecovery.
func (h *PageHandler) Recover(c *gin.Context, recovered any) {
	serverError(c, fmt.Errorf("panic: %v", recovered))
}
