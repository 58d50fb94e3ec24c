package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blogicum/blogicum/internal/models"
)

type CategoryHandler struct {
	*base
}

// Posts lists visible posts of a published category.
func (h *CategoryHandler) Posts(c *gin.Context) {
	var category models.Category
	err := h.dbc(c).
		Where("slug = ? AND is_published = ?", c.Param("category_slug"), true).
		First(&category).Error
	if err != nil {
		dbError(c, err)
		return
	}

	page, err := h.postPage(c, true, inCategory(category.ID))
	if err != nil {
		serverError(c, err)
		return
	}
	render(c, http.StatusOK, "blog/category.html", gin.H{
		"category": &category,
		"page_obj": page,
	})
}
