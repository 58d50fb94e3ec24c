package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blogicum/blogicum/internal/models"
)

// APIHandler exposes visible posts as JSON.
type APIHandler struct {
	*base
}

type postJSON struct {
	*models.Post
	ImageURL string `json:"image_url,omitempty"`
}

type pageJSON struct {
	Count    int64      `json:"count"`
	Page     int        `json:"page"`
	NumPages int        `json:"num_pages"`
	Next     *int       `json:"next"`
	Previous *int       `json:"previous"`
	Results  []postJSON `json:"results"`
}

func (h *APIHandler) toJSON(p *models.Post) postJSON {
	return postJSON{Post: p, ImageURL: h.opts.Media.URL(p.Image)}
}

// Posts returns one page of visible posts.
func (h *APIHandler) Posts(c *gin.Context) {
	page, err := h.postPage(c, true)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	out := pageJSON{
		Count:    page.Total,
		Page:     page.Number,
		NumPages: page.NumPages,
		Results:  make([]postJSON, len(page.Items)),
	}
	if page.HasNext() {
		n := page.NextNumber()
		out.Next = &n
	}
	if page.HasPrevious() {
		n := page.PreviousNumber()
		out.Previous = &n
	}
	for i := range page.Items {
		out.Results[i] = h.toJSON(&page.Items[i])
	}
	c.JSON(http.StatusOK, out)
}

// Post returns a single visible post.
func (h *APIHandler) Post(c *gin.Context) {
	id, ok := paramID(c, "post_id")
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var post models.Post
	err := h.dbc(c).Model(&models.Post{}).
		Scopes(models.Visible(h.now()), models.WithCommentCount, models.WithRelations).
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		if isNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
			return
		}
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}
	c.JSON(http.StatusOK, h.toJSON(&post))
}

// Health reports database status.
func Health(health func() map[string]string) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := health()
		status := http.StatusOK
		if stats["status"] != "up" {
			status = http.StatusServiceUnavailable
		}
		stats["time"] = time.Now().UTC().Format(time.RFC3339)
		c.JSON(status, stats)
	}
}
