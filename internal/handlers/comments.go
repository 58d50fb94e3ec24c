package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"

	"github.com/blogicum/blogicum/internal/logger"
	"github.com/blogicum/blogicum/internal/middleware"
	"github.com/blogicum/blogicum/internal/models"
)

type CommentHandler struct {
	*base
}

// Add creates a comment on a post and always returns to the post page.
func (h *CommentHandler) Add(c *gin.Context) {
	id, ok := paramID(c, "post_id")
	if !ok {
		notFound(c)
		return
	}

	var post models.Post
	if err := h.dbc(c).Preload("Author").First(&post, id).Error; err != nil {
		dbError(c, err)
		return
	}

	form := &commentForm{}
	form.Errors = bind(c, form)
	form.clean()
	if form.Errors.Any() {
		c.Redirect(http.StatusFound, postURL(post.ID))
		return
	}

	user := middleware.CurrentUser(c)
	comment := models.Comment{Text: form.Text, PostID: post.ID, AuthorID: user.ID}
	if err := h.dbc(c).Omit(clause.Associations).Create(&comment).Error; err != nil {
		serverError(c, err)
		return
	}
	comment.Author = *user
	h.notify(c.Request.Context(), &post, &comment)

	c.Redirect(http.StatusFound, postURL(post.ID))
}

// Edit changes the text of the user's own comment.
func (h *CommentHandler) Edit(c *gin.Context) {
	comment, ok := h.ownComment(c)
	if !ok {
		return
	}

	form := &commentForm{Text: comment.Text}
	if c.Request.Method == http.MethodPost {
		form.Errors = bind(c, form)
		form.clean()
		if !form.Errors.Any() {
			if err := h.dbc(c).Model(comment).Update("text", form.Text).Error; err != nil {
				serverError(c, err)
				return
			}
			c.Redirect(http.StatusFound, postURL(comment.PostID))
			return
		}
	}

	render(c, http.StatusOK, "blog/comment.html", gin.H{"form": form, "comment": comment})
}

// Delete asks for confirmation on GET and removes the comment on POST.
func (h *CommentHandler) Delete(c *gin.Context) {
	comment, ok := h.ownComment(c)
	if !ok {
		return
	}

	if c.Request.Method == http.MethodPost {
		if err := h.dbc(c).Delete(comment).Error; err != nil {
			serverError(c, err)
			return
		}
		c.Redirect(http.StatusFound, postURL(comment.PostID))
		return
	}

	render(c, http.StatusOK, "blog/comment.html", gin.H{"comment": comment})
}

// ownComment loads the comment by id within its post; non-authors are
// sent back to the post page.
func (h *CommentHandler) ownComment(c *gin.Context) (*models.Comment, bool) {
	postID, ok := paramID(c, "post_id")
	if !ok {
		notFound(c)
		return nil, false
	}
	commentID, ok := paramID(c, "comment_id")
	if !ok {
		notFound(c)
		return nil, false
	}

	var comment models.Comment
	err := h.dbc(c).Where("id = ? AND post_id = ?", commentID, postID).First(&comment).Error
	if err != nil {
		dbError(c, err)
		return nil, false
	}

	if comment.AuthorID != middleware.CurrentUser(c).ID {
		c.Redirect(http.StatusFound, postURL(postID))
		return nil, false
	}
	return &comment, true
}

// notify runs in the background so a slow SMS gateway never delays the redirect.
func (h *CommentHandler) notify(ctx context.Context, post *models.Post, comment *models.Comment) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	go func() {
		defer cancel()
		if err := h.opts.Notifier.CommentAdded(ctx, post, comment); err != nil {
			logger.Error("comment notification failed", err, map[string]any{"post_id": post.ID})
		}
	}()
}
