package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/blogicum/blogicum/internal/forms"
	"github.com/blogicum/blogicum/internal/logger"
	"github.com/blogicum/blogicum/internal/middleware"
	"github.com/blogicum/blogicum/internal/models"
	"github.com/blogicum/blogicum/internal/storage"
)

const (
	imagePrefix = "posts_images"
	imageError  = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

type PostHandler struct {
	*base
}

// Index lists publicly visible posts, newest first.
func (h *PostHandler) Index(c *gin.Context) {
	page, err := h.postPage(c, true)
	if err != nil {
		serverError(c, err)
		return
	}
	render(c, http.StatusOK, "blog/index.html", gin.H{"page_obj": page})
}

// Detail shows a post with its comments. Authors see their own posts in
// any state; everyone else only sees visible ones.
func (h *PostHandler) Detail(c *gin.Context) {
	id, ok := paramID(c, "post_id")
	if !ok {
		notFound(c)
		return
	}

	var post models.Post
	if err := h.dbc(c).Scopes(models.WithRelations).First(&post, id).Error; err != nil {
		dbError(c, err)
		return
	}

	user := middleware.CurrentUser(c)
	if (user == nil || user.ID != post.AuthorID) && !post.IsVisible(h.now()) {
		notFound(c)
		return
	}

	var comments []models.Comment
	err := h.dbc(c).Preload("Author").
		Where("post_id = ?", post.ID).
		Order("created_at").Order("id").
		Find(&comments).Error
	if err != nil {
		serverError(c, err)
		return
	}

	render(c, http.StatusOK, "blog/detail.html", gin.H{
		"post":     &post,
		"comments": comments,
		"form":     &commentForm{Errors: forms.Errors{}},
		"now":      h.now(),
	})
}

// Create shows and handles the new post form (PROTECTED - requires authentication)
func (h *PostHandler) Create(c *gin.Context) {
	user := middleware.CurrentUser(c)

	if c.Request.Method != http.MethodPost {
		h.renderForm(c, http.StatusOK, newPostForm(h.now(), h.opts.Location), nil)
		return
	}

	form := &postForm{}
	form.Errors = bind(c, form)
	form.clean(h.opts.Location)
	if err := h.checkChoices(c, form); err != nil {
		serverError(c, err)
		return
	}
	if form.Errors.Any() {
		h.renderForm(c, http.StatusOK, form, nil)
		return
	}

	post := models.Post{AuthorID: user.ID}
	form.apply(&post)

	key, err := h.saveImage(c)
	if errors.Is(err, storage.ErrNotImage) {
		form.Errors.Add("image", imageError)
		h.renderForm(c, http.StatusOK, form, nil)
		return
	} else if err != nil {
		serverError(c, err)
		return
	}
	post.Image = key

	if err := h.dbc(c).Omit(clause.Associations).Create(&post).Error; err != nil {
		h.discardImage(c.Request.Context(), key)
		serverError(c, err)
		return
	}

	logger.Info("post created", map[string]any{"post_id": post.ID, "author": user.Username})
	c.Redirect(http.StatusFound, profileURL(user.Username))
}

// Edit updates a post (PROTECTED - requires ownership)
func (h *PostHandler) Edit(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}

	if c.Request.Method != http.MethodPost {
		h.renderForm(c, http.StatusOK, postFormFrom(post, h.opts.Location, h.opts.Media.URL(post.Image)), post)
		return
	}

	form := &postForm{ImageURL: h.opts.Media.URL(post.Image)}
	form.Errors = bind(c, form)
	form.clean(h.opts.Location)
	if err := h.checkChoices(c, form); err != nil {
		serverError(c, err)
		return
	}
	if form.Errors.Any() {
		h.renderForm(c, http.StatusOK, form, post)
		return
	}

	key, err := h.saveImage(c)
	if errors.Is(err, storage.ErrNotImage) {
		form.Errors.Add("image", imageError)
		h.renderForm(c, http.StatusOK, form, post)
		return
	} else if err != nil {
		serverError(c, err)
		return
	}

	oldImage := post.Image
	form.apply(post)
	switch {
	case key != "":
		post.Image = key
	case form.ClearImage:
		post.Image = ""
	}

	err = h.dbc(c).Model(post).
		Select("title", "text", "pub_date", "category_id", "location_id", "image", "is_published").
		Updates(post).Error
	if err != nil {
		h.discardImage(c.Request.Context(), key)
		serverError(c, err)
		return
	}
	if oldImage != post.Image {
		h.discardImage(c.Request.Context(), oldImage)
	}

	c.Redirect(http.StatusFound, postURL(post.ID))
}

// Delete asks for confirmation on GET and removes the post, its comments
// and its image on POST (PROTECTED - requires ownership)
func (h *PostHandler) Delete(c *gin.Context) {
	post, ok := h.ownPost(c)
	if !ok {
		return
	}

	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "blog/create.html", gin.H{
			"form":     postFormFrom(post, h.opts.Location, h.opts.Media.URL(post.Image)),
			"post":     post,
			"deleting": true,
		})
		return
	}

	err := h.dbc(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(post).Error
	})
	if err != nil {
		serverError(c, err)
		return
	}
	h.discardImage(c.Request.Context(), post.Image)

	user := middleware.CurrentUser(c)
	logger.Info("post deleted", map[string]any{"post_id": post.ID, "author": user.Username})
	c.Redirect(http.StatusFound, profileURL(user.Username))
}

// ownPost loads the post named in the URL. It answers 404 when the post is
// missing and redirects to the post page when the user is not its author.
func (h *PostHandler) ownPost(c *gin.Context) (*models.Post, bool) {
	id, ok := paramID(c, "post_id")
	if !ok {
		notFound(c)
		return nil, false
	}

	var post models.Post
	if err := h.dbc(c).First(&post, id).Error; err != nil {
		dbError(c, err)
		return nil, false
	}

	if post.AuthorID != middleware.CurrentUser(c).ID {
		c.Redirect(http.StatusFound, postURL(post.ID))
		return nil, false
	}
	return &post, true
}

func (h *PostHandler) renderForm(c *gin.Context, status int, form *postForm, post *models.Post) {
	categories, locations, err := h.choices(c)
	if err != nil {
		serverError(c, err)
		return
	}
	render(c, status, "blog/create.html", gin.H{
		"form":       form,
		"post":       post,
		"categories": categories,
		"locations":  locations,
	})
}

// checkChoices makes sure the selected category and location exist.
func (h *PostHandler) checkChoices(c *gin.Context, form *postForm) error {
	var n int64
	if form.Category != 0 {
		if err := h.dbc(c).Model(&models.Category{}).Where("id = ?", form.Category).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			form.Errors.Add("category", "Select a valid choice.")
		}
	}
	if form.Location != 0 {
		if err := h.dbc(c).Model(&models.Location{}).Where("id = ?", form.Location).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			form.Errors.Add("location", "Select a valid choice.")
		}
	}
	return nil
}

// saveImage stores the uploaded image, if there is one, and returns its key.
func (h *PostHandler) saveImage(c *gin.Context) (string, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	} else if err != nil {
		return "", err
	}

	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	contentType, err := sniff(f)
	if err != nil {
		return "", err
	}
	if !storage.IsImage(contentType) {
		return "", storage.ErrNotImage
	}
	return h.opts.Media.Save(c.Request.Context(), imagePrefix, fh.Filename, f, contentType)
}

// sniff detects the content type from the file's leading bytes and rewinds it.
func sniff(f multipart.File) (string, error) {
	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return mtype.String(), nil
}

func (h *PostHandler) discardImage(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := h.opts.Media.Delete(ctx, key); err != nil {
		logger.Error("failed to delete image", err, map[string]any{"key": key})
	}
}
