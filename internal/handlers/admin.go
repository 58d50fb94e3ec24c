package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogicum/blogicum/internal/database"
	"github.com/blogicum/blogicum/internal/forms"
	"github.com/blogicum/blogicum/internal/logger"
	"github.com/blogicum/blogicum/internal/middleware"
	"github.com/blogicum/blogicum/internal/models"
	"github.com/blogicum/blogicum/internal/pagination"
)

const adminPerPage = 50

// AdminHandler serves the staff area for managing blog content.
type AdminHandler struct {
	*base
}

// RequireStaff must run after LoginRequired.
func (h *AdminHandler) RequireStaff(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil || !user.IsStaff {
		forbidden(c)
		return
	}
	c.Next()
}

func (h *AdminHandler) Index(c *gin.Context) {
	counts := gin.H{}
	for name, model := range map[string]any{
		"categories": &models.Category{},
		"locations":  &models.Location{},
		"posts":      &models.Post{},
		"comments":   &models.Comment{},
	} {
		var n int64
		if err := h.dbc(c).Model(model).Count(&n).Error; err != nil {
			serverError(c, err)
			return
		}
		counts[name] = n
	}
	render(c, http.StatusOK, "admin/index.html", gin.H{"counts": counts})
}

// search matches q case-insensitively against any of the columns.
func search(q string, columns ...string) scope {
	return func(db *gorm.DB) *gorm.DB {
		q = strings.TrimSpace(q)
		if q == "" {
			return db
		}
		like := "%" + strings.ToLower(q) + "%"
		conds := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, col := range columns {
			conds[i] = "LOWER(" + col + ") LIKE ?"
			args[i] = like
		}
		return db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
}

// publishedFilter applies ?published=1 or ?published=0.
func publishedFilter(value, column string) scope {
	return func(db *gorm.DB) *gorm.DB {
		switch value {
		case "1":
			return db.Where(column+" = ?", true)
		case "0":
			return db.Where(column+" = ?", false)
		}
		return db
	}
}

// authorNamed narrows a list joined with users to one author's rows.
func authorNamed(username string) scope {
	return func(db *gorm.DB) *gorm.DB {
		if username = strings.TrimSpace(username); username == "" {
			return db
		}
		return db.Where("users.username = ?", username)
	}
}

// adminPage filters q with scopes and loads one page ordered by order.
// list only shapes the page query (preloads, extra columns).
func adminPage[T any](c *gin.Context, q *gorm.DB, order string, list scope, scopes ...scope) (*pagination.Page[T], error) {
	q = q.Scopes(scopes...).Session(&gorm.Session{})
	listQuery := q.Order(order)
	if list != nil {
		listQuery = listQuery.Scopes(list)
	}
	return pagination.Paginate[T](q, listQuery, c.Query("page"), adminPerPage)
}

func (h *AdminHandler) Categories(c *gin.Context) {
	page, err := adminPage[models.Category](c, h.dbc(c).Model(&models.Category{}), "categories.title", nil,
		search(c.Query("q"), "categories.title", "categories.description"),
		publishedFilter(c.Query("published"), "categories.is_published"),
	)
	if err != nil {
		serverError(c, err)
		return
	}
	render(c, http.StatusOK, "admin/categories.html", gin.H{"page_obj": page, "published_filter": true})
}

func (h *AdminHandler) Locations(c *gin.Context) {
	page, err := adminPage[models.Location](c, h.dbc(c).Model(&models.Location{}), "locations.name", nil,
		search(c.Query("q"), "locations.name"),
		publishedFilter(c.Query("published"), "locations.is_published"),
	)
	if err != nil {
		serverError(c, err)
		return
	}
	render(c, http.StatusOK, "admin/locations.html", gin.H{"page_obj": page, "published_filter": true})
}

func (h *AdminHandler) Posts(c *gin.Context) {
	scopes := []scope{
		search(c.Query("q"), "posts.title", "posts.text", "users.username"),
		publishedFilter(c.Query("published"), "posts.is_published"),
		authorNamed(c.Query("author")),
	}
	if id, err := strconv.ParseUint(c.Query("category"), 10, 64); err == nil {
		scopes = append(scopes, inCategory(uint(id)))
	}

	q := h.dbc(c).Model(&models.Post{}).Joins("JOIN users ON users.id = posts.author_id")
	list := func(db *gorm.DB) *gorm.DB {
		return db.Scopes(models.WithCommentCount, models.WithRelations)
	}
	page, err := adminPage[models.Post](c, q, "posts.pub_date DESC, posts.id DESC", list, scopes...)
	if err != nil {
		serverError(c, err)
		return
	}

	var categories []models.Category
	if err := h.dbc(c).Order("title").Find(&categories).Error; err != nil {
		serverError(c, err)
		return
	}
	render(c, http.StatusOK, "admin/posts.html", gin.H{
		"page_obj":         page,
		"categories":       categories,
		"published_filter": true,
	})
}

func (h *AdminHandler) Comments(c *gin.Context) {
	q := h.dbc(c).Model(&models.Comment{}).
		Joins("JOIN users ON users.id = comments.author_id").
		Joins("JOIN posts ON posts.id = comments.post_id")
	list := func(db *gorm.DB) *gorm.DB {
		return db.Select("comments.*").Preload("Author").Preload("Post")
	}
	page, err := adminPage[models.Comment](c, q, "comments.created_at DESC, comments.id DESC", list,
		search(c.Query("q"), "comments.text", "users.username", "posts.title"),
		authorNamed(c.Query("author")),
	)
	if err != nil {
		serverError(c, err)
		return
	}
	render(c, http.StatusOK, "admin/comments.html", gin.H{"page_obj": page})
}

type categoryForm struct {
	Title       string `form:"title" binding:"required,max=256"`
	Description string `form:"description"`
	Slug        string `form:"slug" binding:"required,max=64,slug"`
	IsPublished bool   `form:"is_published"`

	Errors forms.Errors `form:"-"`
}

// CategoryForm creates a category, or edits the one named by :id.
func (h *AdminHandler) CategoryForm(c *gin.Context) {
	category := &models.Category{IsPublished: true}
	if c.Param("id") != "" {
		id, ok := paramID(c, "id")
		if !ok {
			notFound(c)
			return
		}
		if err := h.dbc(c).First(category, id).Error; err != nil {
			dbError(c, err)
			return
		}
	}

	form := &categoryForm{
		Title:       category.Title,
		Description: category.Description,
		Slug:        category.Slug,
		IsPublished: category.IsPublished,
		Errors:      forms.Errors{},
	}
	data := gin.H{"form": form, "category": category}
	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "admin/category_form.html", data)
		return
	}

	*form = categoryForm{}
	form.Errors = bind(c, form)
	requireText(form.Errors, "description", &form.Description)
	if !form.Errors.Any() {
		var n int64
		if err := h.dbc(c).Model(&models.Category{}).Where("slug = ? AND id <> ?", form.Slug, category.ID).Count(&n).Error; err != nil {
			serverError(c, err)
			return
		}
		if n > 0 {
			form.Errors.Add("slug", "Category with this slug already exists.")
		}
	}
	if form.Errors.Any() {
		render(c, http.StatusOK, "admin/category_form.html", data)
		return
	}

	category.Title = strings.TrimSpace(form.Title)
	category.Description = form.Description
	category.Slug = form.Slug
	category.IsPublished = form.IsPublished
	if err := h.dbc(c).Save(category).Error; err != nil {
		if database.IsUniqueViolation(err) {
			form.Errors.Add("slug", "Category with this slug already exists.")
			render(c, http.StatusOK, "admin/category_form.html", data)
			return
		}
		serverError(c, err)
		return
	}

	logger.Info("category saved", map[string]any{"category_id": category.ID, "slug": category.Slug})
	c.Redirect(http.StatusFound, "/admin/categories/")
}

type locationForm struct {
	Name        string `form:"name" binding:"required,max=256"`
	IsPublished bool   `form:"is_published"`

	Errors forms.Errors `form:"-"`
}

// LocationForm creates a location, or edits the one named by :id.
func (h *AdminHandler) LocationForm(c *gin.Context) {
	location := &models.Location{IsPublished: true}
	if c.Param("id") != "" {
		id, ok := paramID(c, "id")
		if !ok {
			notFound(c)
			return
		}
		if err := h.dbc(c).First(location, id).Error; err != nil {
			dbError(c, err)
			return
		}
	}

	form := &locationForm{Name: location.Name, IsPublished: location.IsPublished, Errors: forms.Errors{}}
	data := gin.H{"form": form, "location": location}
	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "admin/location_form.html", data)
		return
	}

	*form = locationForm{}
	form.Errors = bind(c, form)
	requireText(form.Errors, "name", &form.Name)
	if form.Errors.Any() {
		render(c, http.StatusOK, "admin/location_form.html", data)
		return
	}

	location.Name = form.Name
	location.IsPublished = form.IsPublished
	if err := h.dbc(c).Save(location).Error; err != nil {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, "/admin/locations/")
}

// TogglePublished flips is_published on a category, location or post.
func (h *AdminHandler) TogglePublished(table, back string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c, "id")
		if !ok {
			notFound(c)
			return
		}
		res := h.dbc(c).Table(table).
			Where("id = ?", id).
			Update("is_published", gorm.Expr("NOT is_published"))
		if res.Error != nil {
			serverError(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			notFound(c)
			return
		}
		logger.Info("publication toggled", map[string]any{"table": table, "id": id})
		c.Redirect(http.StatusFound, back)
	}
}

// DeleteComment removes any comment.
func (h *AdminHandler) DeleteComment(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		notFound(c)
		return
	}
	res := h.dbc(c).Delete(&models.Comment{}, id)
	if res.Error != nil {
		serverError(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		notFound(c)
		return
	}
	c.Redirect(http.StatusFound, "/admin/comments/")
}
