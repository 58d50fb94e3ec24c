package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/blogicum/blogicum/internal/database"
	"github.com/blogicum/blogicum/internal/middleware"
	"github.com/blogicum/blogicum/internal/models"
)

const usernameTaken = "A user with that username already exists."

type UserHandler struct {
	*base
}

// Profile shows a user's posts: all of them to the owner, only visible
// ones to everyone else.
func (h *UserHandler) Profile(c *gin.Context) {
	var profile models.User
	if err := h.dbc(c).Where("username = ?", c.Param("username")).First(&profile).Error; err != nil {
		dbError(c, err)
		return
	}

	current := middleware.CurrentUser(c)
	filterPublished := current == nil || current.ID != profile.ID

	page, err := h.postPage(c, filterPublished, byAuthor(profile.ID))
	if err != nil {
		serverError(c, err)
		return
	}
	render(c, http.StatusOK, "blog/profile.html", gin.H{
		"profile":  &profile,
		"page_obj": page,
	})
}

// EditProfile updates the signed-in user's details.
func (h *UserHandler) EditProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)

	form := &profileForm{
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
	}
	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "blog/user.html", gin.H{"form": form})
		return
	}

	form.Errors = bind(c, form)
	form.clean()
	if !form.Errors.Any() && form.Username != user.Username {
		var n int64
		if err := h.dbc(c).Model(&models.User{}).Where("username = ? AND id <> ?", form.Username, user.ID).Count(&n).Error; err != nil {
			serverError(c, err)
			return
		}
		if n > 0 {
			form.Errors.Add("username", usernameTaken)
		}
	}
	if form.Errors.Any() {
		render(c, http.StatusOK, "blog/user.html", gin.H{"form": form})
		return
	}

	err := h.dbc(c).Model(user).Updates(map[string]any{
		"username":   form.Username,
		"first_name": form.FirstName,
		"last_name":  form.LastName,
		"email":      form.Email,
		"phone":      form.Phone,
	}).Error
	if database.IsUniqueViolation(err) {
		form.Errors.Add("username", usernameTaken)
		render(c, http.StatusOK, "blog/user.html", gin.H{"form": form})
		return
	} else if err != nil {
		serverError(c, err)
		return
	}

	// The session token carries the username; refresh it.
	if err := h.opts.Sessions.Login(c, user.ID, form.Username, user.Password); err != nil {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, profileURL(form.Username))
}
