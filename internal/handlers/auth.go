package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/blogicum/blogicum/internal/auth"
	"github.com/blogicum/blogicum/internal/database"
	"github.com/blogicum/blogicum/internal/forms"
	"github.com/blogicum/blogicum/internal/logger"
	"github.com/blogicum/blogicum/internal/middleware"
	"github.com/blogicum/blogicum/internal/models"
)

const (
	LoginURL     = "/auth/login/"
	invalidLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."
)

type AuthHandler struct {
	*base
}

// Registration creates an account and sends the visitor to the login page.
func (h *AuthHandler) Registration(c *gin.Context) {
	form := &registrationForm{Errors: forms.Errors{}}
	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "registration/registration_form.html", gin.H{"form": form})
		return
	}

	form.Errors = bind(c, form)
	form.clean()
	if !form.Errors.Any() {
		var n int64
		if err := h.dbc(c).Model(&models.User{}).Where("username = ?", form.Username).Count(&n).Error; err != nil {
			serverError(c, err)
			return
		}
		if n > 0 {
			form.Errors.Add("username", usernameTaken)
		}
	}
	if form.Errors.Any() {
		render(c, http.StatusOK, "registration/registration_form.html", gin.H{"form": form})
		return
	}

	hashed, err := auth.HashPassword(form.Password1)
	if err != nil {
		serverError(c, err)
		return
	}

	user := models.User{Username: form.Username, Password: hashed}
	if err := h.dbc(c).Create(&user).Error; err != nil {
		if database.IsUniqueViolation(err) {
			form.Errors.Add("username", usernameTaken)
			render(c, http.StatusOK, "registration/registration_form.html", gin.H{"form": form})
			return
		}
		serverError(c, err)
		return
	}

	logger.Info("user registered", map[string]any{"user_id": user.ID, "username": user.Username})
	c.Redirect(http.StatusFound, LoginURL)
}

// Login verifies credentials and starts a session.
func (h *AuthHandler) Login(c *gin.Context) {
	form := &loginForm{Next: c.Query("next"), Errors: forms.Errors{}}
	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "registration/login.html", gin.H{"form": form})
		return
	}

	form.Errors = bind(c, form)
	if form.Errors.Any() {
		render(c, http.StatusOK, "registration/login.html", gin.H{"form": form})
		return
	}

	var user models.User
	err := h.dbc(c).Where("username = ?", strings.TrimSpace(form.Username)).First(&user).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		serverError(c, err)
		return
	}
	if err != nil || !auth.CheckPassword(user.Password, form.Password) {
		form.Errors.Add(forms.NonField, invalidLogin)
		render(c, http.StatusOK, "registration/login.html", gin.H{"form": form})
		return
	}

	if err := h.opts.Sessions.Login(c, user.ID, user.Username, user.Password); err != nil {
		serverError(c, err)
		return
	}
	c.Redirect(http.StatusFound, safeNext(form.Next))
}

// Logout ends the session.
func (h *AuthHandler) Logout(c *gin.Context) {
	h.opts.Sessions.Logout(c)
	c.Set("user", nil)
	render(c, http.StatusOK, "registration/logged_out.html", nil)
}

// PasswordChange replaces the signed-in user's password.
func (h *AuthHandler) PasswordChange(c *gin.Context) {
	user := middleware.CurrentUser(c)
	form := &passwordChangeForm{Errors: forms.Errors{}}
	if c.Request.Method != http.MethodPost {
		render(c, http.StatusOK, "registration/password_change_form.html", gin.H{"form": form})
		return
	}

	form.Errors = bind(c, form)
	form.clean()
	if form.OldPassword != "" && !auth.CheckPassword(user.Password, form.OldPassword) {
		form.Errors.Add("old_password", "Your old password was entered incorrectly. Please enter it again.")
	}
	if form.Errors.Any() {
		render(c, http.StatusOK, "registration/password_change_form.html", gin.H{"form": form})
		return
	}

	hashed, err := auth.HashPassword(form.NewPassword1)
	if err != nil {
		serverError(c, err)
		return
	}
	if err := h.dbc(c).Model(user).Update("password", hashed).Error; err != nil {
		serverError(c, err)
		return
	}
	if err := h.opts.Sessions.Login(c, user.ID, user.Username, hashed); err != nil {
		serverError(c, err)
		return
	}
	render(c, http.StatusOK, "registration/password_change_done.html", nil)
}

// safeNext only follows redirects that stay on this site: a relative URL
// with no scheme or host whose path starts with a single slash. Control
// characters are rejected outright since browsers strip them, which would
// turn "/\t/host" into "//host".
func safeNext(next string) string {
	if next == "" || strings.ContainsFunc(next, isControl) {
		return "/"
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" || u.User != nil ||
		!strings.HasPrefix(u.Path, "/") || strings.HasPrefix(u.Path, "//") {
		return "/"
	}
	return next
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}
