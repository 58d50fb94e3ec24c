package handlers

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/blogicum/blogicum/internal/forms"
	"github.com/blogicum/blogicum/internal/models"
)

var pubDateLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var errBadDate = errors.New("invalid date/time")

// parseLocalTime reads a datetime-local value in the site time zone.
func parseLocalTime(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range pubDateLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errBadDate
}

// bind decodes the request into form and returns field errors, if any.
func bind(c *gin.Context, form any) forms.Errors {
	return forms.FromBinding(c.ShouldBind(form))
}

func requireText(errs forms.Errors, field string, value *string) {
	*value = strings.TrimSpace(*value)
	if *value == "" {
		errs.Add(field, "This field is required.")
	}
}

type postForm struct {
	Title       string `form:"title" binding:"max=256"`
	Text        string `form:"text"`
	PubDate     string `form:"pub_date"`
	Category    uint   `form:"category"`
	Location    uint   `form:"location"`
	IsPublished bool   `form:"is_published"`
	ClearImage  bool   `form:"image_clear"`

	Errors   forms.Errors `form:"-"`
	ImageURL string       `form:"-"`

	pubDate time.Time
}

func newPostForm(now time.Time, loc *time.Location) *postForm {
	return &postForm{
		PubDate:     now.In(loc).Format("2006-01-02T15:04"),
		IsPublished: true,
		Errors:      forms.Errors{},
	}
}

func postFormFrom(p *models.Post, loc *time.Location, imageURL string) *postForm {
	f := &postForm{
		Title:       p.Title,
		Text:        p.Text,
		PubDate:     p.PubDate.In(loc).Format("2006-01-02T15:04"),
		IsPublished: p.IsPublished,
		ImageURL:    imageURL,
		Errors:      forms.Errors{},
	}
	if p.CategoryID != nil {
		f.Category = *p.CategoryID
	}
	if p.LocationID != nil {
		f.Location = *p.LocationID
	}
	return f
}

func (f *postForm) clean(loc *time.Location) {
	requireText(f.Errors, "title", &f.Title)
	requireText(f.Errors, "text", &f.Text)
	if f.Category == 0 {
		f.Errors.Add("category", "This field is required.")
	}
	if strings.TrimSpace(f.PubDate) == "" {
		f.Errors.Add("pub_date", "This field is required.")
		return
	}
	t, err := parseLocalTime(f.PubDate, loc)
	if err != nil {
		f.Errors.Add("pub_date", "Enter a valid date/time.")
		return
	}
	f.pubDate = t
}

// apply copies cleaned values onto the post; the image is handled separately.
func (f *postForm) apply(p *models.Post) {
	p.Title = f.Title
	p.Text = f.Text
	p.PubDate = f.pubDate
	p.IsPublished = f.IsPublished
	category := f.Category
	p.CategoryID = &category
	p.LocationID = nil
	if f.Location != 0 {
		location := f.Location
		p.LocationID = &location
	}
}

type commentForm struct {
	Text   string       `form:"text"`
	Errors forms.Errors `form:"-"`
}

func (f *commentForm) clean() {
	requireText(f.Errors, "text", &f.Text)
}

type profileForm struct {
	Username  string `form:"username" binding:"max=150,username"`
	FirstName string `form:"first_name" binding:"max=150"`
	LastName  string `form:"last_name" binding:"max=150"`
	Email     string `form:"email" binding:"omitempty,email,max=254"`
	Phone     string `form:"phone" binding:"omitempty,e164"`

	Errors forms.Errors `form:"-"`
}

func (f *profileForm) clean() {
	requireText(f.Errors, "username", &f.Username)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
}

type registrationForm struct {
	Username  string `form:"username" binding:"max=150,username"`
	Password1 string `form:"password1" binding:"required"`
	Password2 string `form:"password2" binding:"required"`

	Errors forms.Errors `form:"-"`
}

func (f *registrationForm) clean() {
	requireText(f.Errors, "username", &f.Username)
	if f.Password1 != "" && f.Password2 != "" && f.Password1 != f.Password2 {
		f.Errors.Add("password2", "The two password fields didn't match.")
	}
	if msg := forms.CheckPassword(f.Password2); msg != "" && f.Password2 != "" {
		f.Errors.Add("password2", msg)
	}
}

type loginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
	Next     string `form:"next"`

	Errors forms.Errors `form:"-"`
}

type passwordChangeForm struct {
	OldPassword  string `form:"old_password" binding:"required"`
	NewPassword1 string `form:"new_password1" binding:"required"`
	NewPassword2 string `form:"new_password2" binding:"required"`

	Errors forms.Errors `form:"-"`
}

func (f *passwordChangeForm) clean() {
	if f.NewPassword1 != "" && f.NewPassword2 != "" && f.NewPassword1 != f.NewPassword2 {
		f.Errors.Add("new_password2", "The two password fields didn't match.")
	}
	if msg := forms.CheckPassword(f.NewPassword2); msg != "" && f.NewPassword2 != "" {
		f.Errors.Add("new_password2", msg)
	}
}
