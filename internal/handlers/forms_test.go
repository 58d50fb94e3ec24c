package handlers

import (
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blogicum/blogicum/internal/forms"
	"github.com/blogicum/blogicum/internal/models"
)

func TestParseLocalTime(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	want := time.Date(2026, 10, 17, 6, 30, 0, 0, time.UTC)

	for _, value := range []string{"2026-10-17T09:30", "2026-10-17 09:30", "2026-10-17T09:30:00", " 2026-10-17 09:30:00 "} {
		got, err := parseLocalTime(value, msk)
		require.NoError(t, err, value)
		assert.Equal(t, want, got, value)
	}

	got, err := parseLocalTime("2026-10-17", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC), got)

	_, err = parseLocalTime("tomorrow", time.UTC)
	assert.ErrorIs(t, err, errBadDate)
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                      "/",
		"/posts/1/":             "/posts/1/",
		"/profile/a/?page=2":    "/profile/a/?page=2",
		"//evil.example.com/":   "/",
		"/\\evil.example.com/":  "/",
		"https://evil.example/": "/",
		"posts/1/":              "/",
		"/\t/evil.example":      "/",
		"/\n/evil.example":      "/",
		"/\r/evil.example":      "/",
		"/posts/\x7f/":          "/",
		"/%2F/evil.example":     "/",
		"javascript:alert(1)":   "/",
	}
	for next, want := range tests {
		assert.Equal(t, want, safeNext(next), next)
	}
}

func TestPostFormClean(t *testing.T) {
	f := &postForm{Title: "  Trip ", Text: "body", PubDate: "2026-01-02T03:04", Category: 3, Errors: forms.Errors{}}
	f.clean(time.UTC)
	require.False(t, f.Errors.Any())
	assert.Equal(t, "Trip", f.Title)

	var p models.Post
	f.apply(&p)
	require.NotNil(t, p.CategoryID)
	assert.Equal(t, uint(3), *p.CategoryID)
	assert.Nil(t, p.LocationID)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC), p.PubDate)

	f = &postForm{Errors: forms.Errors{}}
	f.clean(time.UTC)
	assert.Contains(t, f.Errors, "title")
	assert.Contains(t, f.Errors, "text")
	assert.Contains(t, f.Errors, "category")
	assert.Contains(t, f.Errors, "pub_date")
}

func TestPostFormRoundTrip(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	category, location := uint(4), uint(7)
	p := &models.Post{
		Title:       "Trip",
		Text:        "body",
		PubDate:     time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC),
		CategoryID:  &category,
		LocationID:  &location,
		IsPublished: true,
	}

	f := postFormFrom(p, loc, "/media/x.png")
	assert.Equal(t, "2026-01-02T06:04", f.PubDate)
	assert.Equal(t, uint(4), f.Category)
	assert.Equal(t, uint(7), f.Location)
	assert.Equal(t, "/media/x.png", f.ImageURL)

	f.clean(loc)
	require.False(t, f.Errors.Any())
	var q models.Post
	f.apply(&q)
	assert.Equal(t, p.PubDate, q.PubDate)
	assert.Equal(t, location, *q.LocationID)
}

func TestRegistrationFormClean(t *testing.T) {
	forms.Setup()

	f := &registrationForm{Username: "bad name", Password1: "abc", Password2: "abd"}
	f.Errors = forms.FromBinding(binding.Validator.ValidateStruct(f))
	f.clean()
	assert.Contains(t, f.Errors["username"], "Enter a valid username.")
	assert.Equal(t, "The two password fields didn't match.", f.Errors["password2"])

	f = &registrationForm{Username: "  spaced.out  ", Password1: "long-enough", Password2: "long-enough"}
	f.Errors = forms.FromBinding(binding.Validator.ValidateStruct(f))
	f.clean()
	assert.False(t, f.Errors.Any())
	assert.Equal(t, "spaced.out", f.Username)

	f = &registrationForm{Username: "good.name", Password1: "long-enough", Password2: "long-enough", Errors: forms.Errors{}}
	f.clean()
	assert.False(t, f.Errors.Any())
}
