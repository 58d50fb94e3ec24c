// Package dbtest opens throwaway migrated databases for tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/blogicum/blogicum/internal/config"
	"github.com/blogicum/blogicum/internal/database"
	"github.com/blogicum/blogicum/internal/models"
)

// New returns a migrated in-memory SQLite database closed at test cleanup.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	svc, err := database.New(config.Database{
		Driver:     "sqlite",
		SQLitePath: fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}, database.Options{LogLevel: logger.Silent, Migrate: true})
	require.NoError(t, err)
	t.Cleanup(func() { svc.Close() })

	return svc.GetDB()
}

// Fixtures creates rows with sensible defaults.
type Fixtures struct {
	T  testing.TB
	DB *gorm.DB
}

func (f Fixtures) User(username string) *models.User {
	f.T.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "!"}
	require.NoError(f.T, f.DB.Create(u).Error)
	return u
}

func (f Fixtures) Category(slug string, published bool) *models.Category {
	f.T.Helper()
	c := &models.Category{Title: "Category " + slug, Description: "About " + slug, Slug: slug, IsPublished: published}
	require.NoError(f.T, f.DB.Create(c).Error)
	return c
}

func (f Fixtures) Location(name string, published bool) *models.Location {
	f.T.Helper()
	l := &models.Location{Name: name, IsPublished: published}
	require.NoError(f.T, f.DB.Create(l).Error)
	return l
}

// Post creates a published post in category dated at pubDate.
func (f Fixtures) Post(author *models.User, category *models.Category, title string, pubDate time.Time) *models.Post {
	f.T.Helper()
	p := &models.Post{
		Title:       title,
		Text:        "Text of " + title,
		PubDate:     pubDate.UTC(),
		AuthorID:    author.ID,
		IsPublished: true,
	}
	if category != nil {
		p.CategoryID = &category.ID
	}
	require.NoError(f.T, f.DB.Create(p).Error)
	return p
}

func (f Fixtures) Comment(author *models.User, post *models.Post, text string) *models.Comment {
	f.T.Helper()
	c := &models.Comment{Text: text, PostID: post.ID, AuthorID: author.ID}
	require.NoError(f.T, f.DB.Create(c).Error)
	return c
}
