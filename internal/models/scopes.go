package models

import (
	"time"

	"gorm.io/gorm"
)

// All lists every model managed by migrations, parents first.
func All() []any {
	return []any{&User{}, &Category{}, &Location{}, &Post{}, &Comment{}}
}

// Visible keeps posts that are published, belong to a published category
// and whose pub_date is not in the future.
func Visible(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		published := db.Session(&gorm.Session{NewDB: true}).
			Model(&Category{}).
			Select("id").
			Where("is_published = ?", true)
		return db.
			Where("posts.is_published = ?", true).
			Where("posts.pub_date <= ?", now).
			Where("posts.category_id IN (?)", published)
	}
}

// WithCommentCount annotates each post with the number of its comments.
func WithCommentCount(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count")
}

// WithRelations preloads author, category and location.
func WithRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Author").Preload("Category").Preload("Location")
}

// Newest orders posts by pub_date, newest first.
func Newest(db *gorm.DB) *gorm.DB {
	return db.Order("posts.pub_date DESC").Order("posts.id DESC")
}
