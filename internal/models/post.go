package models

import "time"

type Post struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:256;not null" json:"title"`
	Text        string    `gorm:"type:text;not null" json:"text"`
	PubDate     time.Time `gorm:"index;not null" json:"pub_date"`
	AuthorID    uint      `gorm:"index;not null" json:"-"`
	Author      User      `gorm:"constraint:OnDelete:CASCADE;" json:"author"`
	CategoryID  *uint     `gorm:"index" json:"-"`
	Category    *Category `gorm:"constraint:OnDelete:SET NULL;" json:"category"`
	LocationID  *uint     `gorm:"index" json:"-"`
	Location    *Location `gorm:"constraint:OnDelete:SET NULL;" json:"location"`
	Image       string    `gorm:"size:255" json:"-"` // storage key, empty when no image
	IsPublished bool      `gorm:"not null" json:"-"`
	CreatedAt   time.Time `json:"-"`

	// Filled by WithCommentCount; never written.
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
}

// IsVisible reports whether the public may see the post at the given moment.
// Category must be loaded.
func (p *Post) IsVisible(now time.Time) bool {
	return p.IsPublished &&
		p.Category != nil && p.Category.IsPublished &&
		!p.PubDate.After(now)
}

// IsDeferred is true for a post scheduled for the future.
func (p *Post) IsDeferred(now time.Time) bool {
	return p.PubDate.After(now)
}
