package models

import "time"

type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	PostID    uint      `gorm:"index;not null" json:"post_id"`
	Post      *Post     `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	AuthorID  uint      `gorm:"index;not null" json:"-"`
	Author    User      `gorm:"constraint:OnDelete:CASCADE;" json:"author"`
	CreatedAt time.Time `json:"created_at"`
}
