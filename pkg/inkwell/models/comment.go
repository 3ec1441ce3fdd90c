package models

import "time"

// Comment represents a comment on a post. Comments are immutable; they are
// removed only when their parent post is deleted.
type Comment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Content   string    `gorm:"not null" json:"content"`
	AuthorID  uint      `gorm:"not null" json:"author_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	Author User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}
