package models

// Tag represents a tag that can be applied to posts. Tags are shared across
// posts and created on demand when a post references an unknown name.
type Tag struct {
	ID   uint   `gorm:"primarykey" json:"id"`
	Name string `gorm:"uniqueIndex;not null" json:"name"`

	// Relationships
	Posts []Post `gorm:"many2many:post_tags;" json:"posts,omitempty"`
}
