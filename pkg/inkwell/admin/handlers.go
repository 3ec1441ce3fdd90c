package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/pkg/inkwell/models"
)

const timeFormat = "2006-01-02T15:04:05Z"

// Handler handles admin requests
type Handler struct {
	db            *gorm.DB
	adminUsername string
	adminPassword string
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB, adminUsername, adminPassword string) *Handler {
	return &Handler{db: db, adminUsername: adminUsername, adminPassword: adminPassword}
}

// UserView represents a user row in admin responses
type UserView struct {
	ID            uint   `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	CreatedAt     string `json:"created_at"`
	PostsCount    int64  `json:"posts_count"`
	CommentsCount int64  `json:"comments_count"`
}

// PostView represents a post row in admin responses
type PostView struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Author        string `json:"author"`
	CommentsCount int64  `json:"comments_count"`
	CreatedAt     string `json:"created_at"`
}

// CommentView represents a comment row in admin responses
type CommentView struct {
	ID        uint   `json:"id"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	PostID    uint   `json:"post_id"`
	CreatedAt string `json:"created_at"`
}

// StatsView represents system-wide totals
type StatsView struct {
	TotalUsers    int64 `json:"total_users"`
	TotalPosts    int64 `json:"total_posts"`
	TotalComments int64 `json:"total_comments"`
	TotalTags     int64 `json:"total_tags"`
}

func (h *Handler) collectStats() (StatsView, error) {
	var stats StatsView
	if err := h.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return stats, err
	}
	if err := h.db.Model(&models.Post{}).Count(&stats.TotalPosts).Error; err != nil {
		return stats, err
	}
	if err := h.db.Model(&models.Comment{}).Count(&stats.TotalComments).Error; err != nil {
		return stats, err
	}
	if err := h.db.Model(&models.Tag{}).Count(&stats.TotalTags).Error; err != nil {
		return stats, err
	}
	return stats, nil
}

// ListUsers returns all users with authoring counts
func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User
	if err := h.db.Order("created_at DESC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	views := make([]UserView, len(users))
	for i, user := range users {
		var postCount, commentCount int64
		h.db.Model(&models.Post{}).Where("author_id = ?", user.ID).Count(&postCount)
		h.db.Model(&models.Comment{}).Where("author_id = ?", user.ID).Count(&commentCount)

		views[i] = UserView{
			ID:            user.ID,
			Username:      user.Username,
			Email:         user.Email,
			CreatedAt:     user.CreatedAt.UTC().Format(timeFormat),
			PostsCount:    postCount,
			CommentsCount: commentCount,
		}
	}

	c.JSON(http.StatusOK, views)
}

// ListPosts returns all posts across all users
func (h *Handler) ListPosts(c *gin.Context) {
	var posts []models.Post
	if err := h.db.Preload("Author").Order("created_at DESC").Find(&posts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	views := make([]PostView, len(posts))
	for i, post := range posts {
		var commentCount int64
		h.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)

		views[i] = PostView{
			ID:            post.ID,
			Title:         post.Title,
			Author:        post.Author.Username,
			CommentsCount: commentCount,
			CreatedAt:     post.CreatedAt.UTC().Format(timeFormat),
		}
	}

	c.JSON(http.StatusOK, views)
}

// ListComments returns all comments across all posts
func (h *Handler) ListComments(c *gin.Context) {
	var comments []models.Comment
	if err := h.db.Preload("Author").Order("created_at DESC").Find(&comments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch comments"})
		return
	}

	views := make([]CommentView, len(comments))
	for i, comment := range comments {
		views[i] = CommentView{
			ID:        comment.ID,
			Content:   comment.Content,
			Author:    comment.Author.Username,
			PostID:    comment.PostID,
			CreatedAt: comment.CreatedAt.UTC().Format(timeFormat),
		}
	}

	c.JSON(http.StatusOK, views)
}

// Stats returns system-wide totals
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.collectStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// RegisterRoutes registers the admin JSON API routes; callers must gate the
// group with RequireSession.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/users", h.ListUsers)
	rg.GET("/posts", h.ListPosts)
	rg.GET("/comments", h.ListComments)
	rg.GET("/stats", h.Stats)
}
