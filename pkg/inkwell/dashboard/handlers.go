package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/pkg/inkwell/auth"
	"inkwell/pkg/inkwell/models"
)

const timeFormat = "2006-01-02T15:04:05Z"

// Handler handles dashboard requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new dashboard handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// StatsResponse represents the per-user dashboard counters
type StatsResponse struct {
	PostsCount       int64 `json:"posts_count"`
	CommentsMade     int64 `json:"comments_made"`
	CommentsReceived int64 `json:"comments_received"`
}

// RecentPost represents a post in the recent-posts list
type RecentPost struct {
	ID        uint   `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

// DashboardResponse represents the dashboard payload
type DashboardResponse struct {
	Stats       StatsResponse `json:"stats"`
	RecentPosts []RecentPost  `json:"recent_posts"`
}

// Get returns authoring stats and the 5 most recent posts for the current user
func (h *Handler) Get(c *gin.Context) {
	user, _ := auth.GetCurrentUser(c)

	var stats StatsResponse
	if err := h.db.Model(&models.Post{}).Where("author_id = ?", user.ID).Count(&stats.PostsCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	if err := h.db.Model(&models.Comment{}).Where("author_id = ?", user.ID).Count(&stats.CommentsMade).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	// Comments received across all of the user's posts, in one join instead
	// of a count per post.
	err := h.db.Model(&models.Comment{}).
		Joins("JOIN posts ON posts.id = comments.post_id").
		Where("posts.author_id = ?", user.ID).
		Count(&stats.CommentsReceived).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}

	var posts []models.Post
	err = h.db.Where("author_id = ?", user.ID).
		Order("created_at DESC").Limit(5).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch recent posts"})
		return
	}

	recent := make([]RecentPost, len(posts))
	for i, post := range posts {
		recent[i] = RecentPost{
			ID:        post.ID,
			Title:     post.Title,
			CreatedAt: post.CreatedAt.UTC().Format(timeFormat),
		}
	}

	c.JSON(http.StatusOK, DashboardResponse{
		Stats:       stats,
		RecentPosts: recent,
	})
}

// RegisterRoutes registers dashboard routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard", h.Get)
}
