package feed

import (
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/pkg/inkwell/models"
)

const (
	feedSize      = 20
	summaryLength = 500
)

// Handler handles syndication requests
type Handler struct {
	db      *gorm.DB
	baseURL string
}

// NewHandler creates a new feed handler. baseURL is used for channel and
// item links.
func NewHandler(db *gorm.DB, baseURL string) *Handler {
	return &Handler{db: db, baseURL: baseURL}
}

// RSS renders the 20 most recent posts as an RSS 2.0 document
func (h *Handler) RSS(c *gin.Context) {
	var posts []models.Post
	err := h.db.Preload("Author").Preload("Tags").
		Order("created_at DESC").Limit(feedSize).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	items := make([]Item, len(posts))
	for i, post := range posts {
		categories := make([]string, len(post.Tags))
		for j, tag := range post.Tags {
			categories[j] = tag.Name
		}

		items[i] = Item{
			Title:       post.Title,
			Link:        fmt.Sprintf("%s/posts/%d", h.baseURL, post.ID),
			Description: truncate(post.Content, summaryLength),
			Author:      post.Author.Username,
			PubDate:     post.CreatedAt.UTC().Format(time.RFC1123Z),
			Categories:  categories,
		}
	}

	doc := RSS{
		Version: "2.0",
		Channel: Channel{
			Title:       "Inkwell Blog",
			Link:        h.baseURL,
			Description: "Latest posts from Inkwell",
			Items:       items,
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render feed"})
		return
	}

	c.Data(http.StatusOK, "application/rss+xml; charset=utf-8", append([]byte(xml.Header), out...))
}

// RegisterRoutes registers feed routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/rss", h.RSS)
}
