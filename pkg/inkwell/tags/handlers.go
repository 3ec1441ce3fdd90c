package tags

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/pkg/inkwell/models"
)

// Handler handles tag-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new tags handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// TagResponse represents a tag in API responses
type TagResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// List returns all tags
func (h *Handler) List(c *gin.Context) {
	var tags []models.Tag
	if err := h.db.Order("name").Find(&tags).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch tags"})
		return
	}

	responses := make([]TagResponse, len(tags))
	for i, tag := range tags {
		responses[i] = TagResponse{ID: tag.ID, Name: tag.Name}
	}

	c.JSON(http.StatusOK, responses)
}

// RegisterRoutes registers tag routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/tags", h.List)
}
