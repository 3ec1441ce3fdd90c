package uploads

import (
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// MaxUploadSize is the largest accepted file, 16 MiB
const MaxUploadSize = 16 * 1024 * 1024

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Handler handles file upload requests
type Handler struct {
	dir string
}

// NewHandler creates a new uploads handler storing files under dir
func NewHandler(dir string) *Handler {
	return &Handler{dir: dir}
}

// sanitizeFilename strips path components and any character outside a safe set
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	return strings.Trim(name, "._")
}

// Upload stores a multipart file under a randomized filename and returns its
// retrieval URL. The file write and any related post update are not
// transactionally coordinated.
func (h *Handler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	if file.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file selected"})
		return
	}

	if file.Size > MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	filename := uuid.NewString() + "_" + sanitizeFilename(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(h.dir, filename)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "File uploaded successfully",
		"filename": filename,
		"url":      "/uploads/" + filename,
	})
}

// RegisterRoutes registers upload routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/upload", h.Upload)
}
