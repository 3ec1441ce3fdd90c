package posts

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"inkwell/pkg/inkwell/auth"
	"inkwell/pkg/inkwell/models"
)

const timeFormat = "2006-01-02T15:04:05Z"

// Handler handles post-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new posts handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// CreatePostRequest represents the request to create a post
type CreatePostRequest struct {
	Title    string   `json:"title" binding:"required"`
	Content  string   `json:"content" binding:"required"`
	ImageURL string   `json:"image_url"`
	Tags     []string `json:"tags"`
}

// UpdatePostRequest represents the request to update a post. Pointer fields
// distinguish "omitted" from "set to empty"; a nil Tags leaves the tag set
// untouched while an empty list clears it.
type UpdatePostRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	ImageURL *string   `json:"image_url"`
	Tags     *[]string `json:"tags"`
}

// CreateCommentRequest represents the request to comment on a post
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// AuthorResponse represents a post or comment author in API responses
type AuthorResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

// CommentResponse represents a comment in API responses
type CommentResponse struct {
	ID        uint           `json:"id"`
	Content   string         `json:"content"`
	Author    AuthorResponse `json:"author"`
	CreatedAt string         `json:"created_at"`
}

// PostSummary represents a post in the paginated listing
type PostSummary struct {
	ID            uint           `json:"id"`
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	ImageURL      string         `json:"image_url"`
	Author        AuthorResponse `json:"author"`
	Tags          []string       `json:"tags"`
	CommentsCount int64          `json:"comments_count"`
	CreatedAt     string         `json:"created_at"`
}

// PostDetail represents a single post with its comments
type PostDetail struct {
	ID        uint              `json:"id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	ImageURL  string            `json:"image_url"`
	Author    AuthorResponse    `json:"author"`
	Tags      []string          `json:"tags"`
	Comments  []CommentResponse `json:"comments"`
	CreatedAt string            `json:"created_at"`
}

// ListResponse represents the paginated post listing
type ListResponse struct {
	Posts       []PostSummary `json:"posts"`
	Total       int64         `json:"total"`
	Pages       int64         `json:"pages"`
	CurrentPage int           `json:"current_page"`
}

// CreatedPost represents the created/echoed post in the create response
type CreatedPost struct {
	ID        uint     `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	ImageURL  string   `json:"image_url"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"created_at"`
}

func tagNames(tags []models.Tag) []string {
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.Name
	}
	return names
}

func commentToResponse(comment models.Comment) CommentResponse {
	return CommentResponse{
		ID:      comment.ID,
		Content: comment.Content,
		Author: AuthorResponse{
			ID:       comment.Author.ID,
			Username: comment.Author.Username,
		},
		CreatedAt: comment.CreatedAt.UTC().Format(timeFormat),
	}
}

// upsertTags resolves tag names to Tag rows, creating any that don't exist yet
func upsertTags(db *gorm.DB, names []string) ([]models.Tag, error) {
	var tags []models.Tag
	for _, name := range names {
		if name == "" {
			continue
		}

		var tag models.Tag
		if err := db.Where("name = ?", name).First(&tag).Error; err != nil {
			tag = models.Tag{Name: name}
			if err := db.Create(&tag).Error; err != nil {
				return nil, err
			}
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// List returns the paginated post listing, newest first
func (h *Handler) List(c *gin.Context) {
	page := 1
	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	perPage := 10
	if pp := c.Query("per_page"); pp != "" {
		if parsed, err := strconv.Atoi(pp); err == nil && parsed > 0 {
			perPage = parsed
		}
	}

	filtered := func() *gorm.DB {
		query := h.db.Model(&models.Post{})
		if tag := c.Query("tag"); tag != "" {
			query = query.
				Joins("JOIN post_tags ON post_tags.post_id = posts.id").
				Joins("JOIN tags ON tags.id = post_tags.tag_id").
				Where("tags.name = ?", tag)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	var posts []models.Post
	err := filtered().Preload("Author").Preload("Tags").
		Order("posts.created_at DESC").
		Limit(perPage).Offset((page - 1) * perPage).
		Find(&posts).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch posts"})
		return
	}

	summaries := make([]PostSummary, len(posts))
	for i, post := range posts {
		var commentCount int64
		h.db.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&commentCount)

		summaries[i] = PostSummary{
			ID:            post.ID,
			Title:         post.Title,
			Content:       post.Content,
			ImageURL:      post.ImageURL,
			Author:        AuthorResponse{ID: post.Author.ID, Username: post.Author.Username},
			Tags:          tagNames(post.Tags),
			CommentsCount: commentCount,
			CreatedAt:     post.CreatedAt.UTC().Format(timeFormat),
		}
	}

	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}

	c.JSON(http.StatusOK, ListResponse{
		Posts:       summaries,
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
	})
}

// Get returns a single post with its comments, newest comment first
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var post models.Post
	err = h.db.Preload("Author").Preload("Tags").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Order("comments.created_at DESC")
		}).
		Preload("Comments.Author").
		First(&post, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	comments := make([]CommentResponse, len(post.Comments))
	for i, comment := range post.Comments {
		comments[i] = commentToResponse(comment)
	}

	c.JSON(http.StatusOK, PostDetail{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		ImageURL:  post.ImageURL,
		Author:    AuthorResponse{ID: post.Author.ID, Username: post.Author.Username},
		Tags:      tagNames(post.Tags),
		Comments:  comments,
		CreatedAt: post.CreatedAt.UTC().Format(timeFormat),
	})
}

// Create creates a new post for the authenticated user
func (h *Handler) Create(c *gin.Context) {
	user, _ := auth.GetCurrentUser(c)

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{
		Title:    req.Title,
		Content:  req.Content,
		ImageURL: req.ImageURL,
		AuthorID: user.ID,
	}

	err := h.db.Transaction(func(tx *gorm.DB) error {
		tags, err := upsertTags(tx, req.Tags)
		if err != nil {
			return err
		}
		post.Tags = tags
		return tx.Create(&post).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Post created successfully",
		"post": CreatedPost{
			ID:        post.ID,
			Title:     post.Title,
			Content:   post.Content,
			ImageURL:  post.ImageURL,
			Tags:      tagNames(post.Tags),
			CreatedAt: post.CreatedAt.UTC().Format(timeFormat),
		},
	})
}

// Update updates a post. Only the author may update; a supplied tags list
// replaces the post's tag set wholesale.
func (h *Handler) Update(c *gin.Context) {
	user, _ := auth.GetCurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.ImageURL != nil {
		post.ImageURL = *req.ImageURL
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&post).Error; err != nil {
			return err
		}
		if req.Tags != nil {
			tags, err := upsertTags(tx, *req.Tags)
			if err != nil {
				return err
			}
			if err := tx.Model(&post).Association("Tags").Replace(tags); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post updated successfully"})
}

// Delete deletes a post and all of its comments. Only the author may delete.
func (h *Handler) Delete(c *gin.Context) {
	user, _ := auth.GetCurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	if post.AuthorID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete post"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Post deleted successfully"})
}

// CreateComment adds a comment to a post for the authenticated user
func (h *Handler) CreateComment(c *gin.Context) {
	user, _ := auth.GetCurrentUser(c)

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var post models.Post
	if err := h.db.First(&post, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment := models.Comment{
		Content:  req.Content,
		AuthorID: user.ID,
		PostID:   post.ID,
	}
	if err := h.db.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}
	comment.Author = *user

	c.JSON(http.StatusCreated, gin.H{
		"message": "Comment added successfully",
		"comment": commentToResponse(comment),
	})
}

// RegisterPublicRoutes registers the unauthenticated post routes
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/posts", h.List)
	rg.GET("/posts/:id", h.Get)
}

// RegisterRoutes registers the authenticated post routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/posts", h.Create)
	rg.PUT("/posts/:id", h.Update)
	rg.DELETE("/posts/:id", h.Delete)
	rg.POST("/posts/:id/comments", h.CreateComment)
}
