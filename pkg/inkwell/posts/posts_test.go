package posts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"inkwell/pkg/inkwell/auth"
	"inkwell/pkg/inkwell/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)
	api := r.Group("/api")
	handler.RegisterPublicRoutes(api)
	authed := api.Group("", auth.AuthMiddleware(db))
	handler.RegisterRoutes(authed)
	return r
}

func createTestUser(t *testing.T, db *gorm.DB, username string) (*models.User, string) {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: hash,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	return &user, token
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func createTestPost(t *testing.T, r *gin.Engine, token, title string, tags []string) uint {
	t.Helper()
	resp := doJSON(t, r, "POST", "/api/posts", token, CreatePostRequest{
		Title:   title,
		Content: "Content of " + title,
		Tags:    tags,
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("Failed to create post: %d: %s", resp.Code, resp.Body.String())
	}
	var response struct {
		Post CreatedPost `json:"post"`
	}
	json.Unmarshal(resp.Body.Bytes(), &response)
	return response.Post.ID
}

func TestCreatePostWithTags(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	postID := createTestPost(t, router, token, "First Post", []string{"a", "b"})

	resp := doJSON(t, router, "GET", fmt.Sprintf("/api/posts/%d", postID), "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var detail PostDetail
	json.Unmarshal(resp.Body.Bytes(), &detail)

	if len(detail.Tags) != 2 {
		t.Fatalf("Expected 2 tags, got %d: %v", len(detail.Tags), detail.Tags)
	}
	seen := map[string]bool{}
	for _, name := range detail.Tags {
		seen[name] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Errorf("Expected tags {a, b}, got %v", detail.Tags)
	}
}

func TestTagUpsertNoDuplicates(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	createTestPost(t, router, token, "First", []string{"go", "web"})
	createTestPost(t, router, token, "Second", []string{"go"})

	var count int64
	db.Model(&models.Tag{}).Where("name = ?", "go").Count(&count)
	if count != 1 {
		t.Errorf("Expected exactly 1 'go' tag row, got %d", count)
	}
}

func TestUpdatePostReplacesTags(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	postID := createTestPost(t, router, token, "Post", []string{"a", "b"})

	newTags := []string{"c"}
	resp := doJSON(t, router, "PUT", fmt.Sprintf("/api/posts/%d", postID), token, UpdatePostRequest{
		Tags: &newTags,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	resp = doJSON(t, router, "GET", fmt.Sprintf("/api/posts/%d", postID), "", nil)
	var detail PostDetail
	json.Unmarshal(resp.Body.Bytes(), &detail)

	if len(detail.Tags) != 1 || detail.Tags[0] != "c" {
		t.Errorf("Expected tags [c] after replace, got %v", detail.Tags)
	}
}

func TestUpdatePostOmittedTagsUntouched(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	postID := createTestPost(t, router, token, "Post", []string{"a", "b"})

	newTitle := "Renamed"
	resp := doJSON(t, router, "PUT", fmt.Sprintf("/api/posts/%d", postID), token, UpdatePostRequest{
		Title: &newTitle,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	resp = doJSON(t, router, "GET", fmt.Sprintf("/api/posts/%d", postID), "", nil)
	var detail PostDetail
	json.Unmarshal(resp.Body.Bytes(), &detail)

	if detail.Title != "Renamed" {
		t.Errorf("Expected title Renamed, got %s", detail.Title)
	}
	if len(detail.Tags) != 2 {
		t.Errorf("Expected tags untouched (2), got %v", detail.Tags)
	}
}

func TestUpdatePostNotOwner(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, aliceToken := createTestUser(t, db, "alice")
	_, bobToken := createTestUser(t, db, "bob")

	postID := createTestPost(t, router, aliceToken, "Alice's Post", nil)

	newTitle := "Hijacked"
	resp := doJSON(t, router, "PUT", fmt.Sprintf("/api/posts/%d", postID), bobToken, UpdatePostRequest{
		Title: &newTitle,
	})
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}
}

func TestDeletePostNotOwner(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, aliceToken := createTestUser(t, db, "alice")
	_, bobToken := createTestUser(t, db, "bob")

	postID := createTestPost(t, router, aliceToken, "Alice's Post", nil)

	resp := doJSON(t, router, "DELETE", fmt.Sprintf("/api/posts/%d", postID), bobToken, nil)
	if resp.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", resp.Code)
	}
}

func TestDeletePostCascadesComments(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	postID := createTestPost(t, router, token, "Post", []string{"a"})

	for i := 0; i < 3; i++ {
		resp := doJSON(t, router, "POST", fmt.Sprintf("/api/posts/%d/comments", postID), token, CreateCommentRequest{
			Content: fmt.Sprintf("comment %d", i),
		})
		if resp.Code != http.StatusCreated {
			t.Fatalf("Failed to create comment: %d", resp.Code)
		}
	}

	resp := doJSON(t, router, "DELETE", fmt.Sprintf("/api/posts/%d", postID), token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var commentCount int64
	db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&commentCount)
	if commentCount != 0 {
		t.Errorf("Expected 0 comments after post deletion, got %d", commentCount)
	}

	resp = doJSON(t, router, "GET", fmt.Sprintf("/api/posts/%d", postID), "", nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for deleted post, got %d", resp.Code)
	}
}

func TestGetPostNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := doJSON(t, router, "GET", "/api/posts/9999", "", nil)
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestCreateCommentUnknownPost(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	resp := doJSON(t, router, "POST", "/api/posts/9999/comments", token, CreateCommentRequest{
		Content: "hello",
	})
	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestCreatePostRequiresAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	resp := doJSON(t, router, "POST", "/api/posts", "", CreatePostRequest{
		Title:   "Anonymous",
		Content: "should fail",
	})
	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}

func TestListPagination(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	for i := 1; i <= 15; i++ {
		createTestPost(t, router, token, fmt.Sprintf("Post %d", i), nil)
	}

	resp := doJSON(t, router, "GET", "/api/posts?page=2&per_page=10", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var list ListResponse
	json.Unmarshal(resp.Body.Bytes(), &list)

	if len(list.Posts) != 5 {
		t.Errorf("Expected 5 posts on page 2, got %d", len(list.Posts))
	}
	if list.Total != 15 {
		t.Errorf("Expected total 15, got %d", list.Total)
	}
	if list.Pages != 2 {
		t.Errorf("Expected 2 pages, got %d", list.Pages)
	}
	if list.CurrentPage != 2 {
		t.Errorf("Expected current_page 2, got %d", list.CurrentPage)
	}
}

func TestListFilterByTag(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	createTestPost(t, router, token, "Go Post", []string{"go"})
	createTestPost(t, router, token, "Web Post", []string{"web"})
	createTestPost(t, router, token, "Both Post", []string{"go", "web"})

	resp := doJSON(t, router, "GET", "/api/posts?tag=go", "", nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.Code)
	}

	var list ListResponse
	json.Unmarshal(resp.Body.Bytes(), &list)

	if list.Total != 2 {
		t.Errorf("Expected 2 posts tagged go, got %d", list.Total)
	}
	for _, post := range list.Posts {
		if post.Title == "Web Post" {
			t.Errorf("Post without the tag included in filtered listing")
		}
	}
}

func TestListNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user, token := createTestUser(t, db, "alice")

	// Insert with explicit timestamps so ordering doesn't depend on clock
	// resolution within the test.
	old := models.Post{Title: "Old", Content: "old", AuthorID: user.ID}
	if err := db.Create(&old).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	db.Model(&old).Update("created_at", "2020-01-01 00:00:00")

	createTestPost(t, router, token, "New", nil)

	resp := doJSON(t, router, "GET", "/api/posts", "", nil)
	var list ListResponse
	json.Unmarshal(resp.Body.Bytes(), &list)

	if len(list.Posts) != 2 {
		t.Fatalf("Expected 2 posts, got %d", len(list.Posts))
	}
	if list.Posts[0].Title != "New" {
		t.Errorf("Expected newest post first, got %s", list.Posts[0].Title)
	}
}

func TestCommentsNewestFirstWithCount(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	_, token := createTestUser(t, db, "alice")

	postID := createTestPost(t, router, token, "Post", nil)
	for i := 0; i < 2; i++ {
		doJSON(t, router, "POST", fmt.Sprintf("/api/posts/%d/comments", postID), token, CreateCommentRequest{
			Content: fmt.Sprintf("comment %d", i),
		})
	}

	resp := doJSON(t, router, "GET", "/api/posts", "", nil)
	var list ListResponse
	json.Unmarshal(resp.Body.Bytes(), &list)
	if len(list.Posts) != 1 || list.Posts[0].CommentsCount != 2 {
		t.Errorf("Expected comments_count 2 in listing, got %+v", list.Posts)
	}

	resp = doJSON(t, router, "GET", fmt.Sprintf("/api/posts/%d", postID), "", nil)
	var detail PostDetail
	json.Unmarshal(resp.Body.Bytes(), &detail)
	if len(detail.Comments) != 2 {
		t.Errorf("Expected 2 comments in detail, got %d", len(detail.Comments))
	}
}
