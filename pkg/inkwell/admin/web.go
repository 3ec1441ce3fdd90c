package admin

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"inkwell/pkg/inkwell/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates returns the parsed admin HTML templates for the gin engine
func Templates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

// dashboardPost is a row in the dashboard's recent-posts table
type dashboardPost struct {
	ID        uint
	Title     string
	Author    string
	CreatedAt string
}

// LoginForm renders the admin login form with any flashed messages
func (h *Handler) LoginForm(c *gin.Context) {
	session := sessions.Default(c)
	flashes := session.Flashes()
	session.Save()

	c.HTML(http.StatusOK, "login.html", gin.H{"Flashes": flashes})
}

// Login checks the submitted form credentials against the configured admin
// pair. There is one shared admin identity and no hashing on this path.
func (h *Handler) Login(c *gin.Context) {
	username := c.PostForm("username")
	password := c.PostForm("password")

	session := sessions.Default(c)
	if username != h.adminUsername || password != h.adminPassword {
		session.AddFlash("Invalid credentials")
		session.Save()
		c.Redirect(http.StatusSeeOther, "/admin/login")
		return
	}

	session.Set(sessionKeyLoggedIn, true)
	session.Save()
	c.Redirect(http.StatusSeeOther, "/")
}

// Logout clears the admin session flag
func (h *Handler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Delete(sessionKeyLoggedIn)
	session.Save()
	c.Redirect(http.StatusSeeOther, "/admin/login")
}

// Dashboard renders the admin overview page, or redirects to the login form
// when no admin session is present.
func (h *Handler) Dashboard(c *gin.Context) {
	if !isLoggedIn(c) {
		c.Redirect(http.StatusSeeOther, "/admin/login")
		return
	}

	stats, err := h.collectStats()
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	var posts []models.Post
	if err := h.db.Preload("Author").Order("created_at DESC").Limit(10).Find(&posts).Error; err != nil {
		c.String(http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	recent := make([]dashboardPost, len(posts))
	for i, post := range posts {
		recent[i] = dashboardPost{
			ID:        post.ID,
			Title:     post.Title,
			Author:    post.Author.Username,
			CreatedAt: post.CreatedAt.UTC().Format(timeFormat),
		}
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Stats":       stats,
		"RecentPosts": recent,
	})
}

// RegisterWebRoutes registers the session-gated admin HTML routes on the
// engine root.
func (h *Handler) RegisterWebRoutes(r *gin.Engine) {
	r.GET("/", h.Dashboard)
	r.GET("/admin/login", h.LoginForm)
	r.POST("/admin/login", h.Login)
	r.GET("/admin/logout", h.Logout)
}
