package ui

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"time"

	"datadash/adapters/chart"
	"datadash/internal/config"
	"datadash/internal/loader"
	"datadash/internal/session"
	"datadash/ui/middleware"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// Dependencies are the collaborators the dashboard server needs
type Dependencies struct {
	Config   *config.Config
	Remote   *loader.RemoteLoader
	Uploads  *loader.UploadLoader
	Sessions *session.Store
	Renderer *chart.Renderer
	API      http.Handler
}

// Server represents the web server for the data dashboard
type Server struct {
	router    *gin.Engine
	cfg       *config.Config
	remote    *loader.RemoteLoader
	uploads   *loader.UploadLoader
	sessions  *session.Store
	renderer  *chart.Renderer
	api       http.Handler
	templates *template.Template
	intro     template.HTML
}

// NewServer creates a new web server instance
func NewServer(deps Dependencies) (*Server, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		router:    gin.Default(),
		cfg:       deps.Config,
		remote:    deps.Remote,
		uploads:   deps.Uploads,
		sessions:  deps.Sessions,
		renderer:  deps.Renderer,
		api:       deps.API,
		templates: templates,
		intro:     template.HTML(markdown.ToHTML([]byte(deps.Config.Intro), nil, nil)),
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.MaxMultipartMemory = s.cfg.Server.MaxUploadBytes
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	dashboard := s.router.Group("/")
	dashboard.Use(middleware.EnsureSession(s.sessions, s.defaultSession(), s.cfg.Session.TTL))
	dashboard.GET("/", s.handleDashboard)
	dashboard.POST("/", s.handleDashboard)
	dashboard.GET("/chart.png", s.handleChart)

	if s.api != nil {
		s.router.Any("/api/*path", gin.WrapH(s.api))
	}
}

func (s *Server) defaultSession() session.State {
	return session.State{
		RepoURL:   s.cfg.Data.DefaultRepoURL,
		FilePath:  s.cfg.Data.DefaultFilePath,
		UseRemote: true,
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting data dashboard on http://%s", addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("dashboard server stopped: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
