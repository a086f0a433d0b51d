package service

import (
	"net/http"
	"strconv"

	"hackdash/manager"
	"hackdash/response"

	"github.com/gin-gonic/gin"
)

// Options carries the HTTP-level settings of the server.
type Options struct {
	CookieName   string
	SecureCookie bool
	WelcomePath  string
	MaxUpload    int64
	// Quiet disables the request logger, for tests.
	Quiet bool
}

// Managers groups the domain operations the handlers call.
type Managers struct {
	Identity *manager.Identity
	Accounts *manager.Accounts
	Admin    *manager.Admin
	Teams    *manager.Teams
	Posts    *manager.Posts
	Votes    *manager.Votes
}

// Server owns the gin engine and routes every request to a manager.
type Server struct {
	engine *gin.Engine
	m      Managers
	opts   Options
}

func New(m Managers, opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	if !opts.Quiet {
		router.Use(gin.LoggerWithWriter(gin.DefaultWriter, "/healthz"))
	}
	router.NoMethod(response.MethodNotAllowed)
	router.NoRoute(response.NotFound)

	srv := &Server{engine: router, m: m, opts: opts}
	srv.registerRoutes()
	return srv
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.engine.Group("/api", s.PrincipalMiddleware())
	s.registerAuth(api.Group("/auth"))
	s.registerAccount(api)
	s.registerAdmin(api.Group("/admin"))
	s.registerProjects(api.Group("/projects"))
	s.registerImages(api)
	s.registerPosts(api.Group("/posts"))
	s.registerVotes(api.Group("/votes"))
}

type idRequest struct {
	ID uint `json:"id" binding:"required"`
}

// parseID reads a numeric path parameter, answering 404 when it is not one.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.NotFound(c)
		return 0, false
	}
	return uint(id), true
}
