package server

import (
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"ctchen222/fatty-hosting/internal/api/controller"
	"ctchen222/fatty-hosting/internal/api/middleware"
	"ctchen222/fatty-hosting/internal/api/response"
	"ctchen222/fatty-hosting/internal/api/service"
	"ctchen222/fatty-hosting/internal/ratelimit"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	UserService    service.UserService
	RequestService service.RequestService
	Limiter        ratelimit.Limiter
	// StaticDir holds the public marketing site; empty or missing disables it.
	StaticDir    string
	ExposeDetail bool
	// TrustedProxies may set X-Forwarded-For; nil means the peer address
	// is the client IP used for rate limiting.
	TrustedProxies []string
}

type Server struct {
	engine *gin.Engine
}

func NewServer(d Deps) (*Server, error) {
	engine := gin.New()
	if err := engine.SetTrustedProxies(d.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Tracing(),
		middleware.AccessLog(),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", controller.AdminKeyHeader},
			ExposeHeaders:   []string{middleware.RequestIDHeader, "Retry-After"},
			MaxAge:          12 * time.Hour,
		}),
	)

	users := controller.NewUserController(d.UserService, d.ExposeDetail)
	servers := controller.NewServerController(d.RequestService, d.ExposeDetail)
	requireUser := middleware.Auth(d.UserService, d.ExposeDetail)

	api := engine.Group("/api")

	auth := api.Group("/auth")
	// Each route gets its own budget, as separate limiter instances did before.
	registerRule, loginRule := ratelimit.AuthRule, ratelimit.AuthRule
	registerRule.Name, loginRule.Name = "register", "login"
	auth.POST("/register", middleware.RateLimit(d.Limiter, registerRule, "Too many attempts, please try again later"), users.Register)
	auth.POST("/login", middleware.RateLimit(d.Limiter, loginRule, "Too many attempts, please try again later"), users.Login)
	auth.GET("/verify", requireUser, users.Verify)

	srv := api.Group("/servers")
	srv.POST("/request", requireUser,
		middleware.RateLimit(d.Limiter, ratelimit.SubmitRule, "Too many server requests, please try again later"),
		servers.Submit)
	srv.GET("/my-requests", requireUser, servers.MyRequests)
	srv.POST("/approve/:id", servers.Approve)

	api.GET("/health", health)

	engine.NoRoute(notFound(d.StaticDir))

	return &Server{engine: engine}, nil
}

// Engine returns the handler to mount on an http.Server.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "FATTY HOSTING API is running"})
}

// notFound answers unknown API paths with JSON and everything else from
// the static site directory.
func notFound(staticDir string) gin.HandlerFunc {
	var files http.Handler
	if staticDir != "" {
		if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
			files = http.FileServer(http.Dir(staticDir))
		}
	}

	return func(c *gin.Context) {
		if files == nil || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			response.ErrorResponse(c, http.StatusNotFound, "Not found")
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			response.ErrorResponse(c, http.StatusNotFound, "Not found")
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
