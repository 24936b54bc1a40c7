// Package httpapi exposes the portal over HTTP. Role checks live in
// the domain layer; handlers here bind input, call verbs and map
// domain errors onto status codes.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pujarshrikant459-ux/VidyaVahini/internal/auth"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/cloudinary"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/config"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/docstore"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/httpmiddleware"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/identity"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/portal"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/store"
	"github.com/pujarshrikant459-ux/VidyaVahini/internal/textgen"
)

// Server holds everything the handlers need.
type Server struct {
	cfg      config.App
	portal   *portal.Portal
	identity *identity.Client
	docs     *docstore.Client
	gen      *textgen.Client
	cdn      *cloudinary.Client
	db       *store.DB
	redis    *store.Redis
}

// New wires a server. cdn, db and redis may be nil when not configured.
func New(cfg config.App, p *portal.Portal, id *identity.Client, docs *docstore.Client, gen *textgen.Client, cdn *cloudinary.Client, db *store.DB, redis *store.Redis) *Server {
	return &Server{cfg: cfg, portal: p, identity: id, docs: docs, gen: gen, cdn: cdn, db: db, redis: redis}
}

// Router builds the gin engine with the portal's middleware stack.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())

	// With redis available the limit is shared across api processes;
	// otherwise each process throttles on its own.
	var limiter httpmiddleware.Limiter = httpmiddleware.NewTokenBucket(s.cfg.RateLimitPerMin, s.cfg.RateLimitPerMin)
	if s.redis != nil && s.redis.Client != nil {
		limiter = httpmiddleware.NewRedisWindow(s.redis.Client, s.cfg.RateLimitPerMin)
	}
	r.Use(httpmiddleware.RateLimit(limiter))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.handleHealthz)

	// Public surface: login, registration and the landing-page bits.
	r.POST("/v1/auth/admin/login", s.handleAdminLogin)
	r.POST("/v1/auth/parent/login", s.handleParentLogin)
	r.POST("/v1/auth/school/register", s.handleSchoolRegister)
	r.GET("/v1/site/about", s.handleGetAbout)
	r.GET("/v1/preferences/language", s.handleGetLanguage)
	r.PUT("/v1/preferences/language", s.handleSetLanguage)

	v1 := r.Group("/v1", auth.Middleware(s.cfg.JWTSigningKey, s.cfg.JWTIssuer))

	v1.POST("/auth/parent/register", s.handleParentRegister)

	v1.GET("/students", s.handleListStudents)
	v1.GET("/students/me", s.handleCurrentStudent)
	v1.POST("/students", s.handleAddStudent)
	v1.PUT("/students/:id", s.handleUpdateStudent)
	v1.DELETE("/students/:id", s.handleDeleteStudent)
	v1.POST("/students/:id/attendance", s.handleSetAttendance)
	v1.POST("/students/:id/fees", s.handleAddFee)
	v1.POST("/students/:id/fees/:feeID/approve", s.handleApproveFee)
	v1.POST("/students/:id/fees/:feeID/pay", s.handlePayFee)
	v1.POST("/students/:id/notes", s.handleAddNote)

	v1.GET("/announcements", s.handleListAnnouncements)
	v1.POST("/announcements", s.handleAddAnnouncement)
	v1.DELETE("/announcements/:id", s.handleDeleteAnnouncement)
	v1.POST("/announcements/ack", s.handleAckAnnouncements)

	v1.GET("/gallery", s.handleGallery)
	v1.POST("/gallery/:kind", s.handleAddGalleryItem)
	v1.DELETE("/gallery/:kind/:id", s.handleDeleteGalleryItem)
	v1.POST("/upload", s.handleUpload)

	v1.PUT("/site/about", s.handleSetAbout)

	v1.GET("/staff", s.handleListStaff)
	v1.POST("/staff", s.handleAddStaff)
	v1.PUT("/staff/:id", s.handleUpdateStaff)
	v1.DELETE("/staff/:id", s.handleDeleteStaff)

	v1.GET("/homework", s.handleListHomework)
	v1.POST("/homework", s.handleAddHomework)
	v1.PUT("/homework/:id", s.handleUpdateHomework)
	v1.DELETE("/homework/:id", s.handleDeleteHomework)

	v1.GET("/timetable", s.handleGetTimetable)
	v1.PUT("/timetable", s.handleSetTimetable)

	v1.GET("/transport", s.handleListTransport)
	v1.POST("/transport", s.handleAddTransport)
	v1.PUT("/transport/:id", s.handleUpdateTransport)
	v1.DELETE("/transport/:id", s.handleDeleteTransport)

	v1.POST("/ai/fee-description", s.handleFeeDescription)
	v1.POST("/ai/fee-insights", s.handleFeeInsights)

	return r
}

func (s *Server) handleHealthz(c *gin.Context) {
	redisHealthy := s.redis == nil || s.redis.Healthy(c.Request.Context())
	dbHealthy := true
	if s.db != nil && s.db.Client != nil {
		dbHealthy = s.db.Client.PingContext(c.Request.Context()) == nil
	}
	status := http.StatusOK
	if !redisHealthy || !dbHealthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
}

// writeError maps domain and collaborator errors to status codes.
func writeError(c *gin.Context, err error) {
	var authzErr *portal.AuthorizationError
	var valErr *portal.ValidationError
	var feeErr *portal.FeeStateError
	var idErr *identity.AuthError

	switch {
	case errors.As(err, &authzErr):
		c.JSON(http.StatusForbidden, gin.H{"error": authzErr.Error()})
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Error()})
	case errors.As(err, &feeErr):
		c.JSON(http.StatusConflict, gin.H{"error": feeErr.Error()})
	case errors.Is(err, portal.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &idErr):
		status := http.StatusUnauthorized
		switch idErr.Code {
		case identity.CodeEmailInUse:
			status = http.StatusConflict
		case identity.CodeNetwork:
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"error": idErr.Code})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
