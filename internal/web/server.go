// Package web serves the KCCA JSON API and the static site.
package web

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kiambuchess/kcca/internal/auth"
	"github.com/kiambuchess/kcca/internal/config"
	"github.com/kiambuchess/kcca/internal/mail"
	"github.com/kiambuchess/kcca/internal/store"
)

const shutdownTimeout = 10 * time.Second

// Server is the KCCA web server.
type Server struct {
	cfg     config.HTTPConfig
	payment config.PaymentConfig
	db      *store.DB
	creds   *auth.Credentials
	tokens  *auth.Tokens
	mailer  mail.Mailer
	uploads *uploads
	log     *zap.Logger
	router  *gin.Engine

	// confirmation emails still being delivered
	mails sync.WaitGroup

	now func() time.Time
}

func NewServer(cfg *config.Config, db *store.DB, creds *auth.Credentials, tokens *auth.Tokens, mailer mail.Mailer, log *zap.Logger) *Server {
	router := gin.New()
	router.MaxMultipartMemory = cfg.HTTP.MaxUploadBytes

	s := &Server{
		cfg:     cfg.HTTP,
		payment: cfg.Payment,
		db:      db,
		creds:   creds,
		tokens:  tokens,
		mailer:  mailer,
		uploads: &uploads{dir: cfg.HTTP.UploadDir, maxBytes: cfg.HTTP.MaxUploadBytes},
		log:     log,
		router:  router,
		now:     time.Now,
	}

	router.Use(
		requestID(),
		accessLog(log),
		gin.CustomRecoveryWithWriter(io.Discard, recovered(log)),
		corsPolicy(cfg.HTTP.CORSOrigins),
	)

	router.Static("/uploads", cfg.HTTP.UploadDir)
	router.NoRoute(s.serveSite)

	api := router.Group("/api")
	{
		api.GET("/test", s.handleTest)
		api.GET("/health", s.handleHealth)

		api.GET("/events", s.handleListEvents)
		api.GET("/tournaments", s.handleListEvents)
		api.GET("/events/:id", s.handleGetEvent)
		api.GET("/news", s.handleListNews)
		api.GET("/news/:id", s.handleGetNews)
		api.GET("/gallery", s.handleListGallery)
		api.GET("/gallery/:id", s.handleGetGalleryItem)
		api.GET("/members", s.handleListMembers)
		api.GET("/members/:id", s.handleGetMember)

		api.POST("/register", s.handleRegister)
		api.POST("/payments/create", s.handleCreatePayment)
		api.POST("/payments/confirm", s.handleConfirmPayment)
		api.GET("/payments/summary", s.requireAdmin, s.handlePaymentSummary)

		api.POST("/admin/login", s.handleLogin)
	}

	admin := api.Group("/admin", s.requireAdmin)
	{
		admin.POST("/logout", s.handleLogout)

		admin.DELETE("/events/:id", s.handleDeleteEvent)
		admin.DELETE("/tournaments/:id", s.handleDeleteEvent)
		admin.DELETE("/news/:id", s.handleDeleteNews)
		admin.DELETE("/gallery/:id", s.handleDeleteGalleryItem)
		admin.DELETE("/members/:id", s.handleDeleteMember)

		admin.GET("/registrations", s.handleListRegistrations)
		admin.GET("/registrations/summary", s.handleRegistrationSummary)
		admin.POST("/resend-confirmation/:registrationId", s.handleResendConfirmation)
	}

	forms := admin.Group("", s.limitBody)
	{
		forms.POST("/events", s.handleCreateEvent)
		forms.PUT("/events/:id", s.handleUpdateEvent)
		forms.POST("/tournaments", s.handleCreateEvent)
		forms.PUT("/tournaments/:id", s.handleUpdateEvent)
		forms.POST("/news", s.handleCreateNews)
		forms.PUT("/news/:id", s.handleUpdateNews)
		forms.POST("/gallery", s.handleCreateGalleryItem)
		forms.POST("/members", s.handleCreateMember)
		forms.PUT("/members/:id", s.handleUpdateMember)
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully and waits for pending confirmation emails.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", zap.String("addr", s.cfg.Addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	if errors.Is(<-errc, http.ErrServerClosed) {
		s.log.Info("HTTP server stopped")
	}
	s.mails.Wait()
	return err
}

// Wait blocks until confirmation emails sent in the background are done.
func (s *Server) Wait() {
	s.mails.Wait()
}

// serveSite serves the static site bundle, falling back to index.html so
// client side routes work.
func (s *Server) serveSite(c *gin.Context) {
	p := c.Request.URL.Path
	if strings.HasPrefix(p, "/api/") || s.cfg.WebDir == "" ||
		(c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
		return
	}

	name := filepath.Join(s.cfg.WebDir, filepath.FromSlash(path.Clean("/"+p)))
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		c.File(name)
		return
	}
	index := filepath.Join(s.cfg.WebDir, "index.html")
	if _, err := os.Stat(index); err == nil {
		c.File(index)
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
}

func (s *Server) handleTest(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Server is working!"})
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.db.Ping(c.Request.Context()); err != nil {
		s.log.Warn("Database ping failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
