package web

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
)

const (
	requestIDHeader = "X-Request-ID"
	maxRequestIDLen = 64

	requestIDKey = "request_id"
	userKey      = "user"
	tokenKey     = "token"
)

// requestID tags each request with the caller's X-Request-ID, or a fresh
// ksuid when the header is missing or unfit for logs.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !validRequestID(id) {
			id = ksuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func validRequestID(id string) bool {
	if _, err := ksuid.Parse(id); err == nil {
		return true
	}
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return false
		}
	}
	return true
}

func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("HTTP request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

func recovered(log *zap.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, err any) {
		log.Error("Panic while serving request",
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.Any("panic", err),
			zap.Stack("stack"),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "Something went wrong!",
			"error":   fmt.Sprint(err),
		})
	}
}

// corsPolicy allows the configured front-end origins to call the API with
// credentials.
func corsPolicy(origins []string) gin.HandlerFunc {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		allowed = append(allowed, strings.TrimRight(o, "/"))
	}
	return cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// limitBody stops reading admin form bodies once they pass the upload limit.
// Bodies that announce a larger length are refused before any is read.
func (s *Server) limitBody(c *gin.Context) {
	limit := s.uploads.bodyLimit()
	if c.Request.ContentLength > limit {
		c.Header("Connection", "close")
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": errFileTooLarge.Error()})
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	c.Next()
}

// requireAdmin lets requests carrying a valid admin token through.
func (s *Server) requireAdmin(c *gin.Context) {
	token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
	if !ok || token == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
		return
	}

	user, err := s.tokens.VerifyToken(token)
	if err != nil {
		s.log.Debug("Rejected admin token", zap.Error(err), zap.String("request_id", c.GetString(requestIDKey)))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid token"})
		return
	}
	c.Set(userKey, user)
	c.Set(tokenKey, token)
	c.Next()
}
