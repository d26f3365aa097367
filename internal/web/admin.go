package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) handleLogin(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Username == "" || req.Password == "" {
		badRequest(c, "Username and password are required")
		return
	}

	if !s.creds.Verify(req.Username, []byte(req.Password)) {
		s.log.Info("Failed admin login", zap.String("username", req.Username), zap.String("client_ip", c.ClientIP()))
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials", "error": "Invalid username or password"})
		return
	}

	token, err := s.tokens.Issue(req.Username)
	if err != nil {
		s.fail(c, err, "", "Internal server error")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  gin.H{"username": req.Username},
	})
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.tokens.Revoke(c.GetString(tokenKey)); err != nil {
		c.JSON(http.StatusForbidden, gin.H{"message": "Invalid token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}
