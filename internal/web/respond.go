package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kiambuchess/kcca/internal/store"
)

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message})
}

// badForm answers a form that could not be bound. A body cut off at the
// upload limit is reported as such.
func badForm(c *gin.Context, what string, err error) {
	if tooLarge(err) {
		badRequest(c, errFileTooLarge.Error())
		return
	}
	badRequest(c, what+": "+err.Error())
}

// fail answers with the status matching a store error. Anything unexpected
// is logged and reported as a 500 with message.
func (s *Server) fail(c *gin.Context, err error, notFound, message string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": notFound})
	case errors.Is(err, store.ErrAlreadyConfirmed):
		c.JSON(http.StatusConflict, gin.H{"message": "Payment already confirmed"})
	case errors.Is(err, store.ErrDuplicateReference):
		c.JSON(http.StatusConflict, gin.H{"message": "This M-Pesa reference has already been used"})
	case errors.Is(err, store.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"message": message, "error": err.Error()})
	default:
		s.log.Error(message, zap.Error(err), zap.String("request_id", c.GetString(requestIDKey)))
		c.JSON(http.StatusInternalServerError, gin.H{"message": message, "error": err.Error()})
	}
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid id")
		return 0, false
	}
	return id, true
}
