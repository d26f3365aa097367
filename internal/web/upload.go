package web

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	uploadsPrefix = "/uploads/"

	// formOverhead is room for the multipart framing and text fields that
	// travel with an uploaded image.
	formOverhead = 64 << 10
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

var (
	errNotImage     = errors.New("only jpg, jpeg, png, gif and webp images are allowed")
	errFileTooLarge = errors.New("file is too large")
)

// uploads stores images posted with admin forms under dir.
type uploads struct {
	dir      string
	maxBytes int64
}

// bodyLimit is the largest admin form body read before giving up.
func (u *uploads) bodyLimit() int64 {
	return u.maxBytes + formOverhead
}

// tooLarge reports whether err came from reading past the body limit.
func tooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}

// save stores the file posted in field and returns its URL, or "" when the
// request carries no such file.
func (u *uploads) save(c *gin.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return "", nil
	}
	if tooLarge(err) {
		return "", errFileTooLarge
	}
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !imageExtensions[ext] {
		return "", errNotImage
	}
	if fh.Size > u.maxBytes {
		return "", errFileTooLarge
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	name := uuid.NewString() + ext
	if err := c.SaveUploadedFile(fh, filepath.Join(u.dir, name)); err != nil {
		return "", fmt.Errorf("save upload: %w", err)
	}
	return uploadsPrefix + name, nil
}

// remove deletes an uploaded file by its URL. URLs outside /uploads/ are
// ignored.
func (u *uploads) remove(url string) error {
	name, ok := strings.CutPrefix(url, uploadsPrefix)
	if !ok || name == "" || name != filepath.Base(name) {
		return nil
	}
	err := os.Remove(filepath.Join(u.dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// saveImage is save answering bad uploads with a 400. It reports false when
// a response was written.
func (s *Server) saveImage(c *gin.Context, field string) (string, bool) {
	url, err := s.uploads.save(c, field)
	switch {
	case errors.Is(err, errNotImage), errors.Is(err, errFileTooLarge):
		badRequest(c, err.Error())
		return "", false
	case err != nil:
		s.fail(c, err, "", "Failed to upload image")
		return "", false
	}
	return url, true
}

// replaced removes old when it was replaced by a new upload.
func (s *Server) replaced(old, current string) {
	if old == "" || old == current {
		return
	}
	if err := s.uploads.remove(old); err != nil {
		s.log.Warn("Could not remove upload", zap.String("url", old), zap.Error(err))
	}
}
