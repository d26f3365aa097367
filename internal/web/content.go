package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kiambuchess/kcca/internal/store"
)

type newsForm struct {
	Title    string `form:"title" json:"title"`
	Content  string `form:"content" json:"content"`
	Category string `form:"category" json:"category"`
}

func (s *Server) bindNewsForm(c *gin.Context) (*newsForm, string, bool) {
	var form newsForm
	if err := c.ShouldBind(&form); err != nil {
		badForm(c, "Invalid news article", err)
		return nil, "", false
	}
	form.Title = strings.TrimSpace(form.Title)
	if form.Title == "" || strings.TrimSpace(form.Content) == "" {
		badRequest(c, "Title and content are required")
		return nil, "", false
	}
	image, ok := s.saveImage(c, "image")
	return &form, image, ok
}

func (s *Server) handleListNews(c *gin.Context) {
	news, err := s.db.ListNews(c.Request.Context(), c.Query("category"))
	if err != nil {
		s.fail(c, err, "", "Failed to fetch news")
		return
	}
	c.JSON(http.StatusOK, news)
}

func (s *Server) handleGetNews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	n, err := s.db.GetNews(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "News item not found", "Failed to fetch news")
		return
	}
	c.JSON(http.StatusOK, n)
}

func (s *Server) handleCreateNews(c *gin.Context) {
	form, image, ok := s.bindNewsForm(c)
	if !ok {
		return
	}
	n := store.News{Title: form.Title, Content: form.Content, Category: form.Category, ImageURL: image}
	if err := s.db.CreateNews(c.Request.Context(), &n); err != nil {
		s.replaced(image, "")
		s.fail(c, err, "", "Failed to create news article")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "News article created successfully",
		"id":      n.Id,
		"news":    n,
	})
}

func (s *Server) handleUpdateNews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	n, err := s.db.GetNews(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "News item not found", "Failed to update news article")
		return
	}
	form, image, ok := s.bindNewsForm(c)
	if !ok {
		return
	}

	old := n.ImageURL
	n.Title, n.Content, n.Category = form.Title, form.Content, form.Category
	if image != "" {
		n.ImageURL = image
	}
	if err := s.db.UpdateNews(c.Request.Context(), &n); err != nil {
		s.replaced(image, "")
		s.fail(c, err, "News item not found", "Failed to update news article")
		return
	}
	s.replaced(old, n.ImageURL)
	c.JSON(http.StatusOK, gin.H{"message": "News article updated successfully", "news": n})
}

func (s *Server) handleDeleteNews(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	n, err := s.db.GetNews(c.Request.Context(), id)
	if err == nil {
		err = s.db.DeleteNews(c.Request.Context(), id)
	}
	if err != nil {
		s.fail(c, err, "News item not found", "Failed to delete news article")
		return
	}
	s.replaced(n.ImageURL, "")
	c.JSON(http.StatusOK, gin.H{"message": "News article deleted successfully"})
}

type galleryForm struct {
	Category string `form:"category" json:"category"`
	Caption  string `form:"caption" json:"caption"`
}

func (s *Server) handleListGallery(c *gin.Context) {
	items, err := s.db.ListGallery(c.Request.Context(), c.Query("category"))
	if err != nil {
		s.fail(c, err, "", "Failed to fetch gallery")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetGalleryItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	g, err := s.db.GetGalleryItem(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Gallery item not found", "Failed to fetch gallery item")
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) handleCreateGalleryItem(c *gin.Context) {
	var form galleryForm
	if err := c.ShouldBind(&form); err != nil {
		badForm(c, "Invalid gallery item", err)
		return
	}
	image, ok := s.saveImage(c, "image")
	if !ok {
		return
	}
	if image == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No image uploaded", "error": "Please upload an image"})
		return
	}

	g := store.GalleryItem{ImageURL: image, Category: form.Category, Caption: form.Caption}
	if err := s.db.CreateGalleryItem(c.Request.Context(), &g); err != nil {
		s.replaced(image, "")
		s.fail(c, err, "", "Failed to upload image")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Image uploaded successfully",
		"id":      g.Id,
		"item":    g,
	})
}

func (s *Server) handleDeleteGalleryItem(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	g, err := s.db.GetGalleryItem(c.Request.Context(), id)
	if err == nil {
		err = s.db.DeleteGalleryItem(c.Request.Context(), id)
	}
	if err != nil {
		s.fail(c, err, "Gallery item not found", "Failed to delete gallery item")
		return
	}
	s.replaced(g.ImageURL, "")
	c.JSON(http.StatusOK, gin.H{"message": "Gallery item deleted successfully"})
}

type memberForm struct {
	Name     string `form:"name" json:"name"`
	Position string `form:"position" json:"position"`
	Email    string `form:"email" json:"email"`
	Phone    string `form:"phone" json:"phone"`
	Bio      string `form:"bio" json:"bio"`
}

func (s *Server) bindMemberForm(c *gin.Context) (*memberForm, string, bool) {
	var form memberForm
	if err := c.ShouldBind(&form); err != nil {
		badForm(c, "Invalid member", err)
		return nil, "", false
	}
	form.Name = strings.TrimSpace(form.Name)
	form.Position = strings.TrimSpace(form.Position)
	if form.Name == "" || form.Position == "" {
		badRequest(c, "Name and position are required")
		return nil, "", false
	}
	image, ok := s.saveImage(c, "image")
	return &form, image, ok
}

func (f *memberForm) apply(m *store.Member) {
	m.Name, m.Position = f.Name, f.Position
	m.Email, m.Phone, m.Bio = f.Email, f.Phone, f.Bio
}

func (s *Server) handleListMembers(c *gin.Context) {
	members, err := s.db.ListMembers(c.Request.Context())
	if err != nil {
		s.fail(c, err, "", "Failed to fetch members")
		return
	}
	c.JSON(http.StatusOK, members)
}

func (s *Server) handleGetMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	m, err := s.db.GetMember(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Member not found", "Failed to fetch member")
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) handleCreateMember(c *gin.Context) {
	form, image, ok := s.bindMemberForm(c)
	if !ok {
		return
	}
	m := store.Member{ImageURL: image}
	form.apply(&m)
	if err := s.db.CreateMember(c.Request.Context(), &m); err != nil {
		s.replaced(image, "")
		s.fail(c, err, "", "Failed to create member")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Member created successfully",
		"id":      m.Id,
		"member":  m,
	})
}

func (s *Server) handleUpdateMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	m, err := s.db.GetMember(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Member not found", "Failed to update member")
		return
	}
	form, image, ok := s.bindMemberForm(c)
	if !ok {
		return
	}

	old := m.ImageURL
	form.apply(&m)
	if image != "" {
		m.ImageURL = image
	}
	if err := s.db.UpdateMember(c.Request.Context(), &m); err != nil {
		s.replaced(image, "")
		s.fail(c, err, "Member not found", "Failed to update member")
		return
	}
	s.replaced(old, m.ImageURL)
	c.JSON(http.StatusOK, gin.H{"message": "Member updated successfully", "member": m})
}

func (s *Server) handleDeleteMember(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	m, err := s.db.GetMember(c.Request.Context(), id)
	if err == nil {
		err = s.db.DeleteMember(c.Request.Context(), id)
	}
	if err != nil {
		s.fail(c, err, "Member not found", "Failed to delete member")
		return
	}
	s.replaced(m.ImageURL, "")
	c.JSON(http.StatusOK, gin.H{"message": "Member deleted successfully"})
}
