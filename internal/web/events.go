package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kiambuchess/kcca/internal/store"
)

type eventForm struct {
	Title                string `form:"title" json:"title"`
	Date                 string `form:"date" json:"date"`
	Location             string `form:"location" json:"location"`
	Description          string `form:"description" json:"description"`
	RegistrationDeadline string `form:"registrationDeadline" json:"registrationDeadline"`
	Fee                  *int64 `form:"fee" json:"fee"`
}

func (f *eventForm) validate() string {
	f.Title = strings.TrimSpace(f.Title)
	f.Date = strings.TrimSpace(f.Date)
	f.RegistrationDeadline = strings.TrimSpace(f.RegistrationDeadline)
	switch {
	case f.Title == "" || f.Date == "":
		return "Title and date are required"
	case !isDate(f.Date):
		return "Date must be formatted YYYY-MM-DD"
	case f.RegistrationDeadline != "" && !isDate(f.RegistrationDeadline):
		return "Registration deadline must be formatted YYYY-MM-DD"
	case f.Fee != nil && *f.Fee < 0:
		return "Fee cannot be negative"
	}
	return ""
}

// apply copies the form onto e. A form without a fee keeps the fee e
// already has.
func (f *eventForm) apply(e *store.Event, defaultFee int64) {
	e.Title = f.Title
	e.Date = f.Date
	e.Location = f.Location
	e.Description = f.Description
	e.RegistrationDeadline = f.RegistrationDeadline
	if f.Fee != nil {
		e.Fee = *f.Fee
	}
	if e.Fee == 0 {
		e.Fee = defaultFee
	}
}

func isDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// bindEventForm reads an event from a multipart or JSON body along with its
// poster, which may be posted as "poster" or "image".
func (s *Server) bindEventForm(c *gin.Context) (*eventForm, string, bool) {
	var form eventForm
	if err := c.ShouldBind(&form); err != nil {
		badForm(c, "Invalid event", err)
		return nil, "", false
	}
	if msg := form.validate(); msg != "" {
		badRequest(c, msg)
		return nil, "", false
	}

	poster, ok := s.saveImage(c, "poster")
	if ok && poster == "" {
		poster, ok = s.saveImage(c, "image")
	}
	return &form, poster, ok
}

func (s *Server) handleListEvents(c *gin.Context) {
	events, err := s.db.ListEvents(c.Request.Context())
	if err != nil {
		s.fail(c, err, "", "Failed to fetch events")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) handleGetEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	e, err := s.db.GetEvent(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Event not found", "Failed to fetch event")
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) handleCreateEvent(c *gin.Context) {
	form, poster, ok := s.bindEventForm(c)
	if !ok {
		return
	}

	var e store.Event
	form.apply(&e, s.payment.DefaultFee)
	e.PosterURL = poster
	if err := s.db.CreateEvent(c.Request.Context(), &e); err != nil {
		s.replaced(poster, "")
		s.fail(c, err, "", "Failed to create event")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully",
		"id":      e.Id,
		"event":   e,
	})
}

func (s *Server) handleUpdateEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	e, err := s.db.GetEvent(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Event not found", "Failed to update event")
		return
	}
	form, poster, ok := s.bindEventForm(c)
	if !ok {
		return
	}

	old := e.PosterURL
	form.apply(&e, s.payment.DefaultFee)
	if poster != "" {
		e.PosterURL = poster
	}
	if err := s.db.UpdateEvent(c.Request.Context(), &e); err != nil {
		s.replaced(poster, "")
		s.fail(c, err, "Event not found", "Failed to update event")
		return
	}
	s.replaced(old, e.PosterURL)
	c.JSON(http.StatusOK, gin.H{"message": "Event updated successfully", "event": e})
}

func (s *Server) handleDeleteEvent(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	e, err := s.db.GetEvent(c.Request.Context(), id)
	if err == nil {
		err = s.db.DeleteEvent(c.Request.Context(), id)
	}
	if errors.Is(err, store.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"message": "Cannot delete an event that has registrations"})
		return
	}
	if err != nil {
		s.fail(c, err, "Event not found", "Failed to delete event")
		return
	}
	s.replaced(e.PosterURL, "")
	c.JSON(http.StatusOK, gin.H{"message": "Event deleted successfully"})
}
