package web

import (
	"net/http"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/kiambuchess/kcca/internal/store"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
)

type registrationRequest struct {
	EventId     int64  `json:"eventId"`
	Name        string `json:"name"`
	Affiliation string `json:"affiliation"`
	Age         int    `json:"age"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
}

// validate trims the request and returns the problems found per field.
func (r *registrationRequest) validate() map[string]string {
	r.Name = strings.TrimSpace(r.Name)
	r.Affiliation = strings.TrimSpace(r.Affiliation)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)

	errs := map[string]string{}
	switch {
	case r.Name == "":
		errs["name"] = "Name is required"
	case utf8.RuneCountInString(r.Name) < 2:
		errs["name"] = "Name must be at least 2 characters"
	}
	if r.Affiliation == "" {
		errs["affiliation"] = "Affiliation is required"
	}
	switch {
	case r.Age == 0:
		errs["age"] = "Age is required"
	case r.Age < 5 || r.Age > 120:
		errs["age"] = "Age must be between 5 and 120"
	}
	switch {
	case r.Email == "":
		errs["email"] = "Email is required"
	case !emailPattern.MatchString(r.Email):
		errs["email"] = "Please enter a valid email address"
	}
	switch {
	case r.Phone == "":
		errs["phone"] = "Phone number is required"
	case !phonePattern.MatchString(r.Phone):
		errs["phone"] = "Please enter a valid 10-digit phone number"
	}
	if r.EventId <= 0 {
		errs["eventId"] = "Event is required"
	}
	return errs
}

// registrationClosed reports whether the deadline of e has passed. The
// deadline day itself is still open.
func registrationClosed(e store.Event, now time.Time) bool {
	return e.RegistrationDeadline != "" && now.UTC().Format(time.DateOnly) > e.RegistrationDeadline
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid registration: "+err.Error())
		return
	}
	if errs := req.validate(); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Please fix the errors in the form", "errors": errs})
		return
	}

	ctx := c.Request.Context()
	e, err := s.db.GetEvent(ctx, req.EventId)
	if err != nil {
		s.fail(c, err, "Event not found", "Registration failed")
		return
	}
	if registrationClosed(e, s.now()) {
		c.JSON(http.StatusConflict, gin.H{"message": "Registration for this event has closed"})
		return
	}

	r := store.Registration{
		EventId:     req.EventId,
		Name:        req.Name,
		Affiliation: req.Affiliation,
		Age:         req.Age,
		Email:       req.Email,
		Phone:       req.Phone,
	}
	if err := s.db.CreateRegistration(ctx, &r); err != nil {
		s.fail(c, err, "Event not found", "Registration failed")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":        "Registration successful",
		"registrationId": r.Id,
		"fee":            s.fee(e),
	})
}

func (s *Server) fee(e store.Event) int64 {
	if e.Fee > 0 {
		return e.Fee
	}
	return s.payment.DefaultFee
}

func (s *Server) handleListRegistrations(c *gin.Context) {
	registrations, err := s.db.ListRegistrations(c.Request.Context())
	if err != nil {
		s.fail(c, err, "", "Failed to fetch registrations")
		return
	}
	c.JSON(http.StatusOK, registrations)
}

func (s *Server) handleRegistrationSummary(c *gin.Context) {
	summary, err := s.db.RegistrationSummary(c.Request.Context())
	if err != nil {
		s.fail(c, err, "", "Failed to fetch registration summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}
