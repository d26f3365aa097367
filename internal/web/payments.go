package web

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kiambuchess/kcca/internal/mail"
	"github.com/kiambuchess/kcca/internal/store"
)

const mailTimeout = 2 * time.Minute

var referencePattern = regexp.MustCompile(`^[A-Z0-9]{8,12}$`)

// normalizeReference returns an M-Pesa transaction code in its canonical
// upper case form, or false when s is not one.
func normalizeReference(s string) (string, bool) {
	ref := strings.ToUpper(strings.TrimSpace(s))
	return ref, referencePattern.MatchString(ref)
}

func (s *Server) handleCreatePayment(c *gin.Context) {
	var req struct {
		RegistrationId int64 `json:"registrationId"`
		Amount         int64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid payment: "+err.Error())
		return
	}
	if req.RegistrationId <= 0 {
		badRequest(c, "Registration is required")
		return
	}
	if req.Amount < 0 {
		badRequest(c, "Amount cannot be negative")
		return
	}

	ctx := c.Request.Context()
	if req.Amount == 0 {
		r, err := s.db.GetRegistration(ctx, req.RegistrationId)
		if err != nil {
			s.fail(c, err, "Registration not found", "Failed to create payment record")
			return
		}
		e, err := s.db.GetEvent(ctx, r.EventId)
		if err != nil {
			s.fail(c, err, "Event not found", "Failed to create payment record")
			return
		}
		req.Amount = s.fee(e)
	}

	p := store.Payment{RegistrationId: req.RegistrationId, Amount: req.Amount}
	if err := s.db.CreatePayment(ctx, &p); err != nil {
		s.fail(c, err, "Registration not found", "Failed to create payment record")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":   "Payment record created",
		"paymentId": p.Id,
		"paybill":   s.payment.Paybill,
		"account":   s.payment.Account,
		"amount":    p.Amount,
	})
}

func (s *Server) handleConfirmPayment(c *gin.Context) {
	var req struct {
		PaymentId      int64  `json:"paymentId"`
		MpesaReference string `json:"mpesaReference"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid payment confirmation: "+err.Error())
		return
	}
	if req.PaymentId <= 0 {
		badRequest(c, "Payment is required")
		return
	}
	ref, ok := normalizeReference(req.MpesaReference)
	if !ok {
		badRequest(c, "Please enter a valid M-Pesa reference code")
		return
	}

	ctx := c.Request.Context()
	p, err := s.db.ConfirmPayment(ctx, req.PaymentId, ref)
	if errors.Is(err, store.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"message": "This payment has expired, please register again"})
		return
	}
	if err != nil {
		s.fail(c, err, "Payment not found", "Failed to confirm payment")
		return
	}

	if confirmation, err := s.db.Confirmation(ctx, p.RegistrationId); err != nil {
		s.log.Error("Could not load confirmation", zap.Int64("payment_id", p.Id), zap.Error(err))
	} else {
		s.sendConfirmationAsync(confirmation)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Payment confirmed successfully", "payment": p})
}

// sendConfirmationAsync emails c without holding up the response. Failures
// are only logged; the admin can resend.
func (s *Server) sendConfirmationAsync(c store.Confirmation) {
	s.mails.Add(1)
	go func() {
		defer s.mails.Done()
		ctx, cancel := context.WithTimeout(context.Background(), mailTimeout)
		defer cancel()
		err := s.sendConfirmation(ctx, c)
		switch {
		case errors.Is(err, mail.ErrDisabled):
			s.log.Debug("Mail disabled, confirmation not sent", zap.Int64("registration_id", c.Registration.Id))
		case err != nil:
			s.log.Error("Confirmation email failed", zap.Int64("registration_id", c.Registration.Id), zap.Error(err))
		default:
			s.log.Info("Confirmation email sent", zap.Int64("registration_id", c.Registration.Id))
		}
	}()
}

func (s *Server) sendConfirmation(ctx context.Context, c store.Confirmation) error {
	m, err := mail.RenderConfirmation(c)
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, m)
}

func (s *Server) handlePaymentSummary(c *gin.Context) {
	summary, err := s.db.PaymentSummary(c.Request.Context())
	if err != nil {
		s.fail(c, err, "", "Failed to fetch payment summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleResendConfirmation(c *gin.Context) {
	id, ok := paramID(c, "registrationId")
	if !ok {
		return
	}
	confirmation, err := s.db.Confirmation(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Registration or payment not found", "Failed to resend confirmation email")
		return
	}

	err = s.sendConfirmation(c.Request.Context(), confirmation)
	if errors.Is(err, mail.ErrDisabled) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Email is not configured"})
		return
	}
	if err != nil {
		s.fail(c, err, "", "Failed to resend confirmation email")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Confirmation email resent successfully"})
}
