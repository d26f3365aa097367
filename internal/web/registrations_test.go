package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiambuchess/kcca/internal/mail"
	"github.com/kiambuchess/kcca/internal/store"
)

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func (ts *testServer) addEvent(t *testing.T, deadline string) int64 {
	t.Helper()
	e := store.Event{
		Title:                "Kiambu County Chess Championship 2024",
		Date:                 "2024-06-15",
		Location:             "Kiambu Town Hall",
		RegistrationDeadline: deadline,
		Fee:                  1000,
	}
	require.NoError(t, ts.db.CreateEvent(context.Background(), &e))
	return e.Id
}

func registration(eventID int64) gin.H {
	return gin.H{
		"eventId":     eventID,
		"name":        "Sarah Muthoni",
		"affiliation": "Kiambu High School",
		"age":         14,
		"email":       "sarah.muthoni@example.com",
		"phone":       "0712345678",
	}
}

func (ts *testServer) register(t *testing.T, eventID int64) int64 {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/register", registration(eventID), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct{ RegistrationId int64 }
	decode(t, w, &resp)
	return resp.RegistrationId
}

func (ts *testServer) createPayment(t *testing.T, registrationID int64) int64 {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/payments/create", gin.H{"registrationId": registrationID}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct{ PaymentId int64 }
	decode(t, w, &resp)
	return resp.PaymentId
}

func TestRegister(t *testing.T) {
	ts := newTestServer(t)
	eventID := ts.addEvent(t, "2024-06-10")

	w := ts.do(t, http.MethodPost, "/api/register", registration(eventID), "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Message        string
		RegistrationId int64
		Fee            int64
	}
	decode(t, w, &resp)
	assert.Equal(t, "Registration successful", resp.Message)
	assert.NotZero(t, resp.RegistrationId)
	assert.Equal(t, int64(1000), resp.Fee)

	r, err := ts.db.GetRegistration(context.Background(), resp.RegistrationId)
	require.NoError(t, err)
	assert.Equal(t, "Sarah Muthoni", r.Name)
}

func TestRegister_Validation(t *testing.T) {
	ts := newTestServer(t)
	eventID := ts.addEvent(t, "")

	tests := []struct {
		field string
		value any
		want  string
	}{
		{"name", " S ", "Name must be at least 2 characters"},
		{"name", "", "Name is required"},
		{"affiliation", "  ", "Affiliation is required"},
		{"age", 0, "Age is required"},
		{"age", 4, "Age must be between 5 and 120"},
		{"age", 121, "Age must be between 5 and 120"},
		{"email", "sarah@example", "Please enter a valid email address"},
		{"email", "sarah muthoni@example.com", "Please enter a valid email address"},
		{"phone", "071234567", "Please enter a valid 10-digit phone number"},
		{"phone", "+254712345678", "Please enter a valid 10-digit phone number"},
		{"eventId", 0, "Event is required"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s=%v", tt.field, tt.value), func(t *testing.T) {
			body := registration(eventID)
			body[tt.field] = tt.value
			w := ts.do(t, http.MethodPost, "/api/register", body, "")
			require.Equal(t, http.StatusBadRequest, w.Code)
			var resp struct {
				Message string
				Errors  map[string]string
			}
			decode(t, w, &resp)
			assert.Equal(t, "Please fix the errors in the form", resp.Message)
			assert.Equal(t, map[string]string{tt.field: tt.want}, resp.Errors)
		})
	}

	w := ts.do(t, http.MethodPost, "/api/register", registration(999), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Event not found", message(t, w))
}

func TestRegister_Deadline(t *testing.T) {
	ts := newTestServer(t)
	closed := ts.addEvent(t, "2024-04-30")
	lastDay := ts.addEvent(t, "2024-05-01")

	w := ts.do(t, http.MethodPost, "/api/register", registration(closed), "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Registration for this event has closed", message(t, w))

	w = ts.do(t, http.MethodPost, "/api/register", registration(lastDay), "")
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestPaymentFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	eventID := ts.addEvent(t, "2024-06-10")
	registrationID := ts.register(t, eventID)

	w := ts.do(t, http.MethodPost, "/api/payments/create", gin.H{"registrationId": registrationID}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		PaymentId int64
		Paybill   string
		Account   string
		Amount    int64
	}
	decode(t, w, &created)
	assert.Equal(t, "247247", created.Paybill)
	assert.Equal(t, "KCCA2024", created.Account)
	assert.Equal(t, int64(1000), created.Amount)

	w = ts.do(t, http.MethodPost, "/api/payments/confirm", gin.H{"paymentId": created.PaymentId, "mpesaReference": "QGH-7K2"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter a valid M-Pesa reference code", message(t, w))

	w = ts.do(t, http.MethodPost, "/api/payments/confirm", gin.H{"paymentId": created.PaymentId, "mpesaReference": " qgh7k2lmn4 "}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var confirmed struct {
		Message string
		Payment store.Payment
	}
	decode(t, w, &confirmed)
	assert.Equal(t, "Payment confirmed successfully", confirmed.Message)
	assert.Equal(t, store.PaymentCompleted, confirmed.Payment.Status)
	assert.Equal(t, "QGH7K2LMN4", confirmed.Payment.MpesaReference)
	assert.NotNil(t, confirmed.Payment.PaymentDate)

	ts.Wait()
	sent := ts.mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "sarah.muthoni@example.com", sent[0].To)
	assert.Equal(t, "Registration Confirmed - Kiambu County Chess Championship 2024", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "QGH7K2LMN4")

	w = ts.do(t, http.MethodPost, "/api/payments/confirm", gin.H{"paymentId": created.PaymentId, "mpesaReference": "QGH7K2LMN4"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "Payment already confirmed", message(t, w))

	second := ts.createPayment(t, ts.register(t, eventID))
	w = ts.do(t, http.MethodPost, "/api/payments/confirm", gin.H{"paymentId": second, "mpesaReference": "QGH7K2LMN4"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "This M-Pesa reference has already been used", message(t, w))

	w = ts.do(t, http.MethodPost, "/api/payments/confirm", gin.H{"paymentId": 999, "mpesaReference": "RKT4ZPQ8WX"}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Payment not found", message(t, w))

	w = ts.do(t, http.MethodGet, "/api/admin/registrations", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var listing []store.RegistrationListing
	decode(t, w, &listing)
	require.Len(t, listing, 2)
	assert.Equal(t, "pending", listing[0].PaymentStatus)
	assert.Equal(t, "completed", listing[1].PaymentStatus)
	assert.Equal(t, "QGH7K2LMN4", listing[1].MpesaReference)
	assert.Equal(t, "Kiambu County Chess Championship 2024", listing[1].EventTitle)

	w = ts.do(t, http.MethodGet, "/api/admin/registrations/summary", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var regSummary []store.RegistrationSummary
	decode(t, w, &regSummary)
	require.Len(t, regSummary, 1)
	assert.Equal(t, int64(2), regSummary[0].TotalRegistrations)
	assert.Equal(t, int64(1), regSummary[0].CompletedPayments)
	assert.Equal(t, int64(1000), regSummary[0].CollectedAmount)

	w = ts.do(t, http.MethodGet, "/api/payments/summary", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	var paySummary []store.PaymentSummary
	decode(t, w, &paySummary)
	require.Len(t, paySummary, 1)
	assert.Equal(t, int64(2), paySummary[0].TotalPayments)
	assert.Equal(t, int64(2000), paySummary[0].TotalAmount)
	assert.Equal(t, int64(1), paySummary[0].CompletedPayments)
	assert.Equal(t, int64(1000), paySummary[0].CollectedAmount)

	w = ts.do(t, http.MethodPost, "/api/admin/resend-confirmation/"+itoa(registrationID), nil, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Confirmation email resent successfully", message(t, w))
	assert.Len(t, ts.mailer.messages(), 2)
}

func TestCreatePayment_Errors(t *testing.T) {
	ts := newTestServer(t)
	registrationID := ts.register(t, ts.addEvent(t, ""))

	w := ts.do(t, http.MethodPost, "/api/payments/create", gin.H{"registrationId": 999}, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Registration not found", message(t, w))

	w = ts.do(t, http.MethodPost, "/api/payments/create", gin.H{"registrationId": registrationID, "amount": -5}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/payments/create", gin.H{"registrationId": registrationID, "amount": 500}, "")
	require.Equal(t, http.StatusCreated, w.Code)
	var resp struct{ Amount int64 }
	decode(t, w, &resp)
	assert.Equal(t, int64(500), resp.Amount)
}

func TestConfirmPayment_Expired(t *testing.T) {
	ts := newTestServer(t)
	paymentID := ts.createPayment(t, ts.register(t, ts.addEvent(t, "")))

	n, err := ts.db.ExpirePendingPayments(context.Background(), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	w := ts.do(t, http.MethodPost, "/api/payments/confirm", gin.H{"paymentId": paymentID, "mpesaReference": "QGH7K2LMN4"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "This payment has expired, please register again", message(t, w))
}

func TestResendConfirmation_Errors(t *testing.T) {
	ts := newTestServer(t)
	token := ts.login(t)
	registrationID := ts.register(t, ts.addEvent(t, ""))
	ts.createPayment(t, registrationID)

	w := ts.do(t, http.MethodPost, "/api/admin/resend-confirmation/"+itoa(registrationID), nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Registration or payment not found", message(t, w))

	paymentID := ts.createPayment(t, registrationID)
	_, err := ts.db.ConfirmPayment(context.Background(), paymentID, "RKT4ZPQ8WX")
	require.NoError(t, err)

	ts.mailer.err = errors.New("535 authentication failed")
	w = ts.do(t, http.MethodPost, "/api/admin/resend-confirmation/"+itoa(registrationID), nil, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to resend confirmation email", message(t, w))

	ts.mailer.err = mail.ErrDisabled
	w = ts.do(t, http.MethodPost, "/api/admin/resend-confirmation/"+itoa(registrationID), nil, token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Email is not configured", message(t, w))
}
