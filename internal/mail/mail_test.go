package mail

import (
	"context"
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kiambuchess/kcca/internal/config"
	"github.com/kiambuchess/kcca/internal/store"
)

func testConfirmation() store.Confirmation {
	paid := time.Date(2024, 5, 2, 10, 30, 0, 0, time.UTC)
	return store.Confirmation{
		Event: store.Event{
			Id:       1,
			Title:    "Kiambu County Chess Championship 2024",
			Date:     "2024-06-15",
			Location: "Kiambu Town Hall",
			Fee:      1000,
		},
		Registration: store.Registration{
			Id:          7,
			EventId:     1,
			Name:        "Sarah Muthoni",
			Affiliation: "Kiambu High School",
			Age:         14,
			Email:       "sarah.muthoni@example.com",
			Phone:       "0712345678",
		},
		Payment: store.Payment{
			Id:             3,
			RegistrationId: 7,
			Amount:         1000,
			Method:         store.PaymentMethodMpesa,
			Status:         store.PaymentCompleted,
			MpesaReference: "QGH7K2LMN4",
			PaymentDate:    &paid,
		},
	}
}

func TestRenderConfirmation(t *testing.T) {
	m, err := RenderConfirmation(testConfirmation())
	require.NoError(t, err)
	assert.Equal(t, "sarah.muthoni@example.com", m.To)
	assert.Equal(t, "Registration Confirmed - Kiambu County Chess Championship 2024", m.Subject)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "confirmation", []byte("To: "+m.To+"\nSubject: "+m.Subject+"\n\n"+m.HTML))
}

func TestRenderConfirmation_Escapes(t *testing.T) {
	c := testConfirmation()
	c.Registration.Name = "<script>alert(1)</script>"
	m, err := RenderConfirmation(c)
	require.NoError(t, err)
	assert.NotContains(t, m.HTML, "<script>")
	assert.Contains(t, m.HTML, "&lt;script&gt;")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "KES 500", FormatAmount(500))
	assert.Equal(t, "KES 1,000", FormatAmount(1000))
	assert.Equal(t, "KES 1,250,000", FormatAmount(1250000))
}

func TestNew(t *testing.T) {
	assert.IsType(t, Disabled{}, New(config.MailConfig{}, zap.NewNop()))
	assert.IsType(t, &SMTP{}, New(config.MailConfig{Host: "smtp.gmail.com", Port: 587}, zap.NewNop()))

	err := Disabled{}.Send(context.Background(), Message{To: "a@b.co"})
	require.ErrorIs(t, err, ErrDisabled)
}

func testSMTP(attempts uint, send sendFunc) *SMTP {
	s := NewSMTP(config.MailConfig{
		Host:          "smtp.example.com",
		Port:          587,
		Username:      "kiambuchess",
		Password:      "secret",
		From:          "kiambuchess@gmail.com",
		RetryAttempts: attempts,
	}, zap.NewNop())
	s.delay = time.Millisecond
	s.send = send
	return s
}

func TestSMTP_Send(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	s := testSMTP(3, func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	})

	err := s.Send(context.Background(), Message{To: "sarah@example.com", Subject: "Registration Confirmed - Open", HTML: "<p>hi</p>"})
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "kiambuchess@gmail.com", gotFrom)
	assert.Equal(t, []string{"sarah@example.com"}, gotTo)
	assert.Equal(t, "From: kiambuchess@gmail.com\r\n"+
		"To: sarah@example.com\r\n"+
		"Subject: Registration Confirmed - Open\r\n"+
		"MIME-Version: 1.0\r\n"+
		"Content-Type: text/html; charset=UTF-8\r\n"+
		"\r\n"+
		"<p>hi</p>", string(gotMsg))

	require.Error(t, s.Send(context.Background(), Message{}))
}

func TestSMTP_Retries(t *testing.T) {
	calls := 0
	s := testSMTP(3, func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		if calls < 3 {
			return errors.New("421 try again later")
		}
		return nil
	})
	require.NoError(t, s.Send(context.Background(), Message{To: "sarah@example.com"}))
	assert.Equal(t, 3, calls)

	calls = 0
	s = testSMTP(2, func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("550 mailbox unavailable")
	})
	err := s.Send(context.Background(), Message{To: "sarah@example.com"})
	require.ErrorContains(t, err, "550 mailbox unavailable")
	assert.Equal(t, 2, calls)
}

func TestSMTP_ZeroAttemptsSendsOnce(t *testing.T) {
	calls := 0
	s := testSMTP(0, func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("connection refused")
	})
	require.Error(t, s.Send(context.Background(), Message{To: "sarah@example.com"}))
	assert.Equal(t, 1, calls)
}
