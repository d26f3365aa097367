// Package mail delivers the emails sent to registrants.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"

	"github.com/kiambuchess/kcca/internal/config"
)

// ErrDisabled is returned by the Disabled mailer.
var ErrDisabled = errors.New("mail is not configured")

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, m Message) error
}

// Disabled drops every message.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) error { return ErrDisabled }

// New returns an SMTP mailer for cfg, or Disabled when no host is set.
func New(cfg config.MailConfig, log *zap.Logger) Mailer {
	if cfg.Host == "" {
		return Disabled{}
	}
	return NewSMTP(cfg, log)
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTP sends mail through a submission server, retrying failed deliveries
// with exponential back-off.
type SMTP struct {
	addr     string
	from     string
	auth     smtp.Auth
	attempts uint
	delay    time.Duration
	send     sendFunc
	log      *zap.Logger
}

func NewSMTP(cfg config.MailConfig, log *zap.Logger) *SMTP {
	s := &SMTP{
		addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		from:     cfg.From,
		attempts: max(cfg.RetryAttempts, 1),
		delay:    time.Second,
		send:     smtp.SendMail,
		log:      log,
	}
	if cfg.Username != "" {
		s.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return s
}

func (s *SMTP) Send(ctx context.Context, m Message) error {
	if m.To == "" {
		return errors.New("send mail: no recipient")
	}
	msg := s.compose(m)
	err := retry.Do(
		func() error {
			return s.send(s.addr, s.auth, s.from, []string{m.To}, msg)
		},
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			s.log.Warn("Mail delivery failed, retrying",
				zap.String("to", m.To), zap.Uint("attempt", n+1), zap.Error(err))
		}),
	)
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", m.To, err)
	}
	return nil
}

func (s *SMTP) compose(m Message) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", m.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", m.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(m.HTML)
	return b.Bytes()
}
