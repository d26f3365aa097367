package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kiambuchess/kcca/internal/store"
)

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<!DOCTYPE html>
<html>
<body>
<h2>Registration Confirmed</h2>
<p>Dear {{.Name}},</p>
<p>Your registration for <strong>{{.Event}}</strong> is confirmed. We have received your payment.</p>
<h3>Event details</h3>
<table>
<tr><td>Event</td><td>{{.Event}}</td></tr>
<tr><td>Date</td><td>{{.Date}}</td></tr>
<tr><td>Location</td><td>{{.Location}}</td></tr>
</table>
<h3>Registration details</h3>
<table>
<tr><td>Registration ID</td><td>{{.RegistrationId}}</td></tr>
<tr><td>Name</td><td>{{.Name}}</td></tr>
<tr><td>Affiliation</td><td>{{.Affiliation}}</td></tr>
<tr><td>Age</td><td>{{.Age}}</td></tr>
<tr><td>Email</td><td>{{.Email}}</td></tr>
<tr><td>Phone</td><td>{{.Phone}}</td></tr>
</table>
<h3>Payment details</h3>
<table>
<tr><td>Amount</td><td>{{.Amount}}</td></tr>
<tr><td>Method</td><td>M-Pesa</td></tr>
<tr><td>M-Pesa reference</td><td>{{.Reference}}</td></tr>
<tr><td>Paid on</td><td>{{.PaidOn}}</td></tr>
</table>
<p>Please bring this email with you on the day of the event.</p>
<p>Kiambu County Chess Association</p>
</body>
</html>
`))

type confirmationView struct {
	Event, Date, Location           string
	RegistrationId                  int64
	Name, Affiliation, Email, Phone string
	Age                             int
	Amount, Reference, PaidOn       string
}

var printer = message.NewPrinter(language.English)

// FormatAmount formats a KES amount the way it is shown to registrants,
// e.g. "KES 1,000".
func FormatAmount(amount int64) string {
	return printer.Sprintf("KES %d", amount)
}

func formatDate(date string) string {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, 2 January 2006")
}

// RenderConfirmation builds the email sent once a registration's payment is
// confirmed.
func RenderConfirmation(c store.Confirmation) (Message, error) {
	view := confirmationView{
		Event:          c.Event.Title,
		Date:           formatDate(c.Event.Date),
		Location:       c.Event.Location,
		RegistrationId: c.Registration.Id,
		Name:           c.Registration.Name,
		Affiliation:    c.Registration.Affiliation,
		Age:            c.Registration.Age,
		Email:          c.Registration.Email,
		Phone:          c.Registration.Phone,
		Amount:         FormatAmount(c.Payment.Amount),
		Reference:      c.Payment.MpesaReference,
	}
	if c.Payment.PaymentDate != nil {
		view.PaidOn = c.Payment.PaymentDate.UTC().Format("2 Jan 2006 15:04 MST")
	}

	var b bytes.Buffer
	if err := confirmationTemplate.Execute(&b, view); err != nil {
		return Message{}, fmt.Errorf("render confirmation: %w", err)
	}
	return Message{
		To:      c.Registration.Email,
		Subject: "Registration Confirmed - " + c.Event.Title,
		HTML:    b.String(),
	}, nil
}
