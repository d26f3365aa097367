package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// paymentDest lists the scan destinations for paymentColumns.
func paymentDest(p *Payment) []any {
	return []any{&p.Id, &p.RegistrationId, &p.Amount, &p.Method, &p.Status,
		(*nullString)(&p.MpesaReference), &nullTime{t: &p.PaymentDate}, &p.CreatedAt}
}

// CreatePayment records a pending M-Pesa payment for a registration.
func (d *DB) CreatePayment(ctx context.Context, p *Payment) error {
	if _, err := d.GetRegistration(ctx, p.RegistrationId); err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	p.Method = PaymentMethodMpesa
	p.Status = PaymentPending
	p.CreatedAt = d.now()
	id, err := d.insert(ctx, queryAddPayment, p.RegistrationId, p.Amount, p.Method, string(p.Status), p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	p.Id = id
	return nil
}

func (d *DB) GetPayment(ctx context.Context, id int64) (Payment, error) {
	var p Payment
	row := d.stmts[queryPayment].QueryRowContext(ctx, id)
	if err := row.Scan(paymentDest(&p)...); err != nil {
		return Payment{}, fmt.Errorf("get payment %d: %w", id, notFound(err))
	}
	return p, nil
}

// ConfirmPayment marks a pending payment completed with the M-Pesa reference
// the payer received. A reference can confirm only one payment.
func (d *DB) ConfirmPayment(ctx context.Context, id int64, reference string) (Payment, error) {
	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var status PaymentStatus
		err := d.txStmt(ctx, tx, queryPaymentStatus).QueryRowContext(ctx, id).Scan(&status)
		if err != nil {
			return notFound(err)
		}
		switch status {
		case PaymentCompleted:
			return ErrAlreadyConfirmed
		case PaymentExpired:
			return fmt.Errorf("payment expired: %w", ErrConflict)
		}

		var used int64
		if err := d.txStmt(ctx, tx, queryReferenceUsed).QueryRowContext(ctx, reference).Scan(&used); err != nil {
			return err
		}
		if used > 0 {
			return ErrDuplicateReference
		}

		res, err := d.txStmt(ctx, tx, queryConfirmPayment).ExecContext(ctx,
			string(PaymentCompleted), reference, d.now(), id, string(PaymentPending))
		if constraintViolation(err) == uniqueViolation {
			return ErrDuplicateReference
		}
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return ErrConflict
		}
		return nil
	})
	if err != nil {
		return Payment{}, fmt.Errorf("confirm payment %d: %w", id, err)
	}
	return d.GetPayment(ctx, id)
}

// ExpirePendingPayments marks payments still pending since before olderThan
// as expired and reports how many were.
func (d *DB) ExpirePendingPayments(ctx context.Context, olderThan time.Time) (expired int64, err error) {
	err = d.withTx(ctx, func(tx *sql.Tx) error {
		res, err := d.txStmt(ctx, tx, queryExpirePayments).ExecContext(ctx,
			string(PaymentExpired), string(PaymentPending), olderThan.UTC())
		if err != nil {
			return err
		}
		expired, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("expire payments: %w", err)
	}
	return expired, nil
}

// PaymentSummary totals payments per event that has registrations.
func (d *DB) PaymentSummary(ctx context.Context) ([]PaymentSummary, error) {
	rows, err := d.stmts[queryPaymentSummary].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("payment summary: %w", err)
	}
	defer rows.Close()

	summary := []PaymentSummary{}
	for rows.Next() {
		var s PaymentSummary
		err := rows.Scan(&s.EventId, &s.EventTitle, &s.TotalPayments, &s.TotalAmount,
			&s.CompletedPayments, &s.CollectedAmount)
		if err != nil {
			return nil, fmt.Errorf("scan payment summary: %w", err)
		}
		summary = append(summary, s)
	}
	return summary, rows.Err()
}

// Confirmation loads a registration together with its event and its
// completed payment.
func (d *DB) Confirmation(ctx context.Context, registrationID int64) (Confirmation, error) {
	var c Confirmation
	e, r := &c.Event, &c.Registration
	row := d.stmts[queryConfirmation].QueryRowContext(ctx, registrationID)
	dest := []any{
		&e.Id, &e.Title, &e.Date, &e.Location, &e.Description, &e.RegistrationDeadline, &e.PosterURL, &e.Fee, &e.CreatedAt,
		&r.Id, &r.EventId, &r.Name, &r.Affiliation, &r.Age, &r.Email, &r.Phone, &r.CreatedAt,
	}
	if err := row.Scan(append(dest, paymentDest(&c.Payment)...)...); err != nil {
		return Confirmation{}, fmt.Errorf("confirmation for registration %d: %w", registrationID, notFound(err))
	}
	return c, nil
}

// nullString scans a nullable column into a plain string.
type nullString string

func (n *nullString) Scan(src any) error {
	var s sql.NullString
	if err := s.Scan(src); err != nil {
		return err
	}
	*n = nullString(s.String)
	return nil
}

// nullTime scans a nullable timestamp into a *time.Time.
type nullTime struct{ t **time.Time }

func (n *nullTime) Scan(src any) error {
	var nt sql.NullTime
	if err := nt.Scan(src); err != nil {
		return err
	}
	if nt.Valid {
		t := nt.Time
		*n.t = &t
	} else {
		*n.t = nil
	}
	return nil
}
