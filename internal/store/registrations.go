package store

import (
	"context"
	"fmt"
)

func scanRegistration(s scanner, extra ...any) (r Registration, err error) {
	dest := []any{&r.Id, &r.EventId, &r.Name, &r.Affiliation, &r.Age, &r.Email, &r.Phone, &r.CreatedAt}
	err = s.Scan(append(dest, extra...)...)
	return
}

// CreateRegistration stores a registration for an existing event.
func (d *DB) CreateRegistration(ctx context.Context, r *Registration) error {
	if _, err := d.GetEvent(ctx, r.EventId); err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	r.CreatedAt = d.now()
	id, err := d.insert(ctx, queryAddRegistration, r.EventId, r.Name, r.Affiliation, r.Age, r.Email, r.Phone, r.CreatedAt)
	if constraintViolation(err) == foreignKeyViolation {
		err = fmt.Errorf("event %d: %w", r.EventId, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("create registration: %w", err)
	}
	r.Id = id
	return nil
}

func (d *DB) GetRegistration(ctx context.Context, id int64) (Registration, error) {
	r, err := scanRegistration(d.stmts[queryRegistration].QueryRowContext(ctx, id))
	if err != nil {
		return Registration{}, fmt.Errorf("get registration %d: %w", id, notFound(err))
	}
	return r, nil
}

// ListRegistrations returns all registrations, newest first, each with the
// status of its latest payment.
func (d *DB) ListRegistrations(ctx context.Context) ([]RegistrationListing, error) {
	rows, err := d.stmts[queryRegistrations].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	listings := []RegistrationListing{}
	for rows.Next() {
		var l RegistrationListing
		l.Registration, err = scanRegistration(rows,
			&l.EventTitle, &l.EventDate, &l.PaymentStatus, &l.PaymentAmount, &l.MpesaReference)
		if err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// RegistrationSummary counts registrations and completed payments per event.
func (d *DB) RegistrationSummary(ctx context.Context) ([]RegistrationSummary, error) {
	rows, err := d.stmts[queryRegistrationSummary].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("registration summary: %w", err)
	}
	defer rows.Close()

	summary := []RegistrationSummary{}
	for rows.Next() {
		var s RegistrationSummary
		err := rows.Scan(&s.EventId, &s.EventTitle, &s.TotalRegistrations, &s.CompletedPayments, &s.CollectedAmount)
		if err != nil {
			return nil, fmt.Errorf("scan registration summary: %w", err)
		}
		summary = append(summary, s)
	}
	return summary, rows.Err()
}
