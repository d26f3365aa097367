package store

import (
	"context"
	"fmt"
)

func scanEvent(s scanner) (e Event, err error) {
	err = s.Scan(&e.Id, &e.Title, &e.Date, &e.Location, &e.Description,
		&e.RegistrationDeadline, &e.PosterURL, &e.Fee, &e.CreatedAt)
	return
}

// ListEvents returns all events, earliest first.
func (d *DB) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := d.stmts[queryEvents].QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (d *DB) GetEvent(ctx context.Context, id int64) (Event, error) {
	e, err := scanEvent(d.stmts[queryEvent].QueryRowContext(ctx, id))
	if err != nil {
		return Event{}, fmt.Errorf("get event %d: %w", id, notFound(err))
	}
	return e, nil
}

func (d *DB) CreateEvent(ctx context.Context, e *Event) error {
	if e.Id > 0 {
		return fmt.Errorf("create event: already stored as %d", e.Id)
	}
	e.CreatedAt = d.now()
	id, err := d.insert(ctx, queryAddEvent, e.Title, e.Date, e.Location, e.Description,
		e.RegistrationDeadline, e.PosterURL, e.Fee, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	e.Id = id
	return nil
}

func (d *DB) UpdateEvent(ctx context.Context, e *Event) error {
	err := d.execOne(ctx, queryUpdateEvent, e.Title, e.Date, e.Location, e.Description,
		e.RegistrationDeadline, e.PosterURL, e.Fee, e.Id)
	if err != nil {
		return fmt.Errorf("update event %d: %w", e.Id, err)
	}
	return nil
}

// DeleteEvent removes an event. Events that already have registrations are
// kept and ErrConflict is returned.
func (d *DB) DeleteEvent(ctx context.Context, id int64) error {
	var count int64
	if err := d.stmts[queryEventRegistrations].QueryRowContext(ctx, id).Scan(&count); err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	if count > 0 {
		return fmt.Errorf("delete event %d: %d registrations: %w", id, count, ErrConflict)
	}
	err := d.execOne(ctx, queryDeleteEvent, id)
	if constraintViolation(err) == foreignKeyViolation {
		err = fmt.Errorf("has registrations: %w", ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("delete event %d: %w", id, err)
	}
	return nil
}
