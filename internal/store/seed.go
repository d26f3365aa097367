package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed fixture.yaml
var defaultFixture []byte

// DefaultFixture returns the events, news and gallery items the site ships
// with.
func DefaultFixture() (Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(defaultFixture, &f); err != nil {
		return Fixture{}, fmt.Errorf("default fixture: %w", err)
	}
	return f, nil
}

func ReadFixture(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}
	return f, nil
}

// Seed inserts every row of f in a single transaction. Events without a fee
// are charged defaultFee.
func (d *DB) Seed(ctx context.Context, f Fixture, defaultFee int64) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		now := d.now()
		for i := range f.Events {
			e := &f.Events[i]
			if e.Fee == 0 {
				e.Fee = defaultFee
			}
			err := d.txStmt(ctx, tx, queryAddEvent).QueryRowContext(ctx, e.Title, e.Date, e.Location,
				e.Description, e.RegistrationDeadline, e.PosterURL, e.Fee, now).Scan(&e.Id)
			if err != nil {
				return fmt.Errorf("seed event %q: %w", e.Title, err)
			}
		}
		for i := range f.News {
			n := &f.News[i]
			err := d.txStmt(ctx, tx, queryAddNews).QueryRowContext(ctx, n.Title, n.Content,
				n.Category, n.ImageURL, now).Scan(&n.Id)
			if err != nil {
				return fmt.Errorf("seed news %q: %w", n.Title, err)
			}
		}
		for i := range f.Gallery {
			g := &f.Gallery[i]
			err := d.txStmt(ctx, tx, queryAddGalleryItem).QueryRowContext(ctx, g.ImageURL, g.Category,
				g.Caption, now).Scan(&g.Id)
			if err != nil {
				return fmt.Errorf("seed gallery item %q: %w", g.Caption, err)
			}
		}
		for i := range f.Members {
			m := &f.Members[i]
			err := d.txStmt(ctx, tx, queryAddMember).QueryRowContext(ctx, m.Name, m.Position, m.Email,
				m.Phone, m.Bio, m.ImageURL, now).Scan(&m.Id)
			if err != nil {
				return fmt.Errorf("seed member %q: %w", m.Name, err)
			}
		}
		return nil
	})
}
