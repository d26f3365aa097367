package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

type queryTag uint8

const (
	queryEvents queryTag = iota
	queryEvent
	queryAddEvent
	queryUpdateEvent
	queryDeleteEvent
	queryEventRegistrations
	queryNews
	queryNewsByCategory
	queryNewsItem
	queryAddNews
	queryUpdateNews
	queryDeleteNews
	queryGallery
	queryGalleryByCategory
	queryGalleryItem
	queryAddGalleryItem
	queryDeleteGalleryItem
	queryMembers
	queryMember
	queryAddMember
	queryUpdateMember
	queryDeleteMember
	queryAddRegistration
	queryRegistration
	queryRegistrations
	queryRegistrationSummary
	queryAddPayment
	queryPayment
	queryPaymentStatus
	queryReferenceUsed
	queryConfirmPayment
	queryExpirePayments
	queryPaymentSummary
	queryConfirmation
)

const (
	eventColumns   = `id, title, date, location, description, registration_deadline, poster_url, fee, created_at`
	newsColumns    = `id, title, content, category, image_url, created_at`
	galleryColumns = `id, image_url, category, caption, created_at`
	memberColumns  = `id, name, position, email, phone, bio, image_url, created_at`
	paymentColumns = `id, registration_id, amount, payment_method, status, mpesa_reference, payment_date, created_at`
)

var queryStrings map[queryTag]string

func init() {
	queryStrings = make(map[queryTag]string)

	queryStrings[queryEvents] = `
		SELECT ` + eventColumns + ` FROM events ORDER BY date ASC, id ASC`

	queryStrings[queryEvent] = `
		SELECT ` + eventColumns + ` FROM events WHERE id=?`

	queryStrings[queryAddEvent] = `
		INSERT INTO events (title, date, location, description, registration_deadline, poster_url, fee, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`

	queryStrings[queryUpdateEvent] = `
		UPDATE events SET title=?, date=?, location=?, description=?, registration_deadline=?, poster_url=?, fee=?
		WHERE id=?`

	queryStrings[queryDeleteEvent] = `
		DELETE FROM events WHERE id=?`

	queryStrings[queryEventRegistrations] = `
		SELECT COUNT(*) FROM registrations WHERE event_id=?`

	queryStrings[queryNews] = `
		SELECT ` + newsColumns + ` FROM news ORDER BY created_at DESC, id DESC`

	queryStrings[queryNewsByCategory] = `
		SELECT ` + newsColumns + ` FROM news WHERE category=? ORDER BY created_at DESC, id DESC`

	queryStrings[queryNewsItem] = `
		SELECT ` + newsColumns + ` FROM news WHERE id=?`

	queryStrings[queryAddNews] = `
		INSERT INTO news (title, content, category, image_url, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`

	queryStrings[queryUpdateNews] = `
		UPDATE news SET title=?, content=?, category=?, image_url=? WHERE id=?`

	queryStrings[queryDeleteNews] = `
		DELETE FROM news WHERE id=?`

	queryStrings[queryGallery] = `
		SELECT ` + galleryColumns + ` FROM gallery ORDER BY created_at DESC, id DESC`

	queryStrings[queryGalleryByCategory] = `
		SELECT ` + galleryColumns + ` FROM gallery WHERE category=? ORDER BY created_at DESC, id DESC`

	queryStrings[queryGalleryItem] = `
		SELECT ` + galleryColumns + ` FROM gallery WHERE id=?`

	queryStrings[queryAddGalleryItem] = `
		INSERT INTO gallery (image_url, category, caption, created_at)
		VALUES (?, ?, ?, ?) RETURNING id`

	queryStrings[queryDeleteGalleryItem] = `
		DELETE FROM gallery WHERE id=?`

	queryStrings[queryMembers] = `
		SELECT ` + memberColumns + ` FROM members ORDER BY id ASC`

	queryStrings[queryMember] = `
		SELECT ` + memberColumns + ` FROM members WHERE id=?`

	queryStrings[queryAddMember] = `
		INSERT INTO members (name, position, email, phone, bio, image_url, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`

	queryStrings[queryUpdateMember] = `
		UPDATE members SET name=?, position=?, email=?, phone=?, bio=?, image_url=? WHERE id=?`

	queryStrings[queryDeleteMember] = `
		DELETE FROM members WHERE id=?`

	queryStrings[queryAddRegistration] = `
		INSERT INTO registrations (event_id, name, affiliation, age, email, phone, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`

	queryStrings[queryRegistration] = `
		SELECT id, event_id, name, affiliation, age, email, phone, created_at
		FROM registrations WHERE id=?`

	queryStrings[queryRegistrations] = `
		SELECT
			r.id, r.event_id, r.name, r.affiliation, r.age, r.email, r.phone, r.created_at,
			e.title, e.date,
			COALESCE(p.status, ''), COALESCE(p.amount, 0), COALESCE(p.mpesa_reference, '')
		FROM registrations r
		INNER JOIN events e ON e.id = r.event_id
		LEFT JOIN payments p ON p.id = (
			SELECT MAX(p2.id) FROM payments p2 WHERE p2.registration_id = r.id)
		ORDER BY r.created_at DESC, r.id DESC`

	queryStrings[queryRegistrationSummary] = `
		SELECT
			e.id, e.title,
			COUNT(DISTINCT r.id),
			COUNT(DISTINCT CASE WHEN p.status = 'completed' THEN r.id END),
			COALESCE(SUM(CASE WHEN p.status = 'completed' THEN p.amount ELSE 0 END), 0)
		FROM events e
		LEFT JOIN registrations r ON r.event_id = e.id
		LEFT JOIN payments p ON p.registration_id = r.id
		GROUP BY e.id, e.title
		ORDER BY e.id ASC`

	queryStrings[queryAddPayment] = `
		INSERT INTO payments (registration_id, amount, payment_method, status, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`

	queryStrings[queryPayment] = `
		SELECT ` + paymentColumns + ` FROM payments WHERE id=?`

	queryStrings[queryPaymentStatus] = `
		SELECT status FROM payments WHERE id=?`

	queryStrings[queryReferenceUsed] = `
		SELECT COUNT(*) FROM payments WHERE mpesa_reference=?`

	queryStrings[queryConfirmPayment] = `
		UPDATE payments SET status=?, mpesa_reference=?, payment_date=?
		WHERE id=? AND status=?`

	queryStrings[queryExpirePayments] = `
		UPDATE payments SET status=? WHERE status=? AND created_at < ?`

	queryStrings[queryPaymentSummary] = `
		SELECT
			e.id, e.title,
			COUNT(p.id),
			COALESCE(SUM(p.amount), 0),
			COUNT(CASE WHEN p.status = 'completed' THEN 1 END),
			COALESCE(SUM(CASE WHEN p.status = 'completed' THEN p.amount ELSE 0 END), 0)
		FROM events e
		INNER JOIN registrations r ON r.event_id = e.id
		LEFT JOIN payments p ON p.registration_id = r.id
		GROUP BY e.id, e.title
		ORDER BY e.id ASC`

	queryStrings[queryConfirmation] = `
		SELECT
			e.id, e.title, e.date, e.location, e.description, e.registration_deadline, e.poster_url, e.fee, e.created_at,
			r.id, r.event_id, r.name, r.affiliation, r.age, r.email, r.phone, r.created_at,
			p.id, p.registration_id, p.amount, p.payment_method, p.status, p.mpesa_reference, p.payment_date, p.created_at
		FROM registrations r
		INNER JOIN events e ON e.id = r.event_id
		INNER JOIN payments p ON p.registration_id = r.id
		WHERE r.id=? AND p.status='completed'
		ORDER BY p.id DESC
		LIMIT 1`
}

const (
	DriverSQLite3  = "sqlite3"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	sqlite3Options = "_busy_timeout=15000&_foreign_keys=1"
	sqliteOptions  = "_pragma=busy_timeout(15000)&_pragma=foreign_keys(1)"
)

type DB struct {
	Db     *sql.DB
	driver string
	stmts  map[queryTag]*sql.Stmt

	// Now stamps created_at and payment_date columns.
	Now func() time.Time
}

// Open connects to the database, creates missing tables and prepares every
// statement the store uses.
func Open(ctx context.Context, driver, dsn string) (*DB, error) {
	switch driver {
	case DriverSQLite3:
		dsn = withOptions(dsn, sqlite3Options, "_journal_mode=WAL")
	case DriverSQLite:
		dsn = withOptions(dsn, sqliteOptions, "_pragma=journal_mode(WAL)")
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if isMemory(dsn) {
		// a shared-cache memory database lives only as long as its
		// connections, and a single one avoids table locks between them.
		db.SetMaxOpenConns(1)
	}

	d, err := New(ctx, db, driver)
	if err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

// New wraps an open connection pool. Close closes db.
func New(ctx context.Context, db *sql.DB, driver string) (*DB, error) {
	var schema []string
	switch driver {
	case DriverSQLite3, DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	d := &DB{
		Db:     db,
		driver: driver,
		stmts:  make(map[queryTag]*sql.Stmt),
		Now:    time.Now,
	}
	if err := d.migrate(ctx, schema); err != nil {
		return nil, err
	}
	if err := d.prepare(ctx); err != nil {
		for _, stmt := range d.stmts {
			stmt.Close()
		}
		return nil, err
	}
	return d, nil
}

func (d *DB) migrate(ctx context.Context, schema []string) error {
	for _, stmt := range schema {
		if _, err := d.Db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (d *DB) prepare(ctx context.Context) error {
	for tag, query := range queryStrings {
		stmt, err := d.Db.PrepareContext(ctx, d.rebind(query))
		if err != nil {
			return fmt.Errorf("prepare query %d: %w", tag, err)
		}
		d.stmts[tag] = stmt
	}
	return nil
}

// rebind turns ? placeholders into $1, $2, ... for PostgreSQL.
func (d *DB) rebind(query string) string {
	if d.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d *DB) Driver() string {
	return d.driver
}

func (d *DB) Ping(ctx context.Context) error {
	return d.Db.PingContext(ctx)
}

func (d *DB) Close() error {
	for _, stmt := range d.stmts {
		stmt.Close()
	}
	return d.Db.Close()
}

func (d *DB) now() time.Time {
	return d.Now().UTC().Truncate(time.Second)
}

// withTx runs fn inside a transaction, rolling back when it returns an error.
func (d *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) txStmt(ctx context.Context, tx *sql.Tx, tag queryTag) *sql.Stmt {
	return tx.StmtContext(ctx, d.stmts[tag])
}

func (d *DB) insert(ctx context.Context, tag queryTag, args ...any) (int64, error) {
	var id int64
	if err := d.stmts[tag].QueryRowContext(ctx, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

// execOne runs an UPDATE or DELETE that must touch exactly one row.
func (d *DB) execOne(ctx context.Context, tag queryTag, args ...any) error {
	res, err := d.stmts[tag].ExecContext(ctx, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func withOptions(dsn, options, fileOnly string) string {
	if !isMemory(dsn) {
		options += "&" + fileOnly
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + options
	}
	return dsn + "?" + options
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

type scanner interface {
	Scan(dest ...any) error
}

func notFound(err error) error {
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}
