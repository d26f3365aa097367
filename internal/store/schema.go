package store

const (
	schemaSQLiteEvents = `
		CREATE TABLE IF NOT EXISTS events (
			id                    INTEGER PRIMARY KEY AUTOINCREMENT,
			title                 TEXT NOT NULL,
			date                  TEXT NOT NULL,
			location              TEXT NOT NULL,
			description           TEXT NOT NULL DEFAULT '',
			registration_deadline TEXT NOT NULL DEFAULT '',
			poster_url            TEXT NOT NULL DEFAULT '',
			fee                   INTEGER NOT NULL,
			created_at            TIMESTAMP NOT NULL
		)`

	schemaSQLiteNews = `
		CREATE TABLE IF NOT EXISTS news (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			category   TEXT NOT NULL,
			image_url  TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`

	schemaSQLiteGallery = `
		CREATE TABLE IF NOT EXISTS gallery (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			image_url  TEXT NOT NULL,
			category   TEXT NOT NULL,
			caption    TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`

	schemaSQLiteMembers = `
		CREATE TABLE IF NOT EXISTS members (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			name       TEXT NOT NULL,
			position   TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			bio        TEXT NOT NULL DEFAULT '',
			image_url  TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`

	schemaSQLiteRegistrations = `
		CREATE TABLE IF NOT EXISTS registrations (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id    INTEGER NOT NULL REFERENCES events(id),
			name        TEXT NOT NULL,
			affiliation TEXT NOT NULL,
			age         INTEGER NOT NULL,
			email       TEXT NOT NULL,
			phone       TEXT NOT NULL,
			created_at  TIMESTAMP NOT NULL
		)`

	schemaSQLitePayments = `
		CREATE TABLE IF NOT EXISTS payments (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			registration_id INTEGER NOT NULL REFERENCES registrations(id),
			amount          INTEGER NOT NULL,
			payment_method  TEXT NOT NULL,
			status          TEXT NOT NULL,
			mpesa_reference TEXT UNIQUE,
			payment_date    TIMESTAMP,
			created_at      TIMESTAMP NOT NULL
		)`
)

const (
	schemaPostgresEvents = `
		CREATE TABLE IF NOT EXISTS events (
			id                    BIGSERIAL PRIMARY KEY,
			title                 TEXT NOT NULL,
			date                  TEXT NOT NULL,
			location              TEXT NOT NULL,
			description           TEXT NOT NULL DEFAULT '',
			registration_deadline TEXT NOT NULL DEFAULT '',
			poster_url            TEXT NOT NULL DEFAULT '',
			fee                   BIGINT NOT NULL,
			created_at            TIMESTAMPTZ NOT NULL
		)`

	schemaPostgresNews = `
		CREATE TABLE IF NOT EXISTS news (
			id         BIGSERIAL PRIMARY KEY,
			title      TEXT NOT NULL,
			content    TEXT NOT NULL,
			category   TEXT NOT NULL,
			image_url  TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`

	schemaPostgresGallery = `
		CREATE TABLE IF NOT EXISTS gallery (
			id         BIGSERIAL PRIMARY KEY,
			image_url  TEXT NOT NULL,
			category   TEXT NOT NULL,
			caption    TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`

	schemaPostgresMembers = `
		CREATE TABLE IF NOT EXISTS members (
			id         BIGSERIAL PRIMARY KEY,
			name       TEXT NOT NULL,
			position   TEXT NOT NULL DEFAULT '',
			email      TEXT NOT NULL DEFAULT '',
			phone      TEXT NOT NULL DEFAULT '',
			bio        TEXT NOT NULL DEFAULT '',
			image_url  TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL
		)`

	schemaPostgresRegistrations = `
		CREATE TABLE IF NOT EXISTS registrations (
			id          BIGSERIAL PRIMARY KEY,
			event_id    BIGINT NOT NULL REFERENCES events(id),
			name        TEXT NOT NULL,
			affiliation TEXT NOT NULL,
			age         INTEGER NOT NULL,
			email       TEXT NOT NULL,
			phone       TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL
		)`

	schemaPostgresPayments = `
		CREATE TABLE IF NOT EXISTS payments (
			id              BIGSERIAL PRIMARY KEY,
			registration_id BIGINT NOT NULL REFERENCES registrations(id),
			amount          BIGINT NOT NULL,
			payment_method  TEXT NOT NULL,
			status          TEXT NOT NULL,
			mpesa_reference TEXT UNIQUE,
			payment_date    TIMESTAMPTZ,
			created_at      TIMESTAMPTZ NOT NULL
		)`
)

var (
	schemaSQLite = []string{
		schemaSQLiteEvents,
		schemaSQLiteNews,
		schemaSQLiteGallery,
		schemaSQLiteMembers,
		schemaSQLiteRegistrations,
		schemaSQLitePayments,
	}

	schemaPostgres = []string{
		schemaPostgresEvents,
		schemaPostgresNews,
		schemaPostgresGallery,
		schemaPostgresMembers,
		schemaPostgresRegistrations,
		schemaPostgresPayments,
	}
)
