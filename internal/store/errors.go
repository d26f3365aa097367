package store

import (
	"errors"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"modernc.org/sqlite"
	sqlitelib "modernc.org/sqlite/lib"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrAlreadyConfirmed   = errors.New("payment already confirmed")
	ErrDuplicateReference = errors.New("M-Pesa reference already used")
	ErrUnknownDriver      = errors.New("unknown database driver")
)

type violation uint8

const (
	noViolation violation = iota
	uniqueViolation
	foreignKeyViolation
)

// constraintViolation reports which table constraint, if any, a driver
// error says was broken.
func constraintViolation(err error) violation {
	var mattnErr sqlite3.Error
	if errors.As(err, &mattnErr) {
		switch mattnErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique:
			return uniqueViolation
		case sqlite3.ErrConstraintForeignKey:
			return foreignKeyViolation
		}
		return noViolation
	}

	var moderncErr *sqlite.Error
	if errors.As(err, &moderncErr) {
		switch moderncErr.Code() {
		case sqlitelib.SQLITE_CONSTRAINT_UNIQUE:
			return uniqueViolation
		case sqlitelib.SQLITE_CONSTRAINT_FOREIGNKEY:
			return foreignKeyViolation
		}
		return noViolation
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return uniqueViolation
		case "foreign_key_violation":
			return foreignKeyViolation
		}
	}
	return noViolation
}
