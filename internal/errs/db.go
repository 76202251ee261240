package errs

import (
	"context"
	"database/sql"
	"errors"
	"regexp"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// reKeyField extracts the column list from "Key (email)=(x) already exists.".
var reKeyField = regexp.MustCompile(`Key \(([^)]+)\)=`)

// FromDB classifies a database error. Errors that are already classified
// and nil are returned unchanged.
func FromDB(err error) error {
	if err == nil {
		return nil
	}
	var classified *Error
	if errors.As(err, &classified) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Wrap(err, KindUnexpected, "store operation timed out")
	}
	if errors.Is(err, context.Canceled) {
		return Wrap(err, KindUnexpected, "store operation canceled")
	}
	if errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows) {
		return Wrap(err, KindNotFound, "resource not found")
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fromPgError(pgErr)
	}
	return err
}

func fromPgError(pgErr *pgconn.PgError) error {
	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		e := Wrap(pgErr, KindConflict, "resource already exists")
		if m := reKeyField.FindStringSubmatch(pgErr.Detail); len(m) == 2 {
			e.Field = m[1]
			e.Message = m[1] + " already exists"
		}
		return e
	case pgerrcode.ForeignKeyViolation:
		return Wrap(pgErr, KindValidation, "referenced resource does not exist")
	case pgerrcode.NotNullViolation:
		e := Wrap(pgErr, KindValidation, "required field missing")
		e.Field = pgErr.ColumnName
		return e
	case pgerrcode.CheckViolation:
		return Wrap(pgErr, KindValidation, "value out of range")
	default:
		return pgErr
	}
}
