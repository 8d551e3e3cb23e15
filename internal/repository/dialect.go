package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrAverageTableMissing is returned when the subject average table has not been created.
	ErrAverageTableMissing = errors.New("subject average table missing")
	// ErrDuplicateKey is returned by in-process stores when a unique key is already taken.
	ErrDuplicateKey = errors.New("duplicate key")
)

const (
	pqUndefinedTable  = "42P01"
	pqUniqueViolation = "23505"
	myNoSuchTable     = 1146
	myDuplicateEntry  = 1062
)

type dialect int

const (
	dialectPostgres dialect = iota
	dialectMySQL
)

func dialectOf(db *sqlx.DB) dialect {
	if db.DriverName() == "mysql" {
		return dialectMySQL
	}
	return dialectPostgres
}

// upsertClause returns the conflict handling suffix updating columns when the unique key collides.
func (d dialect) upsertClause(conflict []string, columns ...string) string {
	var clause string
	if d == dialectMySQL {
		clause = " ON DUPLICATE KEY UPDATE "
		for i, column := range columns {
			if i > 0 {
				clause += ", "
			}
			clause += column + " = VALUES(" + column + ")"
		}
		return clause
	}
	clause = " ON CONFLICT ("
	for i, column := range conflict {
		if i > 0 {
			clause += ", "
		}
		clause += column
	}
	clause += ") DO UPDATE SET "
	for i, column := range columns {
		if i > 0 {
			clause += ", "
		}
		clause += column + " = EXCLUDED." + column
	}
	return clause
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUndefinedTable
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == myNoSuchTable
	}
	return false
}

// IsUniqueViolation reports whether err was raised by a unique constraint.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, ErrDuplicateKey) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == myDuplicateEntry
	}
	return false
}
