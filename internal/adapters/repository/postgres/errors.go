package postgres

import (
	"errors"

	"github.com/lib/pq"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// violation reports the constraint a statement broke when the error is one
// of the integrity violations named by code.
func violation(err error, code string) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == code {
		return pqErr.Constraint, true
	}
	return "", false
}

func uniqueViolation(err error) (string, bool) {
	return violation(err, "unique_violation")
}

func foreignKeyViolation(err error) (string, bool) {
	return violation(err, "foreign_key_violation")
}
