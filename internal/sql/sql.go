/*
Package sql implements persistent storage using the postgres database.
*/
package sql

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/leg100/lastquery/internal"
)

// toError translates postgres errors into lastquery errors.
func toError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return internal.ErrResourceNotFound
	}
	return err
}
