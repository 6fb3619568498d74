// Package storage defines the persistence boundary. The sqlite and postgres
// subpackages implement it.
package storage

import (
	"errors"
	"strings"
)

// ErrConflict is returned when a character was changed by someone else
// between read and write.
var ErrConflict = errors.New("storage: character was modified concurrently")

// IsPostgres reports whether a configured location is a Postgres URL rather
// than a SQLite file path.
func IsPostgres(location string) bool {
	return strings.HasPrefix(location, "postgres://") || strings.HasPrefix(location, "postgresql://")
}
