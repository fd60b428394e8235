package repo

import (
	"database/sql"
	"errors"
	"fmt"
)

// Repo is the persistence boundary. It owns all durable state; the rule
// components only see entities through it or through the shared store
// projection built from it.
type Repo struct {
	DB *sql.DB
}

var ErrNotFound = errors.New("not found")

func nullStr(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullID(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

func strPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func idPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func notFound(kind string, id int64) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}
