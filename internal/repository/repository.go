package repository

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound is returned when a single-row lookup matches nothing.
var ErrNotFound = errors.New("record not found")

// StoreError is a non-2xx answer from the REST data store.
type StoreError struct {
	Status  int
	Code    string
	Message string
}

func (e *StoreError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("store: %s (%s)", e.Message, e.Code)
	}
	return "store: " + e.Message
}

// IsNotFound reports whether err means "no such row" for either backend.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, pgx.ErrNoRows)
}

// IsMissingRelation reports whether err says the queried table does not exist.
func IsMissingRelation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		switch storeErr.Code {
		case "42P01", "PGRST116", "PGRST205":
			return true
		}
		if storeErr.Status == http.StatusNotFound {
			return true
		}
		msg := strings.ToLower(storeErr.Message)
		return strings.Contains(msg, "does not exist") || strings.Contains(msg, "relation")
	}
	return strings.Contains(strings.ToLower(err.Error()), "does not exist")
}
