package api

import (
	"context"
	"errors"
	"net/http"

	"mealcheck/pkg/collection"
	"mealcheck/pkg/sheets"
)

// Collector is the part of collection.Service the handlers use.
type Collector interface {
	ListSheets(ctx context.Context) []string
	Lookup(ctx context.Context, sheet, suffix string) (*collection.StudentRecord, error)
	MarkCollected(ctx context.Context, sheet string, rowPosition int, statusColumn string) (string, error)
	Metadata(ctx context.Context) (*sheets.Metadata, error)
}

const (
	msgTooManyLookups = "Too many lookups, please wait a moment."
	msgSignIn         = "Please sign in."
	authRealm         = "mealcheck"
)

type errorResponse struct {
	Error string `json:"error"`
}

type sheetsResponse struct {
	Sheets []string `json:"sheets"`
}

type studentResponse struct {
	collection.StudentRecord
	Veg       bool `json:"veg"`
	Collected bool `json:"collected"`
}

type collectRequest struct {
	StatusColumn string `json:"statusColumn"`
}

type collectResponse struct {
	Sheet       string `json:"sheet"`
	RowPosition int    `json:"rowPosition"`
	CollectedAt string `json:"collectedAt"`
}

type healthResponse struct {
	Status string `json:"status"`
}

// statusCode maps the collection error taxonomy onto HTTP status codes.
func statusCode(err error) int {
	var remote *collection.RemoteError
	switch {
	case errors.Is(err, collection.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, collection.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, collection.ErrConfiguration):
		return http.StatusServiceUnavailable
	case errors.As(err, &remote):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
