package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/garnizeh/devmatch/internal/auth"
	"github.com/garnizeh/devmatch/internal/schemas"
	"github.com/garnizeh/devmatch/internal/service/jobrequest"
	"github.com/garnizeh/devmatch/pkg/repository"
)

// Envelope is the uniform response shape for every endpoint.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Data       any         `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

func newPagination(page, limit int, total int64) *Pagination {
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return &Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}

// apiError is a taxonomy member carried from the domain layer up to the
// response writer.
type apiError struct {
	status  int
	message string
}

func (e *apiError) Error() string { return e.message }

func errValidation(msg string) *apiError   { return &apiError{http.StatusBadRequest, msg} }
func errUnauthorized(msg string) *apiError { return &apiError{http.StatusUnauthorized, msg} }
func errForbidden(msg string) *apiError    { return &apiError{http.StatusForbidden, msg} }
func errNotFound(msg string) *apiError     { return &apiError{http.StatusNotFound, msg} }
func errConflict(msg string) *apiError     { return &apiError{http.StatusConflict, msg} }
func errInvalidState(msg string) *apiError { return &apiError{http.StatusBadRequest, msg} }
func errTooLarge(msg string) *apiError     { return &apiError{http.StatusRequestEntityTooLarge, msg} }

func writeJSON(w http.ResponseWriter, v any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encode response", slog.Any("err", err))
	}
}

func respondData(w http.ResponseWriter, data any, status int) {
	writeJSON(w, Envelope{Success: true, Data: data}, status)
}

func respondMessage(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, Envelope{Success: true, Message: msg}, status)
}

func respondPage(w http.ResponseWriter, data any, p *Pagination) {
	writeJSON(w, Envelope{Success: true, Data: data, Pagination: p}, http.StatusOK)
}

// respondError maps domain failures onto the HTTP taxonomy. Unanticipated
// errors are logged with request context and reported as a generic 500 with
// the detail suppressed outside dev mode.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *apiError
	if errors.As(err, &ae) {
		writeJSON(w, Envelope{Success: false, Message: ae.message}, ae.status)
		return
	}

	var ve *schemas.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, Envelope{Success: false, Message: ve.Error()}, http.StatusBadRequest)
		return
	}

	if status, msg, ok := mapDomainErr(err); ok {
		writeJSON(w, Envelope{Success: false, Message: msg}, status)
		return
	}

	logger.Error("unhandled error",
		slog.String("method", r.Method),
		slog.String("url", r.URL.String()),
		slog.String("remote", r.RemoteAddr),
		slog.Any("err", err),
	)
	msg := "internal server error"
	if devMode {
		msg = err.Error()
	}
	writeJSON(w, Envelope{Success: false, Message: msg}, http.StatusInternalServerError)
}

func mapDomainErr(err error) (int, string, bool) {
	switch {
	case errors.Is(err, jobrequest.ErrRequestNotFound),
		errors.Is(err, jobrequest.ErrDeveloperNotFound):
		return http.StatusNotFound, err.Error(), true
	case errors.Is(err, jobrequest.ErrDeveloperUnavailable),
		errors.Is(err, jobrequest.ErrInvalidTransition):
		return http.StatusBadRequest, err.Error(), true
	case errors.Is(err, jobrequest.ErrDuplicatePending),
		errors.Is(err, repository.ErrDuplicatePending):
		return http.StatusConflict, err.Error(), true
	case errors.Is(err, jobrequest.ErrNotYourRequest):
		return http.StatusForbidden, err.Error(), true
	case errors.Is(err, repository.ErrEmailTaken):
		return http.StatusConflict, err.Error(), true
	case errors.Is(err, auth.ErrTokenExpired):
		return http.StatusUnauthorized, "token expired", true
	case errors.Is(err, auth.ErrTokenInvalid):
		return http.StatusUnauthorized, "invalid token", true
	}
	return 0, "", false
}

// parsePage reads page/limit query params with the usual bounds.
func parsePage(r *http.Request) (page, limit int) {
	page, limit = 1, 20
	q := r.URL.Query()
	if v := q.Get("page"); v != "" {
		if n, err := atoiPositive(v); err == nil {
			page = n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := atoiPositive(v); err == nil && n <= 100 {
			limit = n
		}
	}
	return page, limit
}

func atoiPositive(s string) (int, error) {
	var n int
	for _, c := range s {
		if c < '0' || c > '9' {
			return 0, errValidation("not a number")
		}
		n = n*10 + int(c-'0')
		if n > 1<<30 {
			return 0, errValidation("number too large")
		}
	}
	if n <= 0 {
		return 0, errValidation("must be positive")
	}
	return n, nil
}
