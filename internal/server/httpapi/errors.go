package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/mkravets/auth-service/internal/common"
)

// Error type tags carried in responses. Clients branch on these rather than
// on message text.
const (
	errTypeValidation      = "ValidationError"
	errTypeConflict        = "Conflict"
	errTypeUnauthenticated = "Unauthenticated"
	errTypeForbidden       = "Forbidden"
	errTypeNotFound        = "NotFound"
	errTypeInternal        = "InternalError"
)

type apiError struct {
	Ref  string `json:"ref,omitempty"`
	Type string `json:"type"`
	Msg  string `json:"msg"`
	Path string `json:"path,omitempty"`
}

type errorResponse struct {
	Errors []apiError `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		// best-effort write, the connection may already be gone
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, errs ...apiError) {
	writeJSON(w, status, errorResponse{Errors: errs})
}

// writeServiceError translates a service or repository error into the wire
// format. Anything outside the known taxonomy collapses to a 500 whose body
// carries only an opaque ref; the underlying error is logged against that
// ref so operators can correlate. In dev mode the message is passed through.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fields common.FieldErrors
	switch {
	case errors.As(err, &fields):
		out := make([]apiError, 0, len(fields))
		for _, f := range fields {
			out = append(out, apiError{Type: errTypeValidation, Msg: f.Msg, Path: f.Field})
		}
		writeError(w, http.StatusBadRequest, out...)
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, apiError{Type: errTypeValidation, Msg: err.Error()})
	case errors.Is(err, common.ErrEmailTaken):
		writeError(w, http.StatusConflict, apiError{Type: errTypeConflict, Msg: common.ErrEmailTaken.Error()})
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, apiError{Type: errTypeUnauthenticated, Msg: common.ErrInvalidCredentials.Error()})
	case errors.Is(err, common.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, apiError{Type: errTypeUnauthenticated, Msg: common.ErrUnauthenticated.Error()})
	case errors.Is(err, common.ErrForbidden):
		writeError(w, http.StatusForbidden, apiError{Type: errTypeForbidden, Msg: common.ErrForbidden.Error()})
	case errors.Is(err, common.ErrNotFound):
		writeError(w, http.StatusNotFound, apiError{Type: errTypeNotFound, Msg: common.ErrNotFound.Error()})
	default:
		ref := uuid.NewString()
		s.logger.Error(r.Context(), "request failed", "ref", ref, "method", r.Method, "path", r.URL.Path, "error", err.Error())
		msg := "internal server error"
		if s.devMode {
			msg = err.Error()
		}
		writeError(w, http.StatusInternalServerError, apiError{Ref: ref, Type: errTypeInternal, Msg: msg})
	}
}

func writeUnauthenticated(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, apiError{Type: errTypeUnauthenticated, Msg: common.ErrUnauthenticated.Error()})
}

func writeForbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, apiError{Type: errTypeForbidden, Msg: common.ErrForbidden.Error()})
}
