package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	apperrors "roombooking/internal/errors"
)

const maxBodyBytes = 1 << 20

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ListResponse[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

func newList[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Total: len(items), Items: items}
}

// base carries what every handler needs to respond.
type base struct {
	log *logrus.Logger
}

func (b base) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		b.log.WithError(err).Warn("encoding response")
	}
}

// writeError maps service errors to a status and a JSON body. Unexpected
// errors are logged and reported without detail.
func (b base) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.Status(err)
	resp := ErrorResponse{Error: err.Error()}
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		resp = ErrorResponse{Error: "validation failed", Fields: verr.Fields}
	}
	if code >= http.StatusInternalServerError {
		b.log.WithError(err).WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).Error("request failed")
		resp = ErrorResponse{Error: http.StatusText(code)}
	}
	b.writeJSON(w, code, resp)
}

// decodeJSON reads a JSON body into v. An empty body is accepted when
// allowEmpty is set and leaves v untouched.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.ErrBadRequest("invalid request body: " + err.Error())
	}
	return nil
}
