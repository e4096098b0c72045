package responses

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"

	pkgerrors "github.com/angelmondragon/spesa/pkg/errors"
	"github.com/angelmondragon/spesa/pkg/logger"
)

// FieldError is one entry of a validation error list.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ErrorBody is the error payload: detail is a string, or a list of
// FieldError for validation failures.
type ErrorBody struct {
	Detail any `json:"detail"`
}

func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, data)
}

func WriteSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, data)
}

func WriteCreated(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusCreated, data)
}

func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError maps err to a status code and a detail body. Validation errors
// answer 422 with one entry per field.
func WriteError(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, err error) {
	if err == nil {
		err = errors.New("unknown error")
	}

	typed := pkgerrors.As(err)
	if typed == nil {
		typed = pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unexpected error")
	}

	meta := pkgerrors.MetadataFor(typed.Code())
	status := meta.HTTPStatus
	if s := typed.Status(); s != 0 {
		status = s
	}

	var body ErrorBody
	switch typed.Code() {
	case pkgerrors.CodeValidation:
		status = http.StatusUnprocessableEntity
		body.Detail = fieldErrors(typed)
	default:
		body.Detail = meta.PublicMessage
		if meta.Public() && typed.Message() != "" {
			body.Detail = typed.Message()
		}
	}

	if logg != nil {
		ctx = logg.WithFields(ctx, pkgerrors.Dump(err).Fields())
		ctx = logg.WithField(ctx, "status", status)
		if status >= http.StatusInternalServerError {
			logg.Error(ctx, "request.error", err)
		} else {
			logg.Warn(ctx, "request.rejected")
		}
	}

	writeJSON(w, status, body)
}

func fieldErrors(typed *pkgerrors.Error) []FieldError {
	details, ok := typed.Details().(map[string]string)
	if !ok || len(details) == 0 {
		return []FieldError{{Loc: []string{"body"}, Msg: typed.Message(), Type: "value_error"}}
	}
	fields := make([]string, 0, len(details))
	for field := range details {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	out := make([]FieldError, 0, len(fields))
	for _, field := range fields {
		out = append(out, FieldError{
			Loc:  []string{"body", field},
			Msg:  field + " " + details[field],
			Type: "value_error",
		})
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
