package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/ignitoosolutions/ignito1/internal/platform/requestctx"
)

const (
	maxCodeLen    = 80
	maxMessageLen = 512
	maxIDLen      = 80
)

// Error is the JSON error envelope returned by the payment and backend routes.
// Details are flattened into the top-level object next to the fixed keys.
type Error struct {
	Code    string
	Message string
	Status  int
	Details map[string]any
}

// NewError builds an Error. A zero status means 500.
func NewError(code, message string, status int) Error {
	return Error{
		Code:    singleLine(code, maxCodeLen),
		Message: singleLine(message, maxMessageLen),
		Status:  statusOr500(status),
	}
}

func (e Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// WithDetails returns a copy of e carrying details.
func (e Error) WithDetails(details map[string]any) Error {
	if len(details) > 0 {
		e.Details = maps.Clone(details)
	}
	return e
}

// body renders the envelope. Fixed keys win over details of the same name.
func (e Error) body(ctx context.Context) map[string]any {
	out := make(map[string]any, len(e.Details)+5)
	maps.Copy(out, e.Details)
	out["error"] = e.Code
	out["message"] = e.Message
	out["status"] = statusOr500(e.Status)
	if id := singleLine(middleware.GetReqID(ctx), maxIDLen); id != "" {
		out["request_id"] = id
	}
	if id := singleLine(requestctx.TraceID(ctx), maxIDLen); id != "" {
		out["trace_id"] = id
	}
	return out
}

// WriteError writes err as JSON, tagging it with the request and trace ids on ctx.
func WriteError(ctx context.Context, w http.ResponseWriter, err Error) {
	WriteJSON(w, statusOr500(err.Status), err.body(ctx))
}

// WriteJSON encodes payload with the given status.
func WriteJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func statusOr500(status int) int {
	if status == 0 {
		return http.StatusInternalServerError
	}
	return status
}

// singleLine folds line breaks to spaces and truncates to limit bytes.
func singleLine(value string, limit int) string {
	value = strings.TrimSpace(strings.NewReplacer("\r", " ", "\n", " ").Replace(value))
	if len(value) > limit {
		value = value[:limit]
	}
	return value
}
