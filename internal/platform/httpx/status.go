package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxSubmissionBytes = 64 << 10

// Status values of the form-submission response contract shared by the order and
// contact endpoints.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SubmissionResponse is the body returned by the order and contact endpoints.
type SubmissionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	OrderID string `json:"orderId,omitempty"`
}

// WriteSubmission writes a SubmissionResponse.
func WriteSubmission(w http.ResponseWriter, status int, resp SubmissionResponse) {
	w.Header().Set("Cache-Control", "no-store")
	WriteJSON(w, status, resp)
}

// ErrBodyTooLarge is returned by ReadLimitedBody when the payload exceeds the limit.
var ErrBodyTooLarge = errors.New("request body too large")

// ReadLimitedBody reads at most limit bytes from the request body.
func ReadLimitedBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

// DecodeSubmission parses a SubmissionResponse body. Anything that is not a
// JSON object is an error.
func DecodeSubmission(r io.Reader) (SubmissionResponse, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxSubmissionBytes))
	if err != nil {
		return SubmissionResponse{}, fmt.Errorf("read response: %w", err)
	}
	var resp SubmissionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return SubmissionResponse{}, fmt.Errorf("decode response: %w", err)
	}
	return resp, nil
}
