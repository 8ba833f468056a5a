package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/witanlabs/gsheets/internal"
)

// Backend reads, writes and clears ranges of cell values in a spreadsheet.
// Ranges use A1 notation; rows are in row-major order.
type Backend interface {
	Get(ctx context.Context, rng string) ([][]any, error)
	BatchGet(ctx context.Context, rngs []string) ([][][]any, error)
	Update(ctx context.Context, rng string, rows [][]any) error
	BatchUpdate(ctx context.Context, rngs []string, rows [][][]any) error
	Clear(ctx context.Context, rng string) error
	BatchClear(ctx context.Context, rngs []string) error
}

// BackendError is returned when the backend answers with a non-success
// status. Raw holds the response body as received.
type BackendError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string
	Raw        []byte
}

func (e *BackendError) Error() string {
	if friendly := friendlyErrorMessage(e.StatusCode, e.Code, e.Message, e.RetryAfter); friendly != "" {
		return friendly
	}
	if e.Code != "" {
		return fmt.Sprintf("backend error %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.StatusCode, e.Message)
}

// friendlyErrorMessage translates known error statuses into user-facing messages.
func friendlyErrorMessage(statusCode int, code, message, retryAfter string) string {
	if statusCode == http.StatusTooManyRequests {
		if retryAfter != "" {
			return fmt.Sprintf("rate limited by backend; retry after %s", retryAfter)
		}
		return "rate limited by backend; retry in a moment"
	}

	switch code {
	case "UNAUTHENTICATED":
		return "not authenticated: run 'gsheets auth set-token' or set --token / GSHEETS_TOKEN"
	case "PERMISSION_DENIED":
		return "permission denied: " + message
	case "NOT_FOUND", "INVALID_ARGUMENT":
		return message // already human-readable, e.g. "Unable to parse range: Nope!A1"
	default:
		return ""
	}
}

// MismatchError is returned by BatchUpdate when the number of ranges and
// value sets differ. It is raised before any backend call.
type MismatchError struct {
	Ranges int
	Rows   int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("batch update needs one value set per range: got %d ranges and %d value sets", e.Ranges, e.Rows)
}

func checkBatch(rngs []string, rows [][][]any) error {
	if len(rngs) != len(rows) {
		return &MismatchError{Ranges: len(rngs), Rows: len(rows)}
	}
	return nil
}

// canonicalRange validates rng and returns it in canonical A1 form.
func canonicalRange(rng string) (string, error) {
	r, err := internal.ParseRange(rng)
	if err != nil {
		return "", err
	}
	return r.String(), nil
}

func canonicalRanges(rngs []string) ([]string, error) {
	out := make([]string, len(rngs))
	for i, rng := range rngs {
		s, err := canonicalRange(rng)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
