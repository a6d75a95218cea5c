package pagination

import "errors"

// Sentinel errors for the pagination engine. Both are client errors and are
// never retried.
var (
	// ErrInvalidQuery indicates missing search text or out-of-range page parameters.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrInvalidCursor indicates a malformed cursor or one issued under another sort mode.
	ErrInvalidCursor = errors.New("invalid cursor")
)

// Machine-readable error codes returned to API clients.
const (
	CodeMissingQuery       = "missing_query"
	CodeQueryTooLong       = "query_too_long"
	CodeInvalidType        = "invalid_type"
	CodeInvalidSort        = "invalid_sort"
	CodeInvalidLimit       = "invalid_limit"
	CodeInvalidPage        = "invalid_page"
	CodeInvalidPageSize    = "invalid_page_size"
	CodeInvalidCursor      = "invalid_cursor"
	CodeCursorSortMismatch = "cursor_sort_mismatch"
)

// RequestError is a client input error carrying a stable code.
// It unwraps to ErrInvalidQuery or ErrInvalidCursor.
type RequestError struct {
	Code    string
	Message string
	kind    error
}

// NewRequestError creates a RequestError of the given kind.
func NewRequestError(kind error, code, msg string) *RequestError {
	return &RequestError{Code: code, Message: msg, kind: kind}
}

func (e *RequestError) Error() string {
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.kind
}

// CodeOf returns the client error code carried by err, or "" when err is not
// a RequestError.
func CodeOf(err error) string {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
