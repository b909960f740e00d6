package apiclient

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrorCode classifies client errors.
type ErrorCode int

const (
	// ErrCodeTransport indicates a connection, TLS or I/O failure.
	ErrCodeTransport ErrorCode = iota
	// ErrCodeStatus indicates a status code outside [200, 210].
	ErrCodeStatus
	// ErrCodeURI indicates a path or query that does not form a valid URI.
	ErrCodeURI
	// ErrCodeDecode indicates a JSON or XML body that failed to parse.
	ErrCodeDecode
	// ErrCodeRequest indicates a request the client refuses to build.
	ErrCodeRequest
	// ErrCodeCache indicates a cache store failure or missing store.
	ErrCodeCache
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTransport:
		return "transport"
	case ErrCodeStatus:
		return "status"
	case ErrCodeURI:
		return "uri"
	case ErrCodeDecode:
		return "decode"
	case ErrCodeRequest:
		return "request"
	case ErrCodeCache:
		return "cache"
	default:
		return "unknown"
	}
}

// Error is a classified client error.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// StatusCode is the HTTP status code (0 unless Code is ErrCodeStatus).
	StatusCode int
	// Message describes the error. For status errors it is the response
	// body with all markup tags removed.
	Message string
	// Body is the raw response body of a status error.
	Body []byte
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("apiclient: %s (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("apiclient: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, err error) *Error {
	return &Error{Code: code, Message: err.Error(), Err: err}
}

// NewStatusError builds the error returned for an out-of-range status code.
func NewStatusError(statusCode int, body []byte) *Error {
	return &Error{
		Code:       ErrCodeStatus,
		StatusCode: statusCode,
		Message:    StripTags(string(body)),
		Body:       body,
	}
}

var tagPattern = regexp.MustCompile(`<.*?>`)

// StripTags removes every <...> substring from s.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// IsSuccess reports whether status is in the accepted range [200, 210].
func IsSuccess(status int) bool {
	return status >= 200 && status <= 210
}

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsTransport checks if an error is a transport error.
func IsTransport(err error) bool { return hasCode(err, ErrCodeTransport) }

// IsStatus checks if an error is an out-of-range status error.
func IsStatus(err error) bool { return hasCode(err, ErrCodeStatus) }

// IsURI checks if an error is a URI parse error.
func IsURI(err error) bool { return hasCode(err, ErrCodeURI) }

// IsDecode checks if an error is a body decode error.
func IsDecode(err error) bool { return hasCode(err, ErrCodeDecode) }

// IsCache checks if an error is a cache store error.
func IsCache(err error) bool { return hasCode(err, ErrCodeCache) }

// StatusCode extracts the HTTP status from a status error.
func StatusCode(err error) (int, bool) {
	var e *Error
	if errors.As(err, &e) && e.Code == ErrCodeStatus {
		return e.StatusCode, true
	}
	return 0, false
}
