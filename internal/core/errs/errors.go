package errs

import (
	"errors"
	"net/http"
)

// ConstError is a string error type usable in const declarations.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

// Sentinel errors for the domain layer.
// Lower layers wrap their failures with one of these so that the API layer
// can pick a status code without knowing where the error came from.
const (
	// ErrBadRequest is returned when a required parameter is missing or invalid.
	ErrBadRequest ConstError = "bad request"

	// ErrInvalidContentType is returned when the upstream rejects a field or type
	// referenced by the assembled document.
	ErrInvalidContentType ConstError = "invalid content type"

	// ErrInvalidVariable is returned when the upstream rejects a variable.
	ErrInvalidVariable ConstError = "invalid variable"

	// ErrNotFound is returned when the upstream returned no data for the envelope key.
	ErrNotFound ConstError = "resource not found"

	// ErrGatewayTimeout is returned when the upstream call timed out.
	ErrGatewayTimeout ConstError = "upstream timeout"

	// ErrServiceUnavailable is returned when the upstream could not be reached.
	ErrServiceUnavailable ConstError = "upstream unavailable"

	// ErrUnauthorized is returned when the request carries no usable credentials.
	ErrUnauthorized ConstError = "unauthorized"

	// ErrConfiguration is returned when the deployment lacks required settings.
	ErrConfiguration ConstError = "configuration error"

	// ErrSystem is returned when an unexpected system error occurs.
	ErrSystem ConstError = "system error"
)

// Kind is the client-facing error category written into the REST error envelope.
type Kind string

const (
	KindBadRequest         Kind = "BadRequest"
	KindInvalidContentType Kind = "InvalidContentType"
	KindInvalidVariable    Kind = "InvalidVariable"
	KindNotFound           Kind = "NotFound"
	KindGatewayTimeout     Kind = "GatewayTimeout"
	KindServiceUnavailable Kind = "ServiceUnavailable"
	KindUnauthorized       Kind = "Unauthorized"
	KindConfiguration      Kind = "Configuration Error"
	KindInternal           Kind = "InternalServerError"
)

var kinds = []struct {
	err  error
	kind Kind
}{
	{ErrBadRequest, KindBadRequest},
	{ErrInvalidContentType, KindInvalidContentType},
	{ErrInvalidVariable, KindInvalidVariable},
	{ErrNotFound, KindNotFound},
	{ErrGatewayTimeout, KindGatewayTimeout},
	{ErrServiceUnavailable, KindServiceUnavailable},
	{ErrUnauthorized, KindUnauthorized},
	{ErrConfiguration, KindConfiguration},
}

// KindOf returns the category of err. Errors that wrap none of the sentinels
// are internal errors.
func KindOf(err error) Kind {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// HTTPStatus maps a Kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindBadRequest, KindInvalidContentType, KindInvalidVariable:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindGatewayTimeout:
		return http.StatusGatewayTimeout
	case KindServiceUnavailable:
		return http.StatusServiceUnavailable
	case KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a retry policy could reasonably apply to err.
// Only transport-level failures qualify; the core itself never retries.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindGatewayTimeout, KindServiceUnavailable:
		return true
	default:
		return false
	}
}
