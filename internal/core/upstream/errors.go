package upstream

import (
	"strings"

	"github.com/xzzpig/content-rest/internal/core/errs"
	"github.com/xzzpig/content-rest/internal/core/ports"
)

// Error is a classified upstream failure. Kind is one of the errs sentinels.
type Error struct {
	Kind    error
	Message string
	// GraphQL holds the upstream errors the classification was made from, if any.
	GraphQL []ports.GraphQLError
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

// message substrings, checked in order.
var messageRules = []struct {
	substr string
	kind   error
}{
	{"Cannot query field", errs.ErrInvalidContentType},
	{"Variable", errs.ErrInvalidVariable},
	{"No data returned", errs.ErrNotFound},
	{"timeout", errs.ErrGatewayTimeout},
	{"ETIMEDOUT", errs.ErrGatewayTimeout},
	{"ECONNREFUSED", errs.ErrServiceUnavailable},
	{"fetch failed", errs.ErrServiceUnavailable},
}

// extensions.code values consulted when the message gives no verdict.
var codeRules = map[string]error{
	"GRAPHQL_VALIDATION_FAILED": errs.ErrInvalidContentType,
	"GRAPHQL_PARSE_FAILED":      errs.ErrInvalidContentType,
	"BAD_USER_INPUT":            errs.ErrInvalidVariable,
	"NOT_FOUND":                 errs.ErrNotFound,
	"UNAUTHENTICATED":           errs.ErrUnauthorized,
}

// Classify turns the errors of a Result into one error. The first error's
// message decides; unmatched errors are internal.
func Classify(gqlErrs []ports.GraphQLError) error {
	if len(gqlErrs) == 0 {
		return nil
	}
	first := gqlErrs[0]
	return &Error{Kind: classifyMessage(first.Message, first.Code()), Message: first.Message, GraphQL: gqlErrs}
}

func classifyMessage(message, code string) error {
	for _, r := range messageRules {
		if strings.Contains(message, r.substr) {
			return r.kind
		}
	}
	if kind, ok := codeRules[code]; ok {
		return kind
	}
	return errs.ErrSystem
}
