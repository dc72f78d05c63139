// Package i18n localizes the messages of errors raised by the service itself.
package i18n

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"github.com/xzzpig/content-rest/internal/core/errs"
)

//go:embed locales/*.toml
var localeFS embed.FS

var bundle *i18n.Bundle

// Init loads the embedded message files.
// Should be called when the application starts.
func Init() error {
	b := i18n.NewBundle(language.English)
	b.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"locales/en.toml", "locales/zh-CN.toml"} {
		if _, err := b.LoadMessageFileFS(localeFS, file); err != nil {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	bundle = b
	return nil
}

// NewLocalizer creates a localizer preferring the given languages, which may
// be Accept-Language values.
func NewLocalizer(langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, langs...)
}

// ParseLocale normalizes a language string to a supported locale
func ParseLocale(s string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(s)), "zh") {
		return "zh-CN"
	}
	return "en"
}

// T translates msgID, falling back to the key itself.
func T(localizer *i18n.Localizer, msgID string) string {
	return TWithData(localizer, msgID, nil)
}

// TWithData translates a message with template data
func TWithData(localizer *i18n.Localizer, msgID string, data map[string]any) string {
	if localizer == nil || bundle == nil {
		return msgID
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    msgID,
		TemplateData: data,
	})
	if err != nil {
		return msgID
	}
	return msg
}

type contextKey string

const (
	// ContextKeyLocalizer is the key for Localizer in context.Context
	ContextKeyLocalizer contextKey = "i18n.localizer"
	// ContextKeyLocale is the key for the locale string in context.Context
	ContextKeyLocale contextKey = "i18n.locale"
)

// WithLocalizer stores a Localizer in context.Context
func WithLocalizer(ctx context.Context, localizer *i18n.Localizer) context.Context {
	return context.WithValue(ctx, ContextKeyLocalizer, localizer)
}

// WithLocale stores a locale string in context.Context
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, ContextKeyLocale, locale)
}

// LocalizerFromContext returns the request Localizer, or an English one.
func LocalizerFromContext(ctx context.Context) *i18n.Localizer {
	if localizer, ok := ctx.Value(ContextKeyLocalizer).(*i18n.Localizer); ok {
		return localizer
	}
	return NewLocalizer("en")
}

// LocaleFromContext returns the request locale, or "en".
func LocaleFromContext(ctx context.Context) string {
	if locale, ok := ctx.Value(ContextKeyLocale).(string); ok {
		return locale
	}
	return "en"
}

// Ctx translates msgID with the Localizer stored in ctx.
func Ctx(ctx context.Context, msgID string) string {
	return T(LocalizerFromContext(ctx), msgID)
}

// Error is a translatable error raised by the service itself.
type Error struct {
	// MsgID is the key for the translated message
	MsgID string
	// Data is the data for the translation template (optional)
	Data map[string]any
	// Kind is written as the "error" field of the envelope.
	Kind errs.Kind
	// StatusCode is the HTTP status code (default 400)
	StatusCode int
	// Details is attached to the envelope as-is (optional)
	Details any
	// Cause is the original error (optional)
	Cause error
}

// Error returns the message ID, for logs.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.MsgID, e.Cause)
	}
	return e.MsgID
}

// Unwrap returns the original error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Translate translates the error message using the given localizer
func (e *Error) Translate(localizer *i18n.Localizer) string {
	return TWithData(localizer, e.MsgID, e.Data)
}

// NewI18nError creates a BadRequest error for msgID.
func NewI18nError(msgID string) *Error {
	return &Error{
		MsgID:      msgID,
		Kind:       errs.KindBadRequest,
		StatusCode: http.StatusBadRequest,
	}
}

// WithKind sets the envelope category and the status that belongs to it.
func (e *Error) WithKind(kind errs.Kind) *Error {
	e.Kind = kind
	e.StatusCode = errs.HTTPStatus(kind)
	return e
}

// WithCause sets the original error
func (e *Error) WithCause(err error) *Error {
	e.Cause = err
	return e
}

// WithData sets the translation data
func (e *Error) WithData(data map[string]any) *Error {
	e.Data = data
	return e
}

// WithDetails sets the envelope details.
func (e *Error) WithDetails(details any) *Error {
	e.Details = details
	return e
}

// ErrNotFoundI18n returns a 404 error
func ErrNotFoundI18n(msgID string) *Error {
	return NewI18nError(msgID).WithKind(errs.KindNotFound)
}

// ErrBadRequestI18n returns a 400 error
func ErrBadRequestI18n(msgID string) *Error {
	return NewI18nError(msgID)
}

// ErrConfigurationI18n returns a 500 configuration error
func ErrConfigurationI18n(msgID string) *Error {
	return NewI18nError(msgID).WithKind(errs.KindConfiguration)
}

// ErrUnauthorizedI18n returns a 401 error
func ErrUnauthorizedI18n(msgID string) *Error {
	return NewI18nError(msgID).WithKind(errs.KindUnauthorized)
}

// IsI18nError checks if the error is an I18nError
func IsI18nError(err error) (*Error, bool) {
	var i18nErr *Error
	if errors.As(err, &i18nErr) {
		return i18nErr, true
	}
	return nil, false
}
