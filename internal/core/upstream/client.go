// Package upstream executes GraphQL documents against the content API.
package upstream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"strconv"
	"strings"
	"time"

	graphql "github.com/hasura/go-graphql-client"
	"go.uber.org/zap"

	"github.com/xzzpig/content-rest/internal/core/config"
	"github.com/xzzpig/content-rest/internal/core/errs"
	"github.com/xzzpig/content-rest/internal/core/logger"
	"github.com/xzzpig/content-rest/internal/core/ports"
)

// Client implements ports.Executor over HTTP.
type Client struct {
	cfg        config.Upstream
	httpClient *http.Client
}

var _ ports.Executor = (*Client)(nil)

// New creates a Client. A nil httpClient uses a client with no timeout of its
// own; cfg.Timeout bounds every Execute call instead.
func New(cfg config.Upstream, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{cfg: cfg, httpClient: httpClient}
}

func clientLog() *zap.Logger {
	return logger.Named("core.upstream")
}

// target is the resolved endpoint and headers for one auth context.
type target struct {
	url     string
	headers http.Header
}

func (c *Client) resolve(auth ports.AuthContext) target {
	stored := ""
	if auth.UseStoredQueries {
		stored = "?stored=true"
	}

	if gateway := strings.TrimSuffix(c.cfg.Gateway, "/"); gateway != "" {
		switch {
		case auth.Mode == ports.ModeEdit && auth.PreviewToken != "":
			h := http.Header{}
			h.Set("Authorization", "Bearer "+auth.PreviewToken)
			if auth.UseStoredQueries {
				h.Set("cg-stored-query", "template")
			}
			return target{url: gateway + "/content/v2" + stored, headers: h}

		case auth.Mode == ports.ModeExternalPreview && c.cfg.ExternalPreviewReady():
			h := http.Header{}
			token := base64.StdEncoding.EncodeToString([]byte(c.cfg.AppKey + ":" + c.cfg.Secret))
			h.Set("Authorization", "Basic "+token)
			if auth.UseStoredQueries {
				h.Set("cg-stored-query", "template")
			}
			return target{url: gateway + "/content/v2" + stored, headers: h}

		case c.cfg.SingleKey != "":
			return target{url: c.cfg.ResolvedEndpoint(), headers: http.Header{}}
		}
	}

	h := http.Header{}
	if c.cfg.AppKey != "" {
		h.Set("X-Graph-App-Key", c.cfg.AppKey)
	}
	if c.cfg.Secret != "" {
		h.Set("X-Graph-Secret", c.cfg.Secret)
	}
	if c.cfg.APIKey != "" {
		h.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}
	return target{url: c.cfg.ResolvedEndpoint(), headers: h}
}

// EndpointFor returns the URL a request with auth would be sent to.
func (c *Client) EndpointFor(auth ports.AuthContext) string {
	return c.resolve(auth).url
}

// Execute sends document with variables. GraphQL errors come back in the
// Result together with any partial data; transport failures are returned as
// an *Error wrapping ErrGatewayTimeout or ErrServiceUnavailable.
func (c *Client) Execute(ctx context.Context, document string, variables map[string]any, auth ports.AuthContext) (*ports.Result, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	t := c.resolve(auth)
	gql := graphql.NewClient(t.url, c.httpClient).WithRequestModifier(func(r *http.Request) {
		for k, v := range t.headers {
			r.Header[k] = v
		}
	})

	start := time.Now()
	data, err := gql.ExecRaw(ctx, document, variables)
	clientLog().Debug("GraphQL query executed",
		zap.String("mode", string(auth.Mode)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("failed", err != nil))

	if err == nil {
		return &ports.Result{Data: data}, nil
	}

	if ctx.Err() != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, &Error{Kind: errs.ErrGatewayTimeout, Message: "GraphQL request failed: " + err.Error()}
	}

	var gqlErrs graphql.Errors
	if !errors.As(err, &gqlErrs) {
		return nil, &Error{Kind: errs.ErrSystem, Message: "GraphQL request failed: " + err.Error()}
	}

	result := &ports.Result{Data: data}
	for _, e := range gqlErrs {
		code, _ := e.Extensions["code"].(string)
		if code != graphql.ErrRequestError {
			result.Errors = append(result.Errors, convert(e))
			continue
		}
		// Non-200 answers keep their body in the message; GraphQL servers
		// often put validation errors there.
		if body, ok := responseBody(e.Message); ok {
			result.Data = body.Data
			result.Errors = append(result.Errors, body.Errors...)
			continue
		}
		if kind := transportKind(e.Message); kind != nil {
			clientLog().Warn("Upstream transport failure", zap.String("error", e.Message))
			return nil, &Error{Kind: kind, Message: "GraphQL request failed: " + e.Message}
		}
		result.Errors = append(result.Errors, convert(e))
	}
	if len(result.Errors) > 0 {
		clientLog().Debug("GraphQL errors", zap.String("first", result.Errors[0].Message), zap.Int("count", len(result.Errors)))
	}
	return result, nil
}

func convert(e graphql.Error) ports.GraphQLError {
	out := ports.GraphQLError{Message: e.Message}
	for _, l := range e.Locations {
		out.Locations = append(out.Locations, ports.Location{Line: l.Line, Column: l.Column})
	}
	if len(e.Extensions) > 0 {
		out.Extensions = maps.Clone(e.Extensions)
	}
	return out
}

type rawResponse struct {
	Data   json.RawMessage      `json:"data"`
	Errors []ports.GraphQLError `json:"errors"`
}

// responseBody recovers the GraphQL response from a "<status>; body: %q" message.
func responseBody(message string) (*rawResponse, bool) {
	idx := strings.Index(message, "; body: ")
	if idx < 0 {
		return nil, false
	}
	body, err := strconv.Unquote(message[idx+len("; body: "):])
	if err != nil {
		return nil, false
	}
	var resp rawResponse
	if err := json.Unmarshal([]byte(body), &resp); err != nil || len(resp.Errors) == 0 {
		return nil, false
	}
	if string(resp.Data) == "null" {
		resp.Data = nil
	}
	return &resp, true
}

func transportKind(message string) error {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline exceeded"):
		return errs.ErrGatewayTimeout
	case strings.Contains(lower, "connection refused"),
		strings.Contains(lower, "no such host"),
		strings.Contains(lower, "connection reset"),
		strings.Contains(lower, "eof"):
		return errs.ErrServiceUnavailable
	}
	return nil
}
