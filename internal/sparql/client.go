// Package sparql is a small client for the SPARQL 1.1 protocol query
// operation, returning flattened result bindings.
package sparql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jmylchreest/notadecision/internal/logger"
	"github.com/jmylchreest/notadecision/internal/version"
)

// ErrEndpoint indicates the endpoint answered with a non-success status.
var ErrEndpoint = errors.New("sparql endpoint error")

const resultsMediaType = "application/sparql-results+json"

// Querier runs SELECT queries.
type Querier interface {
	Query(ctx context.Context, query string) ([]Binding, error)
}

// Binding maps variable names to their lexical values. Unbound variables
// are absent.
type Binding map[string]string

// Client sends queries to a single endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.httpClient = &http.Client{Timeout: d}
	}
}

// NewClient creates a client for endpoint.
func NewClient(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// results is the application/sparql-results+json document.
type results struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results struct {
		Bindings []map[string]term `json:"bindings"`
	} `json:"results"`
}

type term struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype,omitempty"`
	Lang     string `json:"xml:lang,omitempty"`
}

// Query posts query as a form-encoded request and flattens the bindings.
func (c *Client) Query(ctx context.Context, query string) ([]Binding, error) {
	form := url.Values{"query": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", resultsMediaType)
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("POST %s: %w", c.endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrEndpoint, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var doc results
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode results: %w", err)
	}

	bindings := flatten(doc)
	logger.Debug("sparql query done",
		"endpoint", c.endpoint,
		"bindings", len(bindings),
		"duration", time.Since(start))
	return bindings, nil
}

func flatten(doc results) []Binding {
	out := make([]Binding, 0, len(doc.Results.Bindings))
	for _, row := range doc.Results.Bindings {
		b := make(Binding, len(doc.Head.Vars))
		for _, v := range doc.Head.Vars {
			if t, ok := row[v]; ok {
				b[v] = t.Value
			}
		}
		out = append(out, b)
	}
	return out
}

var literalEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// EscapeString returns s as a long-quoted SPARQL string literal.
func EscapeString(s string) string {
	return `"""` + literalEscaper.Replace(s) + `"""`
}
