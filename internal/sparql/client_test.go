package sparql

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const fileResults = `{
  "head": {"vars": ["name", "format", "dataSource"]},
  "results": {"bindings": [
    {
      "name": {"type": "literal", "value": "nota.pdf"},
      "dataSource": {"type": "uri", "value": "share://abc.pdf"}
    },
    {
      "name": {"type": "literal", "value": "other.pdf"},
      "format": {"type": "literal", "value": "application/pdf"},
      "extra": {"type": "literal", "value": "ignored"}
    }
  ]}
}`

func TestClient_Query(t *testing.T) {
	var gotQuery, gotAccept, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotAccept = r.Header.Get("Accept")
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		gotQuery = r.PostForm.Get("query")
		w.Header().Set("Content-Type", resultsMediaType)
		_, _ = w.Write([]byte(fileResults))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	bindings, err := c.Query(context.Background(), "SELECT * WHERE { ?s ?p ?o }")
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %s, want POST", gotMethod)
	}
	if gotAccept != resultsMediaType {
		t.Errorf("Accept = %q", gotAccept)
	}
	if gotQuery != "SELECT * WHERE { ?s ?p ?o }" {
		t.Errorf("query = %q", gotQuery)
	}

	if len(bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %d", len(bindings))
	}
	first := bindings[0]
	if first["name"] != "nota.pdf" || first["dataSource"] != "share://abc.pdf" {
		t.Errorf("unexpected first binding %v", first)
	}
	if _, ok := first["format"]; ok {
		t.Error("unbound variable should be absent")
	}
	if _, ok := bindings[1]["extra"]; ok {
		t.Error("variables outside head.vars should be dropped")
	}
}

func TestClient_Query_Errors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantSentry bool
	}{
		{"server_error", http.StatusInternalServerError, "virtuoso exploded", true},
		{"bad_request", http.StatusBadRequest, "syntax error", true},
		{"bad_json", http.StatusOK, "{not json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient(srv.URL).Query(context.Background(), "ASK {}")
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, ErrEndpoint) != tt.wantSentry {
				t.Errorf("errors.Is(err, ErrEndpoint) = %v, want %v (err: %v)", !tt.wantSentry, tt.wantSentry, err)
			}
			if tt.wantSentry && !strings.Contains(err.Error(), tt.body) {
				t.Errorf("error should carry the response body, got %v", err)
			}
		})
	}
}

func TestClient_Query_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := NewClient(srv.URL).Query(ctx, "ASK {}"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestClient_Options(t *testing.T) {
	hc := &http.Client{}
	c := NewClient("http://database:8890/sparql", WithHTTPClient(hc))
	if c.httpClient != hc {
		t.Error("WithHTTPClient not applied")
	}
	if c.Endpoint() != "http://database:8890/sparql" {
		t.Errorf("Endpoint() = %q", c.Endpoint())
	}

	c = NewClient("http://x", WithTimeout(5*time.Second))
	if c.httpClient.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", c.httpClient.Timeout)
	}
}

func TestEscapeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abc", `"""abc"""`},
		{"", `""""""`},
		{`say "hi"`, `"""say \"hi\""""`},
		{`back\slash`, `"""back\\slash"""`},
		{"new\nline", "\"\"\"new\nline\"\"\""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := EscapeString(tt.in); got != tt.want {
				t.Errorf("EscapeString(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}
