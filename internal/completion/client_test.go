package completion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/codegenhq/codegen/internal/config"
)

// newTestClient points a Client at a stub upstream.
func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	srv := httptest.NewServer(handler)
	client := NewClient(config.CompletionConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "test-model",
	})
	return client, srv
}

func TestGenerate_Success(t *testing.T) {
	var gotAuth string
	var gotBody chatRequest

	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &gotBody)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"func main() {}"}}]}`))
	})
	defer srv.Close()

	result, err := client.Generate(context.Background(), "write a hello world function")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if result != "func main() {}" {
		t.Fatalf("unexpected result %q", result)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("unexpected authorization header %q", gotAuth)
	}
	if len(gotBody.Messages) != 2 || gotBody.Messages[0].Role != "system" || gotBody.Messages[1].Content != "write a hello world function" {
		t.Fatalf("unexpected upstream payload: %+v", gotBody)
	}
	if gotBody.Model != "test-model" {
		t.Fatalf("unexpected model %q", gotBody.Model)
	}
}

func TestGenerate_UpstreamErrorPayload(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"model decommissioned"}}`))
	})
	defer srv.Close()

	_, err := client.Generate(context.Background(), "prompt")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
	if upstream.Message != "model decommissioned" {
		t.Fatalf("unexpected message %q", upstream.Message)
	}
}

func TestGenerate_MissingChoices(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"object":"chat.completion"}`))
	})
	defer srv.Close()

	if _, err := client.Generate(context.Background(), "prompt"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGenerate_NonJSONBody(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway timeout</html>"))
	})
	defer srv.Close()

	if _, err := client.Generate(context.Background(), "prompt"); !errors.Is(err, ErrMalformedResponse) {
		t.Fatalf("expected ErrMalformedResponse, got %v", err)
	}
}

func TestGenerate_TransportFailure(t *testing.T) {
	client, srv := newTestClient(func(w http.ResponseWriter, r *http.Request) {})
	srv.Close() // refuse connections

	_, err := client.Generate(context.Background(), "prompt")
	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("expected *UpstreamError, got %v", err)
	}
}
