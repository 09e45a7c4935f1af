package source_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"

	"github.com/versecue/versecue/internal/source"
)

func TestStdin_ReadsLines(t *testing.T) {
	t.Parallel()

	s := source.NewStdin(strings.NewReader("John 3:16\n\n   \nRomans 8:28\n"))
	ctx := context.Background()

	got, err := s.Read(ctx)
	if err != nil || got != "John 3:16" {
		t.Fatalf("Read=%q,%v, want John 3:16,nil", got, err)
	}

	// Blank lines are skipped.
	got, err = s.Read(ctx)
	if err != nil || got != "Romans 8:28" {
		t.Fatalf("Read=%q,%v, want Romans 8:28,nil", got, err)
	}

	if _, err := s.Read(ctx); !errors.Is(err, io.EOF) {
		t.Errorf("Read at end = %v, want io.EOF", err)
	}
}

func TestStdin_ContextCancelled(t *testing.T) {
	t.Parallel()

	s := source.NewStdin(strings.NewReader("John 3:16\n"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Read with cancelled ctx = %v, want context.Canceled", err)
	}
}

func TestStdin_Kind(t *testing.T) {
	t.Parallel()

	s := source.NewStdin(strings.NewReader(""))
	if got := s.Kind(); got != "stdin" {
		t.Errorf("Kind=%q, want stdin", got)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

// wsURL rewrites an httptest server URL into a ws:// URL.
func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebsocket_ReadsMessages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		ctx := r.Context()
		_ = c.Write(ctx, websocket.MessageText, []byte("turn to John 3:16"))
		_ = c.Write(ctx, websocket.MessageText, []byte("   "))
		_ = c.Write(ctx, websocket.MessageText, []byte("Romans 8:28"))

		// Hold the connection until the client walks away.
		_, _, _ = c.Read(ctx)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := source.NewWebsocket(wsURL(srv))
	defer s.Close()

	got, err := s.Read(ctx)
	if err != nil || got != "turn to John 3:16" {
		t.Fatalf("Read=%q,%v, want turn to John 3:16,nil", got, err)
	}

	// The blank message is skipped.
	got, err = s.Read(ctx)
	if err != nil || got != "Romans 8:28" {
		t.Fatalf("Read=%q,%v, want Romans 8:28,nil", got, err)
	}

	if got := s.Kind(); got != "websocket" {
		t.Errorf("Kind=%q, want websocket", got)
	}
}

func TestWebsocket_CancelledContext(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		// Send nothing; the client read must unblock via its context.
		_, _, _ = c.Read(r.Context())
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	s := source.NewWebsocket(wsURL(srv))
	defer s.Close()

	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()
	if _, err := s.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Read with cancelled ctx = %v, want context.Canceled", err)
	}
}
