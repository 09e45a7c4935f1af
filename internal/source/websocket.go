package source

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/versecue/versecue/internal/resilience"
)

// dialBackoff paces reconnect attempts while the breaker is still closed.
const dialBackoff = time.Second

// WebsocketSource reads transcript fragments from a websocket endpoint, one
// text message per fragment. Connections are established lazily and
// re-established after failures; a circuit breaker paces reconnect storms
// when the upstream feed is down.
//
// Not safe for concurrent Read calls.
type WebsocketSource struct {
	url     string
	log     *slog.Logger
	breaker *resilience.Breaker
	conn    *websocket.Conn
}

var _ Source = (*WebsocketSource)(nil)

// WebsocketOption configures a [WebsocketSource].
type WebsocketOption func(*WebsocketSource)

// WithWebsocketLogger sets the source's logger. Default: [slog.Default].
func WithWebsocketLogger(log *slog.Logger) WebsocketOption {
	return func(s *WebsocketSource) {
		s.log = log
	}
}

// NewWebsocket creates a source for the given ws:// or wss:// URL.
func NewWebsocket(url string, opts ...WebsocketOption) *WebsocketSource {
	s := &WebsocketSource{
		url: url,
		log: slog.Default(),
		breaker: resilience.NewBreaker(resilience.BreakerConfig{
			Name:         "websocket-source",
			MaxFailures:  5,
			ResetTimeout: 30 * time.Second,
		}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Read implements [Source.Read]. A dropped connection is re-established
// transparently; Read only fails when ctx is done.
func (s *WebsocketSource) Read(ctx context.Context) (string, error) {
	for {
		if s.conn == nil {
			if err := s.connect(ctx); err != nil {
				return "", err
			}
		}

		typ, data, err := s.conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			s.breaker.Record(err)
			s.log.Warn("websocket read failed, reconnecting", "url", s.url, "err", err)
			s.dropConn()
			continue
		}
		s.breaker.Record(nil)

		if typ != websocket.MessageText {
			continue
		}
		line := strings.TrimSpace(string(data))
		if line == "" {
			continue
		}
		return line, nil
	}
}

// Kind implements [Source.Kind].
func (s *WebsocketSource) Kind() string { return "websocket" }

// Close implements [Source.Close].
func (s *WebsocketSource) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close(websocket.StatusNormalClosure, "shutting down")
	s.conn = nil
	return err
}

// connect dials the endpoint, waiting out the breaker when it is open.
// Returns only when connected or ctx is done.
func (s *WebsocketSource) connect(ctx context.Context) error {
	for {
		if err := s.breaker.Allow(); err != nil {
			if !errors.Is(err, resilience.ErrOpen) {
				return err
			}
			if err := sleep(ctx, s.breaker.RetryIn()); err != nil {
				return err
			}
			continue
		}

		conn, _, err := websocket.Dial(ctx, s.url, nil)
		s.breaker.Record(err)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.log.Warn("websocket dial failed", "url", s.url, "err", err)
			if err := sleep(ctx, dialBackoff); err != nil {
				return err
			}
			continue
		}

		// Transcript fragments are short; no need for the default 32 KiB cap,
		// but some STT services batch aggressively.
		conn.SetReadLimit(1 << 20)
		s.conn = conn
		s.log.Info("websocket connected", "url", s.url)
		return nil
	}
}

func (s *WebsocketSource) dropConn() {
	if s.conn != nil {
		_ = s.conn.Close(websocket.StatusInternalError, "read failed")
		s.conn = nil
	}
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		d = dialBackoff
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
