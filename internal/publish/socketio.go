package publish

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/dataflow"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// DefaultEvent is the event name used when a target sets no `event` option.
const DefaultEvent = "publish"

// SocketIOConfig configures the socket.io publisher.
type SocketIOConfig struct {
	URL                string
	Namespace          string
	InsecureSkipVerify bool
	ConnectTimeout     time.Duration
}

// SocketIOPublisher emits one event per record over a lazily opened
// socket.io connection.
type SocketIOPublisher struct {
	config SocketIOConfig

	mu     sync.Mutex
	client *socket.Socket
}

// NewSocketIOPublisher validates cfg and returns a publisher. No connection
// is made until the first record arrives.
func NewSocketIOPublisher(cfg SocketIOConfig) (*SocketIOPublisher, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("socket.io URL '%s' needs a scheme and a host", cfg.URL)
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "/"
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 15 * time.Second
	}
	return &SocketIOPublisher{config: cfg}, nil
}

// Name implements Backend.
func (s *SocketIOPublisher) Name() string { return "socketio" }

// Publish implements dataflow.Publisher.
func (s *SocketIOPublisher) Publish(ctx context.Context, rec dataflow.Record) error {
	payload, err := NewPayload(rec)
	if err != nil {
		return err
	}
	client, err := s.connect(ctx)
	if err != nil {
		return err
	}

	event := rec.Options.String("event", DefaultEvent)
	ctxlog.FromContext(ctx).Debug("Emitting event", "event", event, "target", rec.Target, "sid", client.Id())
	return client.Emit(event, payloadMap(payload))
}

func payloadMap(p Payload) map[string]any {
	return map[string]any{
		"component": p.Component,
		"target":    p.Target,
		"channel":   p.Channel,
		"values":    p.Values,
	}
}

func (s *SocketIOPublisher) connect(ctx context.Context) (*socket.Socket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil && s.client.Connected() {
		return s.client, nil
	}

	logger := ctxlog.FromContext(ctx).With("publisher", "socketio", "url", s.config.URL)
	logger.Info("Creating new client instance...")

	parsedURL, err := url.Parse(s.config.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}

	opts := socket.DefaultOptions()
	opts.SetPath(parsedURL.Path)
	if s.config.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))
	// a failed first attempt is reported, not retried in the background
	opts.SetReconnection(false)

	connectChan := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(s.config.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Info("Successfully connected", "sid", io.Id())
		select {
		case connectChan <- nil:
		default:
		}
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		var err error = fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		select {
		case connectChan <- err:
		default:
		}
	})

	io.Connect()

	select {
	case err := <-connectChan:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		s.client = io
		return io, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("context cancelled while waiting for socket.io connection")
	case <-time.After(s.config.ConnectTimeout):
		io.Disconnect()
		return nil, fmt.Errorf("timed out after %s waiting for socket.io connection", s.config.ConnectTimeout)
	}
}

// Close disconnects the client, if one was opened.
func (s *SocketIOPublisher) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		s.client.Disconnect()
		s.client = nil
	}
	return nil
}
