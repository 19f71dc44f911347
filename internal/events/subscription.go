package events

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// Subscription is a client connection to the backend's event stream
type Subscription struct {
	conn      *websocket.Conn
	events    chan Event
	done      chan struct{}
	closing   chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

// WebsocketURL turns the backend base URL into the event stream URL
func WebsocketURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/api/events/ws")
	if err != nil {
		return "", fmt.Errorf("failed to parse base url: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	return u.String(), nil
}

// Subscribe dials the event stream. The subscription ends when ctx is done
// or the server goes away; Events is closed at that point.
func Subscribe(ctx context.Context, baseURL string, header http.Header, logger *slog.Logger) (*Subscription, error) {
	target, err := WebsocketURL(baseURL)
	if err != nil {
		return nil, err
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, target, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("failed to subscribe to events: %s: %w", resp.Status, err)
		}
		return nil, fmt.Errorf("failed to subscribe to events: %w", err)
	}

	s := &Subscription{
		conn:   conn,
		events:  make(chan Event, sendBuffer),
		done:    make(chan struct{}),
		closing: make(chan struct{}),
		logger:  logger,
	}

	go s.read()
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	return s, nil
}

// Events delivers every decoded event in arrival order
func (s *Subscription) Events() <-chan Event {
	return s.events
}

// Close ends the subscription. Events still buffered are delivered before
// the channel closes; events nobody has room for are dropped.
func (s *Subscription) Close() error {
	err := s.conn.Close()
	s.closeOnce.Do(func() { close(s.closing) })
	return err
}

func (s *Subscription) read() {
	defer close(s.done)
	defer close(s.events)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		e, err := Decode(data)
		if err != nil {
			s.logger.Warn("Ignoring malformed event", slog.Any("error", err))
			continue
		}
		select {
		case s.events <- e:
		case <-s.closing:
			return
		}
	}
}
