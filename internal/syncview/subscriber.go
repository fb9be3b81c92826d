package syncview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"markhub/internal/bookmark/model"
	"markhub/pkg/logger"
	"markhub/socket"

	"github.com/gorilla/websocket"
)

const (
	fetchTimeout    = 10 * time.Second
	initialBackoff  = time.Second
	maxBackoff      = 30 * time.Second
	errorBufferSize = 8
)

// Subscriber keeps a View live: it seeds it with one full fetch over the
// REST API, then feeds it change events from the websocket subscription,
// reconnecting with backoff when the feed drops. Feed interruptions are
// surfaced on Errors as non-fatal notices; the last-known list is kept.
type Subscriber struct {
	BaseURL string // http(s) origin of the server, no trailing slash
	Token   string
	HTTP    *http.Client
	View    *View

	// Errors receives fetch failures and "sync interrupted" notices. Reads
	// are optional; sends never block.
	Errors chan error
}

func NewSubscriber(baseURL, token string, view *View) *Subscriber {
	return &Subscriber{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: fetchTimeout},
		View:    view,
		Errors:  make(chan error, errorBufferSize),
	}
}

// Run seeds the view and consumes the change feed until ctx is cancelled,
// then detaches the view. Meant to be called as a goroutine.
func (s *Subscriber) Run(ctx context.Context) {
	records, err := s.fetchList(ctx)
	if err != nil {
		// Go Live anyway with an empty list; the caller decides whether to
		// retry by restarting the subscriber.
		s.View.Seed(nil)
		s.report(fmt.Errorf("initial fetch failed: %w", err))
	} else {
		s.View.Seed(records)
	}

	backoff := initialBackoff
	for ctx.Err() == nil {
		connected, err := s.consume(ctx)
		if ctx.Err() != nil {
			break
		}
		if connected {
			backoff = initialBackoff
		}
		s.report(fmt.Errorf("sync interrupted: %w", err))

		select {
		case <-ctx.Done():
		case <-time.After(backoff):
		}
		if backoff < maxBackoff {
			backoff *= 2
		}
	}

	s.View.Detach()
}

// consume dials the feed and applies events until the connection drops.
// Returns whether the dial succeeded, and the terminating error.
func (s *Subscriber) consume(ctx context.Context) (bool, error) {
	wsURL := "ws" + strings.TrimPrefix(s.BaseURL, "http") + "/ws?token=" + s.Token

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return false, err
	}
	defer conn.Close()

	// Close the connection when the context ends so ReadJSON unblocks.
	readDone := make(chan struct{})
	defer close(readDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-readDone:
		}
	}()

	for {
		var ev socket.ChangeEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return true, err
		}
		// Applying synchronously preserves delivery order for this
		// subscription.
		s.View.Apply(ev)
	}
}

func (s *Subscriber) fetchList(ctx context.Context) ([]model.Bookmark, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/api/bookmarks", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.Token)

	resp, err := s.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list fetch returned status %d", resp.StatusCode)
	}

	var records []model.Bookmark
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Subscriber) report(err error) {
	logger.Sugar.Warnf("Subscriber: %v", err)
	select {
	case s.Errors <- err:
	default:
	}
}
