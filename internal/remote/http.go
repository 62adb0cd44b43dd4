package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/moneyfold/backend/internal/types"
	"github.com/rs/zerolog/log"
)

// HTTPStore talks to the remote store over its JSON HTTP API and receives
// change notifications over a websocket.
type HTTPStore struct {
	BaseURL string
	Token   string

	// Timeout bounds each individual request. Zero means no timeout.
	Timeout time.Duration

	Client *http.Client
}

var _ Store = (*HTTPStore)(nil)

// NewHTTPStore returns a store client for the given base URL.
func NewHTTPStore(baseURL, token string) *HTTPStore {
	return &HTTPStore{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		Timeout: 15 * time.Second,
		Client:  &http.Client{},
	}
}

func (s *HTTPStore) Create(ctx context.Context, userID uuid.UUID, entityType string, id uuid.UUID, payload json.RawMessage) error {
	return s.do(ctx, http.MethodPost, s.entityURL(userID, entityType, id), payload, nil)
}

func (s *HTTPStore) Update(ctx context.Context, userID uuid.UUID, entityType string, id uuid.UUID, payload json.RawMessage) error {
	return s.do(ctx, http.MethodPut, s.entityURL(userID, entityType, id), payload, nil)
}

func (s *HTTPStore) Delete(ctx context.Context, userID uuid.UUID, entityType string, id uuid.UUID) error {
	return s.do(ctx, http.MethodDelete, s.entityURL(userID, entityType, id), nil, nil)
}

func (s *HTTPStore) ListByUser(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	var snapshot Snapshot
	err := s.do(ctx, http.MethodGet, fmt.Sprintf("%s/users/%s", s.BaseURL, userID), nil, &snapshot)
	return snapshot, err
}

func (s *HTTPStore) ListByMonth(ctx context.Context, userID uuid.UUID, month types.Month) (Snapshot, error) {
	var snapshot Snapshot
	err := s.do(ctx, http.MethodGet, fmt.Sprintf("%s/users/%s?month=%s", s.BaseURL, userID, month), nil, &snapshot)
	return snapshot, err
}

// Subscribe opens the change-notification stream. Decoded snapshots are
// delivered on the returned channel until the stream breaks or the context
// is cancelled, then the channel is closed. Reconnecting is the caller's
// job, it is coupled to the connectivity state.
func (s *HTTPStore) Subscribe(ctx context.Context, userID uuid.UUID) (<-chan Snapshot, error) {
	wsURL, err := s.websocketURL(userID)
	if err != nil {
		return nil, err
	}

	header := http.Header{}
	if s.Token != "" {
		header.Set("Authorization", "Bearer "+s.Token)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL, header)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return nil, fmt.Errorf("subscribing to change notifications failed: %w", err)
	}

	events := make(chan Snapshot)
	go func() {
		defer close(events)
		defer conn.Close()

		// Close the connection when the context ends so that ReadJSON
		// returns.
		stop := context.AfterFunc(ctx, func() {
			_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			conn.Close()
		})
		defer stop()

		for {
			var snapshot Snapshot
			err := conn.ReadJSON(&snapshot)
			if err != nil {
				if ctx.Err() == nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Warn().Err(err).Msg("change notification stream broke")
				}
				return
			}

			select {
			case events <- snapshot:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events, nil
}

func (s *HTTPStore) entityURL(userID uuid.UUID, entityType string, id uuid.UUID) string {
	return fmt.Sprintf("%s/users/%s/%s/%s", s.BaseURL, userID, entityType, id)
}

func (s *HTTPStore) websocketURL(userID uuid.UUID) (string, error) {
	u, err := url.Parse(fmt.Sprintf("%s/users/%s/events", s.BaseURL, userID))
	if err != nil {
		return "", err
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	}

	return u.String(), nil
}

func (s *HTTPStore) do(ctx context.Context, method, rawURL string, payload json.RawMessage, out any) error {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	if s.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.Token)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		message, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(message))}
	}

	if out != nil {
		err = json.NewDecoder(resp.Body).Decode(out)
		if err != nil {
			return fmt.Errorf("decoding remote response failed: %w", err)
		}
	}

	return nil
}
