package remote_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/moneyfold/backend/internal/remote"
	"github.com/stretchr/testify/assert"
)

func TestIsNetworkError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		network bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("something broke"), false},
		{"dial failure", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"wrapped dial failure", fmt.Errorf("pushing: %w", &net.OpError{Op: "dial", Err: errors.New("connection refused")}), true},
		{"context deadline", context.DeadlineExceeded, true},
		{"context canceled", context.Canceled, true},
		{"websocket close", &websocket.CloseError{Code: websocket.CloseAbnormalClosure}, true},
		{"status 500", remote.StatusError{Code: 500}, true},
		{"status 503", remote.StatusError{Code: 503}, true},
		{"status 408", remote.StatusError{Code: 408}, true},
		{"status 429", remote.StatusError{Code: 429}, true},
		{"status 400", remote.StatusError{Code: 400}, false},
		{"status 403", remote.StatusError{Code: 403}, false},
		{"status 404", remote.StatusError{Code: 404}, false},
		{"status 409", remote.StatusError{Code: 409}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.network, remote.IsNetworkError(tt.err))
		})
	}
}

func TestStatusError(t *testing.T) {
	assert.Equal(t, "remote store returned status 502", remote.StatusError{Code: 502}.Error())
	assert.Equal(t, "remote store returned status 403: session expired", remote.StatusError{Code: 403, Message: "session expired"}.Error())
}
