package remote

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/gorilla/websocket"
)

// StatusError is a non-2xx response from the remote store.
type StatusError struct {
	Code    int
	Message string
}

func (e StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("remote store returned status %d", e.Code)
	}

	return fmt.Sprintf("remote store returned status %d: %s", e.Code, e.Message)
}

// IsNetworkError classifies an error from the remote store as transient.
//
// For these errors the optimistic local state is kept and the mutation is
// queued for retry. Everything else is semantic: the caller has to act, the
// optimistic state is reverted.
func IsNetworkError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		return true
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		switch statusErr.Code {
		case http.StatusRequestTimeout, http.StatusTooEarly, http.StatusTooManyRequests:
			return true
		}

		return statusErr.Code >= http.StatusInternalServerError
	}

	return false
}
