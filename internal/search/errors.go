package search

import (
	"context"
	"errors"
	"strings"

	"github.com/go-rod/rod/lib/cdp"
)

// failureHint classifies a search error for the log line.
func failureHint(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out"):
		return "navigation or element wait timed out; the engine may be slow or blocking automated traffic"
	case strings.Contains(msg, "target closed") || strings.Contains(msg, "session closed") || strings.Contains(msg, "browser has disconnected"):
		return "browser or page closed unexpectedly"
	case isProtocolError(err, msg):
		return "browser protocol connection error"
	case errors.Is(err, ErrBrowserInit):
		return "browser could not be started"
	default:
		return ""
	}
}

func isProtocolError(err error, msg string) bool {
	var cdpErr *cdp.Error
	if errors.As(err, &cdpErr) {
		return true
	}
	return strings.Contains(msg, "protocol error") ||
		strings.Contains(msg, "websocket") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset")
}
