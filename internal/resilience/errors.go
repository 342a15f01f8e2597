package resilience

import (
	"context"
	"errors"
	"net"
	"strings"
	"syscall"
)

// Error kinds reported in failure logs.
const (
	KindTimeout   = "timeout"
	KindCanceled  = "canceled"
	KindTransient = "transient"
	KindPermanent = "permanent"
)

// IsTransient reports whether err looks like a network or upstream hiccup:
// timeouts, connection resets, DNS failures.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	if errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNABORTED) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection reset by peer",
		"broken pipe",
		"temporary failure in name resolution",
		"no such host",
		"i/o timeout",
		"unexpected status 429",
		"unexpected status 5",
	} {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}

// ClassifyError names the kind of a stage failure for logging.
func ClassifyError(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, context.Canceled):
		return KindCanceled
	case IsTransient(err):
		return KindTransient
	default:
		return KindPermanent
	}
}
