package resilience

import (
	"context"
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain", errors.New("invalid input: missing field"), false},
		{"connection reset", fmt.Errorf("write tcp: %w", syscall.ECONNRESET), true},
		{"connection refused", fmt.Errorf("dial: %w", syscall.ECONNREFUSED), true},
		{"dns", errors.New("dial tcp: lookup llm.api.cloud.yandex.net: no such host"), true},
		{"rate limited", errors.New("yandexgpt: unexpected status 429: slow down"), true},
		{"server error", errors.New("yandexgpt: unexpected status 503: unavailable"), true},
		{"client error", errors.New("yandexgpt: unexpected status 400: bad request"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("send: %w", context.DeadlineExceeded), KindTimeout},
		{fmt.Errorf("send: %w", context.Canceled), KindCanceled},
		{errors.New("read: connection reset by peer"), KindTransient},
		{errors.New("unmarshal response"), KindPermanent},
	}
	for _, tt := range tests {
		if got := ClassifyError(tt.err); got != tt.want {
			t.Errorf("ClassifyError(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
