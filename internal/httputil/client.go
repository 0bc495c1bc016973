// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared by the source adapters:
// client construction and failure classification. Retry policy lives in the
// engine, not here; adapters issue each request exactly once.
package httputil

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

// NewClient returns an HTTP client configured from cfg. The client timeout
// is a transport-level backstop; callers pass per-request deadlines via
// context.
func NewClient(cfg types.HTTPConfig) *http.Client {
	return &http.Client{Timeout: cfg.Timeout}
}

// IsTimeout reports whether err represents a deadline or timeout, from
// either a context or the net stack.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// ClassifyError maps a transport-level error to an ErrorKind. Timeouts are
// not errors in the taxonomy; check IsTimeout first.
func ClassifyError(err error) types.ErrorKind {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return types.ErrUnreachable
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return types.ErrUnreachable
	}
	return types.ErrTransient
}

// ClassifyStatus maps a non-200 HTTP status code to an ErrorKind: 429 is
// rate_limited, 5xx is transient (retryable by the engine), anything else
// means the provider rejected the request and is treated as unreachable.
func ClassifyStatus(code int) types.ErrorKind {
	switch {
	case code == http.StatusTooManyRequests:
		return types.ErrRateLimited
	case code >= 500:
		return types.ErrTransient
	default:
		return types.ErrUnreachable
	}
}
