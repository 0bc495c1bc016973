// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source implements the adapters for the external signal providers
// and the registry that caches one adapter instance per source type.
//
// Each adapter translates a normalized query into a provider-specific
// request, performs exactly one call, and maps the response (or failure)
// into a canonical SourceResult. A timeout mid-call becomes a
// timeout-status result, never a panic or an error escaping to the engine;
// retry policy belongs to the engine.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Aadilmalik70/signal-engine/internal/httputil"
	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

// Adapter fetches signal data from one external provider.
type Adapter interface {
	// Type returns the source type this adapter serves.
	Type() types.SourceType

	// Fetch performs one provider call for the query. The returned result
	// always carries the adapter's source type and a status; failures are
	// classified, never returned as errors.
	Fetch(ctx context.Context, query types.Query) types.SourceResult

	// Probe performs a lightweight liveness call against the provider.
	Probe(ctx context.Context) error
}

// failure builds an error-or-timeout SourceResult for st. Timeouts take
// precedence over classification.
func failure(st types.SourceType, started time.Time, err error) types.SourceResult {
	res := types.SourceResult{
		Source:   st,
		Latency:  time.Since(started),
		Err:      err.Error(),
		Attempts: 1,
	}
	if httputil.IsTimeout(err) {
		res.Status = types.StatusTimeout
		return res
	}
	res.Status = types.StatusError
	res.ErrorKind = httputil.ClassifyError(err)
	return res
}

// statusFailure builds an error SourceResult for a non-200 response.
func statusFailure(st types.SourceType, started time.Time, code int) types.SourceResult {
	return types.SourceResult{
		Source:    st,
		Status:    types.StatusError,
		Latency:   time.Since(started),
		ErrorKind: httputil.ClassifyStatus(code),
		Err:       fmt.Sprintf("provider returned HTTP %d", code),
		Attempts:  1,
	}
}

// malformed builds an error SourceResult for an undecodable response body.
func malformed(st types.SourceType, started time.Time, err error) types.SourceResult {
	return types.SourceResult{
		Source:    st,
		Status:    types.StatusError,
		Latency:   time.Since(started),
		ErrorKind: types.ErrMalformed,
		Err:       fmt.Sprintf("decoding response: %v", err),
		Attempts:  1,
	}
}

// success marshals payload into a SourceResult. A payload that cannot be
// marshaled is a programming error; it is reported as malformed rather
// than panicking.
func success(st types.SourceType, started time.Time, payload types.SignalPayload) types.SourceResult {
	raw, err := json.Marshal(payload)
	if err != nil {
		return malformed(st, started, err)
	}
	return types.SourceResult{
		Source:   st,
		Status:   types.StatusSuccess,
		Payload:  raw,
		Latency:  time.Since(started),
		Attempts: 1,
	}
}

// get issues a GET with the shared headers and returns the response body.
// The caller's context carries the per-task deadline.
func get(ctx context.Context, client *http.Client, url, userAgent, apiKey string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if apiKey != "" {
		req.Header.Set("X-Api-Key", apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, body, nil
}
