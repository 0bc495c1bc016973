// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Aadilmalik70/signal-engine/pkg/types"
)

// autocompleteAPIBase is the suggestion service endpoint. Declared as a
// var so tests can substitute an httptest server.
var autocompleteAPIBase = "https://suggest.signal-providers.net/complete"

// AutocompleteAdapter queries the autocomplete/suggestion service. The
// provider speaks the common suggest wire format: a two-element JSON array
// of the echoed query and the suggestion list.
type AutocompleteAdapter struct {
	Client    *http.Client
	BaseURL   string
	APIKey    string
	UserAgent string
}

// Type returns the source type identifier.
func (a *AutocompleteAdapter) Type() types.SourceType { return types.SourceAutocomplete }

func (a *AutocompleteAdapter) endpoint() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	return autocompleteAPIBase
}

// Fetch requests suggestions for the query.
func (a *AutocompleteAdapter) Fetch(ctx context.Context, query types.Query) types.SourceResult {
	started := time.Now()

	params := url.Values{"q": {query.Normalized}}
	if query.Locale != "" {
		params.Set("hl", query.Locale)
	}

	code, body, err := get(ctx, a.Client, a.endpoint()+"?"+params.Encode(), a.UserAgent, a.APIKey)
	if err != nil {
		return failure(a.Type(), started, err)
	}
	if code != http.StatusOK {
		return statusFailure(a.Type(), started, code)
	}

	suggestions, err := parseSuggestList(body)
	if err != nil {
		return malformed(a.Type(), started, err)
	}

	return success(a.Type(), started, types.SignalPayload{Suggestions: suggestions})
}

// Probe issues a minimal suggestion request to check provider liveness.
func (a *AutocompleteAdapter) Probe(ctx context.Context) error {
	code, _, err := get(ctx, a.Client, a.endpoint()+"?q=a", a.UserAgent, a.APIKey)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("probe returned HTTP %d", code)
	}
	return nil
}

// parseSuggestList decodes the suggest wire format: [query, [s1, s2, ...]].
// Entries that are not strings are skipped; an array shorter than two
// elements is malformed.
func parseSuggestList(body []byte) ([]string, error) {
	var envelope []json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, err
	}
	if len(envelope) < 2 {
		return nil, fmt.Errorf("suggest envelope has %d elements, want 2", len(envelope))
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(envelope[1], &raw); err != nil {
		return nil, fmt.Errorf("suggestion list: %w", err)
	}

	var out []string
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err != nil {
			continue
		}
		if strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
