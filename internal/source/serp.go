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

// serpAPIBase is the search-result snippet service endpoint. Declared as a
// var so tests can substitute an httptest server.
var serpAPIBase = "https://serp.signal-providers.net/v1/search"

// SERPAdapter queries the search-result snippet service. Result titles
// feed the suggestion pool and result hostnames become topic hints.
type SERPAdapter struct {
	Client    *http.Client
	BaseURL   string
	APIKey    string
	UserAgent string
}

// Type returns the source type identifier.
func (a *SERPAdapter) Type() types.SourceType { return types.SourceSERP }

func (a *SERPAdapter) endpoint() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	return serpAPIBase
}

// SERP API JSON structures.
type serpResponse struct {
	Results []serpResult `json:"results"`
}

type serpResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Fetch requests search-result snippets for the query.
func (a *SERPAdapter) Fetch(ctx context.Context, query types.Query) types.SourceResult {
	started := time.Now()

	params := url.Values{"q": {query.Normalized}}
	if query.Locale != "" {
		params.Set("gl", query.Locale)
	}

	code, body, err := get(ctx, a.Client, a.endpoint()+"?"+params.Encode(), a.UserAgent, a.APIKey)
	if err != nil {
		return failure(a.Type(), started, err)
	}
	if code != http.StatusOK {
		return statusFailure(a.Type(), started, code)
	}

	var sr serpResponse
	if err := json.Unmarshal(body, &sr); err != nil {
		return malformed(a.Type(), started, err)
	}

	payload := types.SignalPayload{}
	seenHosts := make(map[string]bool)
	for _, r := range sr.Results {
		if title := strings.TrimSpace(r.Title); title != "" {
			payload.Suggestions = append(payload.Suggestions, title)
		}
		if host := hostOf(r.URL); host != "" && !seenHosts[host] {
			seenHosts[host] = true
			payload.Topics = append(payload.Topics, host)
		}
	}

	return success(a.Type(), started, payload)
}

// Probe issues a minimal request to check provider liveness.
func (a *SERPAdapter) Probe(ctx context.Context) error {
	code, _, err := get(ctx, a.Client, a.endpoint()+"?q=a", a.UserAgent, a.APIKey)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("probe returned HTTP %d", code)
	}
	return nil
}

// hostOf extracts the hostname from a result URL, without a www. prefix.
func hostOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(u.Host, "www.")
}
