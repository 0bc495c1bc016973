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

// questionsAPIBase is the related-questions service endpoint. Declared as
// a var so tests can substitute an httptest server.
var questionsAPIBase = "https://questions.signal-providers.net/v1/related"

// QuestionsAdapter queries the related-questions service.
type QuestionsAdapter struct {
	Client    *http.Client
	BaseURL   string
	APIKey    string
	UserAgent string
}

// Type returns the source type identifier.
func (a *QuestionsAdapter) Type() types.SourceType { return types.SourceRelatedQuestions }

func (a *QuestionsAdapter) endpoint() string {
	if a.BaseURL != "" {
		return a.BaseURL
	}
	return questionsAPIBase
}

// Related-questions API JSON structures.
type questionsResponse struct {
	Questions []questionEntry `json:"questions"`
	Related   []string        `json:"related_searches"`
}

type questionEntry struct {
	Question string `json:"question"`
	Topic    string `json:"topic"`
}

// Fetch requests related questions for the query. Related-search strings,
// when the provider includes them, are folded into the suggestion list.
func (a *QuestionsAdapter) Fetch(ctx context.Context, query types.Query) types.SourceResult {
	started := time.Now()

	params := url.Values{"query": {query.Normalized}}
	if query.Locale != "" {
		params.Set("locale", query.Locale)
	}

	code, body, err := get(ctx, a.Client, a.endpoint()+"?"+params.Encode(), a.UserAgent, a.APIKey)
	if err != nil {
		return failure(a.Type(), started, err)
	}
	if code != http.StatusOK {
		return statusFailure(a.Type(), started, code)
	}

	var qr questionsResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return malformed(a.Type(), started, err)
	}

	payload := types.SignalPayload{}
	for _, entry := range qr.Questions {
		if q := strings.TrimSpace(entry.Question); q != "" {
			payload.Questions = append(payload.Questions, q)
		}
		if topic := strings.TrimSpace(entry.Topic); topic != "" {
			payload.Topics = append(payload.Topics, topic)
		}
	}
	for _, rs := range qr.Related {
		if s := strings.TrimSpace(rs); s != "" {
			payload.Suggestions = append(payload.Suggestions, s)
		}
	}

	return success(a.Type(), started, payload)
}

// Probe issues a minimal request to check provider liveness.
func (a *QuestionsAdapter) Probe(ctx context.Context) error {
	code, _, err := get(ctx, a.Client, a.endpoint()+"?query=a", a.UserAgent, a.APIKey)
	if err != nil {
		return err
	}
	if code != http.StatusOK {
		return fmt.Errorf("probe returned HTTP %d", code)
	}
	return nil
}
