/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/go-logr/logr"

	"github.com/orien/buildlab/internal/model"
)

const (
	// DefaultManagementEndpoint is the public cloud Resource Manager endpoint
	DefaultManagementEndpoint = "https://management.azure.com"
	// ManagementScope is requested for every log search request
	ManagementScope = "https://management.azure.com/.default"

	logSearchAPIVersion = "2015-03-20"
	logSearchPollDelay  = time.Second
	searchStatusPending = "Pending"
)

// LogAnalyticsClient runs searches against a Log Analytics workspace
type LogAnalyticsClient struct {
	endpoint   string
	httpClient *http.Client
	now        func() time.Time
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewLogAnalyticsClient creates a client that authenticates every request with credential
func NewLogAnalyticsClient(credential azcore.TokenCredential) *LogAnalyticsClient {
	return NewLogAnalyticsClientWithTransport(DefaultManagementEndpoint, credential, http.DefaultTransport)
}

// NewLogAnalyticsClientWithTransport creates a client with a custom endpoint and transport (for testing)
func NewLogAnalyticsClientWithTransport(endpoint string, credential azcore.TokenCredential, base http.RoundTripper) *LogAnalyticsClient {
	return &LogAnalyticsClient{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{Transport: &bearerTokenRoundTripper{
			credential: credential,
			scope:      ManagementScope,
			base:       base,
		}},
		now:   time.Now,
		sleep: sleepContext,
	}
}

// SetClock allows injecting a fixed clock (for testing)
func (c *LogAnalyticsClient) SetClock(now func() time.Time) {
	c.now = now
}

// SetSleeper allows replacing the delay between polls (for testing)
func (c *LogAnalyticsClient) SetSleeper(sleep func(ctx context.Context, d time.Duration) error) {
	c.sleep = sleep
}

type searchRequest struct {
	Top   int       `json:"top"`
	Query string    `json:"query"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type searchResponse struct {
	Metadata struct {
		RequestID string `json:"RequestId"`
		Status    string `json:"Status"`
	} `json:"__metadata"`
	Value []map[string]any `json:"value"`
}

// Search submits the query and polls once a second while the search is pending
func (c *LogAnalyticsClient) Search(ctx context.Context, query model.LogQuery) (*model.LogSearchResult, error) {
	logger := logr.FromContextOrDiscard(ctx)

	body := searchRequest{
		Top:   query.Top,
		Query: query.Query,
		Start: query.Start,
		End:   query.End,
	}
	if body.Top <= 0 {
		body.Top = model.DefaultLogResultCount
	}
	// a missing bound is filled in: end defaults to now, start to end minus the window
	if body.End.IsZero() {
		body.End = c.now().UTC()
	}
	if body.Start.IsZero() {
		body.Start = body.End.Add(-model.DefaultLogWindow)
	}
	if body.Start.After(body.End) {
		return nil, fmt.Errorf("log search window starts at %s, after it ends at %s",
			body.Start.Format(time.RFC3339), body.End.Format(time.RFC3339))
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode log search: %w", err)
	}

	searchPath := c.searchPath(query)
	resp, err := c.do(ctx, http.MethodPost, searchPath, payload)
	if err != nil {
		return nil, err
	}

	// polls address the search by the id returned on submission
	searchID := resp.Metadata.RequestID
	for resp.Metadata.Status == searchStatusPending {
		if searchID == "" {
			return nil, fmt.Errorf("log search is pending but returned no request id")
		}
		logger.V(1).Info("log search pending", "requestId", searchID)
		if err := c.sleep(ctx, logSearchPollDelay); err != nil {
			return nil, err
		}
		resp, err = c.do(ctx, http.MethodGet, searchPath+"/"+url.PathEscape(searchID), nil)
		if err != nil {
			return nil, err
		}
	}

	return &model.LogSearchResult{
		SearchID: searchID,
		Status:   resp.Metadata.Status,
		Values:   resp.Value,
	}, nil
}

func (c *LogAnalyticsClient) searchPath(query model.LogQuery) string {
	return fmt.Sprintf("%s/subscriptions/%s/resourceGroups/%s/providers/Microsoft.OperationalInsights/workspaces/%s/search",
		c.endpoint,
		url.PathEscape(query.SubscriptionID),
		url.PathEscape(query.GroupName),
		url.PathEscape(query.WorkspaceName))
}

func (c *LogAnalyticsClient) do(ctx context.Context, method, path string, payload []byte) (*searchResponse, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, path+"?api-version="+logSearchAPIVersion, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build log search request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to run log search: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("log search failed: %w", runtime.NewResponseError(resp))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to parse log search response: %w", err)
	}
	return &out, nil
}

// bearerTokenRoundTripper requests a token for every request and adds it as a bearer header
type bearerTokenRoundTripper struct {
	credential azcore.TokenCredential
	scope      string
	base       http.RoundTripper
}

func (rt *bearerTokenRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	token, err := rt.credential.GetToken(req.Context(), policy.TokenRequestOptions{
		Scopes: []string{rt.scope},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get Azure token: %w", err)
	}

	reqClone := req.Clone(req.Context())
	reqClone.Header.Set("Authorization", "Bearer "+token.Token)
	return rt.base.RoundTrip(reqClone)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
