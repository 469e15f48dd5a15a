/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package azure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orien/buildlab/internal/model"
)

// countingCredential hands out a distinct token on every call
type countingCredential struct {
	mu     sync.Mutex
	calls  int
	scopes []string
	err    error
}

func (c *countingCredential) GetToken(_ context.Context, opts policy.TokenRequestOptions) (azcore.AccessToken, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return azcore.AccessToken{}, c.err
	}
	c.calls++
	c.scopes = append(c.scopes, opts.Scopes...)
	return azcore.AccessToken{Token: fmt.Sprintf("token-%d", c.calls), ExpiresOn: time.Now().Add(time.Hour)}, nil
}

type recordedRequest struct {
	method string
	path   string
	query  string
	auth   string
	body   map[string]any
}

type searchServer struct {
	*httptest.Server
	mu       sync.Mutex
	requests []recordedRequest
}

// newSearchServer replies with the given bodies in order
func newSearchServer(t *testing.T, responses ...string) *searchServer {
	t.Helper()
	s := &searchServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			auth:   r.Header.Get("Authorization"),
		}
		if r.Method == http.MethodPost {
			_ = json.NewDecoder(r.Body).Decode(&rec.body)
		}
		s.mu.Lock()
		n := len(s.requests)
		s.requests = append(s.requests, rec)
		s.mu.Unlock()

		if n >= len(responses) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(responses[n]))
	}))
	t.Cleanup(s.Close)
	return s
}

var testQuery = model.LogQuery{
	SubscriptionID: "sub-1",
	GroupName:      "lab",
	WorkspaceName:  "labws",
	Query:          "Heartbeat | take 5",
}

const searchPath = "/subscriptions/sub-1/resourceGroups/lab/providers/Microsoft.OperationalInsights/workspaces/labws/search"

func newTestLogClient(server *searchServer, cred azcore.TokenCredential) (*LogAnalyticsClient, *[]time.Duration) {
	client := NewLogAnalyticsClientWithTransport(server.URL, cred, server.Client().Transport)
	client.SetClock(func() time.Time { return time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC) })
	var sleeps []time.Duration
	client.SetSleeper(func(_ context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	})
	return client, &sleeps
}

func TestLogAnalyticsClient_Search_PendingThenReady(t *testing.T) {
	server := newSearchServer(t,
		`{"__metadata":{"RequestId":"req-42","Status":"Pending"},"value":[]}`,
		`{"__metadata":{"RequestId":"req-42","Status":"Successful"},"value":[{"Computer":"builder"}]}`,
	)
	cred := &countingCredential{}
	client, sleeps := newTestLogClient(server, cred)

	result, err := client.Search(context.Background(), testQuery)

	require.NoError(t, err)
	assert.Equal(t, "Successful", result.Status)
	assert.Equal(t, []map[string]any{{"Computer": "builder"}}, result.Values)
	assert.Equal(t, []time.Duration{time.Second}, *sleeps)

	require.Len(t, server.requests, 2)
	assert.Equal(t, http.MethodPost, server.requests[0].method)
	assert.Equal(t, searchPath, server.requests[0].path)
	assert.Equal(t, "api-version=2015-03-20", server.requests[0].query)
	assert.Equal(t, http.MethodGet, server.requests[1].method)
	assert.Equal(t, searchPath+"/req-42", server.requests[1].path)
	assert.Equal(t, "api-version=2015-03-20", server.requests[1].query)
}

func TestLogAnalyticsClient_Search_FreshTokenPerRequest(t *testing.T) {
	server := newSearchServer(t,
		`{"__metadata":{"RequestId":"r","Status":"Pending"}}`,
		`{"__metadata":{"RequestId":"r","Status":"Pending"}}`,
		`{"__metadata":{"RequestId":"r","Status":"Successful"},"value":[]}`,
	)
	cred := &countingCredential{}
	client, sleeps := newTestLogClient(server, cred)

	_, err := client.Search(context.Background(), testQuery)

	require.NoError(t, err)
	assert.Equal(t, 3, cred.calls)
	assert.Equal(t, []string{ManagementScope, ManagementScope, ManagementScope}, cred.scopes)
	assert.Equal(t, "Bearer token-1", server.requests[0].auth)
	assert.Equal(t, "Bearer token-2", server.requests[1].auth)
	assert.Equal(t, "Bearer token-3", server.requests[2].auth)
	assert.Len(t, *sleeps, 2)
}

func TestLogAnalyticsClient_Search_DefaultWindowAndTop(t *testing.T) {
	server := newSearchServer(t, `{"__metadata":{"RequestId":"r","Status":"Successful"},"value":[]}`)
	client, sleeps := newTestLogClient(server, &countingCredential{})

	_, err := client.Search(context.Background(), testQuery)

	require.NoError(t, err)
	assert.Empty(t, *sleeps)
	body := server.requests[0].body
	assert.Equal(t, float64(150), body["top"])
	assert.Equal(t, "Heartbeat | take 5", body["query"])
	assert.Equal(t, "2025-03-13T12:00:00Z", body["start"])
	assert.Equal(t, "2025-03-14T12:00:00Z", body["end"])
}

func TestLogAnalyticsClient_Search_WindowComputedPerCall(t *testing.T) {
	server := newSearchServer(t,
		`{"__metadata":{"RequestId":"r","Status":"Successful"}}`,
		`{"__metadata":{"RequestId":"r","Status":"Successful"}}`,
	)
	client, _ := newTestLogClient(server, &countingCredential{})
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	client.SetClock(func() time.Time { return now })

	_, err := client.Search(context.Background(), testQuery)
	require.NoError(t, err)
	now = now.Add(time.Hour)
	_, err = client.Search(context.Background(), testQuery)
	require.NoError(t, err)

	assert.Equal(t, "2025-03-14T12:00:00Z", server.requests[0].body["end"])
	assert.Equal(t, "2025-03-14T13:00:00Z", server.requests[1].body["end"])
}

func TestLogAnalyticsClient_Search_ExplicitWindowAndTop(t *testing.T) {
	server := newSearchServer(t, `{"__metadata":{"RequestId":"r","Status":"Successful"}}`)
	client, _ := newTestLogClient(server, &countingCredential{})
	query := testQuery
	query.Top = 10
	query.Start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	query.End = time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	_, err := client.Search(context.Background(), query)

	require.NoError(t, err)
	body := server.requests[0].body
	assert.Equal(t, float64(10), body["top"])
	assert.Equal(t, "2025-01-01T00:00:00Z", body["start"])
	assert.Equal(t, "2025-01-02T00:00:00Z", body["end"])
}

func TestLogAnalyticsClient_Search_HalfOpenWindow(t *testing.T) {
	tests := []struct {
		name      string
		start     time.Time
		end       time.Time
		wantStart string
		wantEnd   string
	}{
		{
			name:      "end only",
			end:       time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			wantStart: "2025-01-01T00:00:00Z",
			wantEnd:   "2025-01-02T00:00:00Z",
		},
		{
			name:      "start only",
			start:     time.Date(2025, 3, 14, 6, 0, 0, 0, time.UTC),
			wantStart: "2025-03-14T06:00:00Z",
			wantEnd:   "2025-03-14T12:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newSearchServer(t, `{"__metadata":{"RequestId":"r","Status":"Successful"}}`)
			client, _ := newTestLogClient(server, &countingCredential{})
			query := testQuery
			query.Start = tt.start
			query.End = tt.end

			_, err := client.Search(context.Background(), query)

			require.NoError(t, err)
			body := server.requests[0].body
			assert.Equal(t, tt.wantStart, body["start"])
			assert.Equal(t, tt.wantEnd, body["end"])
		})
	}
}

func TestLogAnalyticsClient_Search_StartAfterEnd(t *testing.T) {
	server := newSearchServer(t)
	client, _ := newTestLogClient(server, &countingCredential{})
	query := testQuery
	query.Start = time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)

	_, err := client.Search(context.Background(), query)

	assert.ErrorContains(t, err, "after it ends")
	assert.Empty(t, server.requests)
}

func TestLogAnalyticsClient_Search_PollsWithSubmittedRequestID(t *testing.T) {
	server := newSearchServer(t,
		`{"__metadata":{"RequestId":"req-42","Status":"Pending"}}`,
		`{"__metadata":{"Status":"Pending"}}`,
		`{"__metadata":{"Status":"Successful"},"value":[{"Computer":"builder"}]}`,
	)
	client, _ := newTestLogClient(server, &countingCredential{})

	result, err := client.Search(context.Background(), testQuery)

	require.NoError(t, err)
	require.Len(t, server.requests, 3)
	assert.Equal(t, searchPath+"/req-42", server.requests[1].path)
	assert.Equal(t, searchPath+"/req-42", server.requests[2].path)
	assert.Equal(t, "req-42", result.SearchID)
	assert.Equal(t, "Successful", result.Status)
}

func TestLogAnalyticsClient_Search_PendingWithoutRequestID(t *testing.T) {
	server := newSearchServer(t, `{"__metadata":{"Status":"Pending"}}`)
	client, sleeps := newTestLogClient(server, &countingCredential{})

	_, err := client.Search(context.Background(), testQuery)

	assert.ErrorContains(t, err, "returned no request id")
	assert.Len(t, server.requests, 1)
	assert.Empty(t, *sleeps)
}

func TestLogAnalyticsClient_Search_SubmissionFailureIsImmediate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":"AuthorizationFailed","message":"no access"}}`))
	}))
	defer server.Close()
	client := NewLogAnalyticsClientWithTransport(server.URL, &countingCredential{}, server.Client().Transport)

	_, err := client.Search(context.Background(), testQuery)

	var respErr *azcore.ResponseError
	require.ErrorAs(t, err, &respErr)
	assert.Equal(t, http.StatusForbidden, respErr.StatusCode)
	assert.Equal(t, "AuthorizationFailed", respErr.ErrorCode)
}

func TestLogAnalyticsClient_Search_TokenFailure(t *testing.T) {
	server := newSearchServer(t)
	client, _ := newTestLogClient(server, &countingCredential{err: errors.New("bad secret")})

	_, err := client.Search(context.Background(), testQuery)

	assert.ErrorContains(t, err, "bad secret")
	assert.Empty(t, server.requests)
}

func TestLogAnalyticsClient_Search_SleeperCancellation(t *testing.T) {
	server := newSearchServer(t, `{"__metadata":{"RequestId":"r","Status":"Pending"}}`)
	client, _ := newTestLogClient(server, &countingCredential{})
	client.SetSleeper(func(context.Context, time.Duration) error { return context.Canceled })

	_, err := client.Search(context.Background(), testQuery)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, server.requests, 1)
}

func TestSleepContext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sleepContext(ctx, time.Hour)

	assert.ErrorIs(t, err, context.Canceled)
}
