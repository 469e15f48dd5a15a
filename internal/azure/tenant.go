/*
Copyright © 2025 Buildlab Contributors
SPDX-License-Identifier: BSD-3-Clause
*/
package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// DefaultAuthorityHost is the public cloud identity endpoint
const DefaultAuthorityHost = "https://login.microsoftonline.com"

// TenantResolver translates a tenant name such as example.onmicrosoft.com
// into the tenant GUID using the unauthenticated OpenID discovery document
type TenantResolver struct {
	authorityHost string
	httpClient    *http.Client
}

// NewTenantResolver creates a resolver against the public cloud authority
func NewTenantResolver() *TenantResolver {
	return NewTenantResolverWithClient(DefaultAuthorityHost, http.DefaultClient)
}

// NewTenantResolverWithClient creates a resolver with a custom authority and HTTP client (for testing)
func NewTenantResolverWithClient(authorityHost string, httpClient *http.Client) *TenantResolver {
	return &TenantResolver{
		authorityHost: strings.TrimSuffix(authorityHost, "/"),
		httpClient:    httpClient,
	}
}

type openIDConfiguration struct {
	TokenEndpoint string `json:"token_endpoint"`
}

// Resolve returns the tenant GUID. A tenant that is already a GUID is returned
// without any network call.
func (r *TenantResolver) Resolve(ctx context.Context, tenant string) (string, error) {
	if id, err := uuid.Parse(tenant); err == nil {
		return id.String(), nil
	}

	logger := logr.FromContextOrDiscard(ctx)
	discoveryURL := fmt.Sprintf("%s/%s/.well-known/openid-configuration", r.authorityHost, url.PathEscape(tenant))
	logger.V(1).Info("discovering tenant", "tenant", tenant, "url", discoveryURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, discoveryURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build tenant discovery request: %w", err)
	}
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to discover tenant %q: %w", tenant, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to discover tenant %q: %w", tenant, runtime.NewResponseError(resp))
	}

	var doc openIDConfiguration
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to parse discovery document for tenant %q: %w", tenant, err)
	}

	id, err := tenantFromTokenEndpoint(doc.TokenEndpoint)
	if err != nil {
		return "", fmt.Errorf("failed to discover tenant %q: %w", tenant, err)
	}
	return id, nil
}

// tenantFromTokenEndpoint extracts the GUID from https://<authority>/<guid>/oauth2/...
func tenantFromTokenEndpoint(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid token endpoint %q: %w", endpoint, err)
	}
	segment, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	id, err := uuid.Parse(segment)
	if err != nil {
		return "", fmt.Errorf("token endpoint %q does not name a tenant id", endpoint)
	}
	return id.String(), nil
}
