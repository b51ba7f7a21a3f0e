package getgems

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

	"github.com/beastmint/mintd/internal/core/ports"
	mintderrors "github.com/beastmint/mintd/pkg/errors"
)

const DefaultBaseUrl = "https://api.testnet.getgems.io/public-api"

type service struct {
	baseUrl       string
	collection    string
	authorization string
	httpClient    *http.Client
}

func NewService(baseUrl, collection, authorization string) (ports.Marketplace, error) {
	if len(collection) <= 0 {
		return nil, mintderrors.CONFIGURATION_MISSING.New("missing getgems collection").
			WithMetadata(mintderrors.ConfigMetadata{Field: "getgems-collection"})
	}
	if len(authorization) <= 0 {
		return nil, mintderrors.CONFIGURATION_MISSING.New("missing getgems authorization").
			WithMetadata(mintderrors.ConfigMetadata{Field: "getgems-authorization"})
	}
	if len(baseUrl) <= 0 {
		baseUrl = DefaultBaseUrl
	}
	return &service{
		baseUrl:       strings.TrimRight(baseUrl, "/"),
		collection:    collection,
		authorization: authorization,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

func (s *service) Mint(
	ctx context.Context, payload ports.MintPayload,
) (*ports.MarketplaceResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mint request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/minting/%s", s.baseUrl, url.PathEscape(s.collection))
	return s.do(ctx, http.MethodPost, endpoint, body)
}

func (s *service) MintStatus(
	ctx context.Context, requestId string,
) (*ports.MarketplaceResponse, error) {
	endpoint := fmt.Sprintf(
		"%s/minting/%s/%s", s.baseUrl, url.PathEscape(s.collection), url.PathEscape(requestId),
	)
	return s.do(ctx, http.MethodGet, endpoint, nil)
}

func (s *service) do(
	ctx context.Context, method, endpoint string, body []byte,
) (*ports.MarketplaceResponse, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("accept", "application/json")
	req.Header.Set("authorization", s.authorization)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("marketplace request failed: %w", err)
	}
	// nolint:errcheck
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read marketplace response: %w", err)
	}

	return &ports.MarketplaceResponse{
		StatusCode: resp.StatusCode,
		Body:       parseBody(raw),
		RawBody:    string(raw),
	}, nil
}

// parseBody keeps non JSON replies as {"raw": text}.
func parseBody(raw []byte) map[string]any {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil && body != nil {
		return body
	}
	return map[string]any{"raw": string(raw)}
}
