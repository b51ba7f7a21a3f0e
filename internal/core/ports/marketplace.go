package ports

import "context"

// MarketplaceResponse is a raw reply from the marketplace. Body is the JSON
// decoded payload, or {"raw": "<text>"} when the reply is not JSON.
type MarketplaceResponse struct {
	StatusCode int
	Body       map[string]any
	RawBody    string
}

func (r MarketplaceResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

type MintPayload struct {
	RequestId    string `json:"requestId"`
	OwnerAddress string `json:"ownerAddress"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	Attributes   any    `json:"attributes,omitempty"`
}

// Marketplace only returns an error when no HTTP response was obtained.
type Marketplace interface {
	Mint(ctx context.Context, payload MintPayload) (*MarketplaceResponse, error)
	MintStatus(ctx context.Context, requestId string) (*MarketplaceResponse, error)
}
