package domain

import (
	"fmt"
	"strings"
	"time"
)

type MintStatus string

const (
	MintStatusInQueue MintStatus = "in_queue"
	MintStatusMinted  MintStatus = "minted"
	MintStatusFailed  MintStatus = "failed"
)

func (s MintStatus) IsFinal() bool {
	return s == MintStatusMinted || s == MintStatusFailed
}

// MintRequest is the payload sent to the marketplace. RequestId is the
// idempotency key: retries of the same logical mint must reuse it.
type MintRequest struct {
	RequestId      string
	OwnerAddress   string
	Name           string
	Description    string
	ImageReference string
	Traits         []Trait
}

type MintRecord struct {
	RequestId      string
	Status         MintStatus
	Name           string
	Description    string
	ImageReference string
	OwnerAddress   string
	Traits         []Trait
	NftAddress     string
	NftIndex       *int64
	MarketplaceUrl string
	CreatedAt      int64
	UpdatedAt      int64
}

func NewMintRecord(req MintRequest) *MintRecord {
	now := time.Now().Unix()
	return &MintRecord{
		RequestId:      req.RequestId,
		Status:         MintStatusInQueue,
		Name:           req.Name,
		Description:    req.Description,
		ImageReference: req.ImageReference,
		OwnerAddress:   req.OwnerAddress,
		Traits:         req.Traits,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func (r *MintRecord) Fail() {
	r.Status = MintStatusFailed
	r.UpdatedAt = time.Now().Unix()
}

// Merge applies whatever the marketplace told us about the item. Both the
// top level and a nested "data" object are inspected since the marketplace
// wraps some responses.
func (r *MintRecord) Merge(response map[string]any) {
	if len(response) <= 0 {
		return
	}
	fields := response
	if data, ok := response["data"].(map[string]any); ok {
		fields = data
	}

	if addr := firstString(fields, "address", "nftAddress", "nft_address"); addr != "" {
		r.NftAddress = addr
	}
	if index, ok := firstInt(fields, "index", "nftIndex", "nft_index"); ok {
		r.NftIndex = &index
	}
	if url := firstString(fields, "url", "marketplaceUrl"); url != "" {
		r.MarketplaceUrl = url
	}
	if status := firstString(fields, "status"); status != "" {
		r.Status = ParseMarketplaceStatus(status)
	}
	r.UpdatedAt = time.Now().Unix()
}

// ParseMarketplaceStatus maps marketplace item states to MintStatus. Unknown
// states are treated as still queued.
func ParseMarketplaceStatus(status string) MintStatus {
	switch strings.ToLower(status) {
	case "ready", "minted", "success", "done", "complete", "completed":
		return MintStatusMinted
	case "error", "failed", "fail", "cancelled", "canceled", "rejected":
		return MintStatusFailed
	default:
		return MintStatusInQueue
	}
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if v, ok := m[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func firstInt(m map[string]any, keys ...string) (int64, bool) {
	for _, k := range keys {
		switch v := m[k].(type) {
		case float64:
			return int64(v), true
		case int:
			return int64(v), true
		case int64:
			return v, true
		case string:
			var i int64
			if _, err := fmt.Sscan(v, &i); err == nil {
				return i, true
			}
		}
	}
	return 0, false
}
