package application

import (
	"context"
	"fmt"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/internal/core/ports"
)

// MintOutcome is Accepted with the marketplace body, or Failed with the
// status code and raw body of the rejection.
type MintOutcome struct {
	Accepted   bool
	StatusCode int
	Response   map[string]any
	RawBody    string
}

type MintDispatcher struct {
	marketplace ports.Marketplace
}

func NewMintDispatcher(marketplace ports.Marketplace) *MintDispatcher {
	return &MintDispatcher{marketplace}
}

// Dispatch returns an error only when the marketplace could not be reached.
func (d *MintDispatcher) Dispatch(ctx context.Context, req domain.MintRequest) (*MintOutcome, error) {
	payload := ports.MintPayload{
		RequestId:    req.RequestId,
		OwnerAddress: req.OwnerAddress,
		Name:         req.Name,
		Description:  req.Description,
		Image:        req.ImageReference,
	}
	if len(req.Traits) > 0 {
		payload.Attributes = req.Traits
	}

	resp, err := d.marketplace.Mint(ctx, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to dispatch mint request %s: %w", req.RequestId, err)
	}

	outcome := &MintOutcome{
		Accepted:   resp.IsSuccess(),
		StatusCode: resp.StatusCode,
		RawBody:    resp.RawBody,
	}
	if outcome.Accepted {
		outcome.Response = resp.Body
	}
	return outcome, nil
}
