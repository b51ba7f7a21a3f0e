package application

import (
	"context"
	"maps"
	"net/http"

	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/beastmint/mintd/pkg/errors"
)

type MintStatusTracker struct {
	marketplace ports.Marketplace
}

func NewMintStatusTracker(marketplace ports.Marketplace) *MintStatusTracker {
	return &MintStatusTracker{marketplace}
}

// Status performs a single status read. The reply starts from success and
// requestId, then the marketplace body is laid over it, so a marketplace
// field with either name wins.
func (t *MintStatusTracker) Status(ctx context.Context, requestId string) (map[string]any, error) {
	resp, err := t.marketplace.MintStatus(ctx, requestId)
	if err != nil {
		return nil, errors.MINT_STATUS_CHECK_FAILED.Wrap(err).
			WithMetadata(errors.StatusCodeMetadata{})
	}
	if !resp.IsSuccess() {
		return nil, errors.MINT_STATUS_CHECK_FAILED.New(
			"failed to check mint status: %d", resp.StatusCode,
		).WithMetadata(errors.StatusCodeMetadata{StatusCode: resp.StatusCode, Body: resp.RawBody})
	}

	status := map[string]any{"success": true, "requestId": requestId}
	maps.Copy(status, resp.Body)
	return status, nil
}

func isNotFound(err error) bool {
	if !errors.Is(err, errors.MINT_STATUS_CHECK_FAILED) {
		return false
	}
	typed, ok := err.(errors.TypedError[errors.StatusCodeMetadata])
	if !ok {
		return false
	}
	return typed.TypedMetadata().StatusCode == http.StatusNotFound
}
