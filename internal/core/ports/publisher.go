package ports

import (
	"context"

	"github.com/beastmint/mintd/internal/core/domain"
)

// ContentPublisher pins content to a content-addressed store. The returned
// content id is whatever the store computed.
type ContentPublisher interface {
	Publish(ctx context.Context, data []byte, displayName string) (*domain.PublishedAsset, error)
	PublishJSON(ctx context.Context, document any, name string) (*domain.PublishedAsset, error)
}
