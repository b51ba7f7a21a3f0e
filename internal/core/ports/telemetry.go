package ports

import (
	"context"
	"time"
)

type Metrics interface {
	MintDispatched(ctx context.Context, accepted bool)
	TransferSubmitted(ctx context.Context, kind string, ok bool)
	PipelineDuration(ctx context.Context, d time.Duration)
}
