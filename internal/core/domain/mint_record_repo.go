package domain

import "context"

type MintRecordRepo interface {
	Upsert(ctx context.Context, record MintRecord) error
	Get(ctx context.Context, requestId string) (*MintRecord, error)
	GetByStatus(ctx context.Context, status MintStatus) ([]MintRecord, error)
	Close()
}
