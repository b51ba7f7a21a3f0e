package ports

import "context"

type ChainClient interface {
	// GetSeqno returns 0 for wallets whose contract is not deployed yet.
	GetSeqno(ctx context.Context, address string) (uint32, error)
	GetBalance(ctx context.Context, address string) (uint64, error)
	SendBoc(ctx context.Context, boc []byte) error
}
