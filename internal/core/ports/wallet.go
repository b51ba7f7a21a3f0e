package ports

import (
	"context"

	"github.com/beastmint/mintd/internal/core/domain"
)

type WalletSigner interface {
	// Derive turns mnemonic words into signing material and the wallet address.
	Derive(words []string) (*domain.WalletHandle, error)
	// SignTransfer returns the BOC of a signed external message carrying msgs.
	SignTransfer(
		handle domain.WalletHandle, seqno uint32, msgs []domain.TransferMessage,
	) ([]byte, error)
}

// WalletLocker serializes read-seqno-then-send for a single wallet.
type WalletLocker interface {
	Lock(ctx context.Context, wallet string) (unlock func(), err error)
	Close()
}
