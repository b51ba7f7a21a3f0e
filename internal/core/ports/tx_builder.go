package ports

import (
	"math/big"

	"github.com/beastmint/mintd/internal/core/domain"
)

type TxBuilder interface {
	// BuildJettonTransfer targets the sender's jetton wallet. Amount is in
	// the jetton's smallest unit.
	BuildJettonTransfer(
		jettonWallet string, amount *big.Int, recipient, responseDestination string,
		attachedValue uint64,
	) (*domain.TransferMessage, error)
	// BuildNftTransfer targets the NFT item. An empty responseDestination
	// is encoded as addr_none.
	BuildNftTransfer(
		nftAddress, newOwner, responseDestination string, attachedValue uint64,
	) (*domain.TransferMessage, error)
}
