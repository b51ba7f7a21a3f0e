package txbuilder

import (
	"fmt"
	"math/big"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tvm/cell"
)

const (
	OpJettonTransfer uint64 = 0x0f8a7ea5
	OpNftTransfer    uint64 = 0x5fcc3d14

	// VarUInteger 16 holds at most 15 bytes.
	maxCoinsBits = 120
)

type txBuilder struct {
	queryId uint64
}

func NewTxBuilder() ports.TxBuilder {
	return &txBuilder{}
}

func (b *txBuilder) BuildJettonTransfer(
	jettonWallet string, amount *big.Int, recipient, responseDestination string,
	attachedValue uint64,
) (*domain.TransferMessage, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("jetton amount must be a non negative integer")
	}
	if amount.BitLen() > maxCoinsBits {
		return nil, fmt.Errorf("jetton amount %s out of range", amount)
	}

	dest, err := ParseAddress(jettonWallet)
	if err != nil {
		return nil, fmt.Errorf("invalid jetton wallet address: %w", err)
	}
	to, err := ParseAddress(recipient)
	if err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	respDest, err := parseOptionalAddress(responseDestination)
	if err != nil {
		return nil, fmt.Errorf("invalid response destination: %w", err)
	}

	body := cell.BeginCell().
		MustStoreUInt(OpJettonTransfer, 32).
		MustStoreUInt(b.queryId, 64).
		MustStoreBigCoins(amount).
		MustStoreAddr(to).
		MustStoreAddr(respDest).
		MustStoreBoolBit(false). // custom_payload
		MustStoreCoins(0).       // forward_ton_amount
		MustStoreBoolBit(false). // forward_payload
		EndCell()

	return &domain.TransferMessage{
		Destination:   dest.String(),
		AttachedValue: attachedValue,
		Payload:       body.ToBOC(),
		Bounce:        true,
	}, nil
}

func (b *txBuilder) BuildNftTransfer(
	nftAddress, newOwner, responseDestination string, attachedValue uint64,
) (*domain.TransferMessage, error) {
	dest, err := ParseAddress(nftAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid nft address: %w", err)
	}
	owner, err := ParseAddress(newOwner)
	if err != nil {
		return nil, fmt.Errorf("invalid new owner address: %w", err)
	}
	respDest, err := parseOptionalAddress(responseDestination)
	if err != nil {
		return nil, fmt.Errorf("invalid response destination: %w", err)
	}

	body := cell.BeginCell().
		MustStoreUInt(OpNftTransfer, 32).
		MustStoreUInt(b.queryId, 64).
		MustStoreAddr(owner).
		MustStoreAddr(respDest).
		MustStoreBoolBit(false). // custom_payload
		MustStoreCoins(0).       // forward_amount
		MustStoreBoolBit(false). // forward_payload
		EndCell()

	return &domain.TransferMessage{
		Destination:   dest.String(),
		AttachedValue: attachedValue,
		Payload:       body.ToBOC(),
		Bounce:        false,
	}, nil
}

// ParseAddress accepts both the user friendly and the raw (wc:hex) forms.
func ParseAddress(addr string) (*address.Address, error) {
	if len(addr) <= 0 {
		return nil, fmt.Errorf("missing address")
	}
	parsed, err := address.ParseAddr(addr)
	if err == nil {
		return parsed, nil
	}
	raw, rawErr := address.ParseRawAddr(addr)
	if rawErr != nil {
		return nil, err
	}
	return raw, nil
}

func parseOptionalAddress(addr string) (*address.Address, error) {
	if len(addr) <= 0 {
		return nil, nil
	}
	return ParseAddress(addr)
}
