package application

import (
	"context"

	"github.com/beastmint/mintd/internal/core/domain"
)

type MintService interface {
	Start() error
	Stop()
	Mint(ctx context.Context, input MintInput) (*MintResult, error)
	GetMintStatus(ctx context.Context, requestId string) (map[string]any, error)
	GetMintRecord(ctx context.Context, requestId string) (*domain.MintRecord, error)
	RefreshMintRecord(ctx context.Context, requestId string) (*domain.MintRecord, error)
}

type TransferService interface {
	SendNft(ctx context.Context, nftAddress, toAddress string) (*NftTransferResult, error)
	// SendJetton moves amount jettons, expressed in whole units (e.g. "1.5").
	// An empty amount sends one jetton.
	SendJetton(ctx context.Context, toAddress, amount string) (*JettonTransferResult, error)
	GetWalletInfo(ctx context.Context) (*WalletInfo, error)
	Close()
}

// MintInput is what a caller may customize. Every empty field falls back
// to the service defaults.
type MintInput struct {
	Prompt       string
	Model        string
	Name         string
	Description  string
	OwnerAddress string
	Traits       []domain.Trait
}

type MintResult struct {
	RequestId   string
	Status      domain.MintStatus
	Name        string
	Description string
	Traits      []domain.Trait
	ImageCid    string
	ImageUri    string
	MetadataCid string
	MetadataUri string
	Marketplace map[string]any
}

type NftTransferResult struct {
	FromWallet string
	ToAddress  string
	NftAddress string
	Seqno      uint32
}

type JettonTransferResult struct {
	FromWallet   string
	ToWallet     string
	JettonAmount string
	Seqno        uint32
}

type WalletInfo struct {
	Address    string
	Balance    uint64
	BalanceTon string
	Seqno      uint32
}
