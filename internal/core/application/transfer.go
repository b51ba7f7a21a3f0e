package application

import (
	"context"
	"strings"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/beastmint/mintd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultNftTransferValue    = 100_000_000 // 0.1 TON
	DefaultJettonTransferValue = 50_000_000  // 0.05 TON

	transferKindNft    = "nft"
	transferKindJetton = "jetton"
)

type transferService struct {
	session *WalletSession
	builder ports.TxBuilder
	alerts  ports.Alerts
	metrics ports.Metrics

	jettonWallet        string
	nftTransferValue    uint64
	jettonTransferValue uint64
	minNftBalance       uint64
}

// NewTransferService accepts a nil session: every operation then fails with
// CONFIGURATION_MISSING, which lets the daemon run mint-only.
func NewTransferService(
	session *WalletSession,
	builder ports.TxBuilder,
	alerts ports.Alerts,
	metrics ports.Metrics,
	jettonWallet string,
	nftTransferValue, jettonTransferValue, minNftBalance uint64,
) TransferService {
	if nftTransferValue == 0 {
		nftTransferValue = DefaultNftTransferValue
	}
	if jettonTransferValue == 0 {
		jettonTransferValue = DefaultJettonTransferValue
	}
	if minNftBalance < nftTransferValue {
		minNftBalance = nftTransferValue
	}
	return &transferService{
		session:             session,
		builder:             builder,
		alerts:              alerts,
		metrics:             metrics,
		jettonWallet:        jettonWallet,
		nftTransferValue:    nftTransferValue,
		jettonTransferValue: jettonTransferValue,
		minNftBalance:       minNftBalance,
	}
}

func (s *transferService) SendNft(
	ctx context.Context, nftAddress, toAddress string,
) (*NftTransferResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	nftAddress = strings.TrimSpace(nftAddress)
	toAddress = strings.TrimSpace(toAddress)
	if len(nftAddress) <= 0 || len(toAddress) <= 0 {
		return nil, errors.INVALID_REQUEST.New("nft address and destination are required")
	}

	msg, err := s.builder.BuildNftTransfer(nftAddress, toAddress, "", s.nftTransferValue)
	if err != nil {
		return nil, errors.INVALID_REQUEST.Wrap(err)
	}

	seqno, err := s.session.Send(ctx, []domain.TransferMessage{*msg}, s.minNftBalance)
	s.recordTransfer(ctx, transferKindNft, err == nil)
	if err != nil {
		return nil, err
	}

	fromWallet := s.session.Address()
	go publishAlert(s.alerts, ports.TransferSubmitted, ports.TransferAlert{
		Kind:        transferKindNft,
		FromWallet:  fromWallet,
		Destination: toAddress,
		Seqno:       seqno,
		Amount:      "1",
		Fee:         s.nftTransferValue,
	})
	log.WithField("nft", nftAddress).WithField("to", toAddress).
		WithField("seqno", seqno).Info("nft transfer submitted")

	return &NftTransferResult{
		FromWallet: fromWallet,
		ToAddress:  toAddress,
		NftAddress: nftAddress,
		Seqno:      seqno,
	}, nil
}

func (s *transferService) SendJetton(
	ctx context.Context, toAddress, amount string,
) (*JettonTransferResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if len(s.jettonWallet) <= 0 {
		return nil, errors.CONFIGURATION_MISSING.New("missing jetton wallet").
			WithMetadata(errors.ConfigMetadata{Field: "jetton-wallet"})
	}
	toAddress = strings.TrimSpace(toAddress)
	if len(toAddress) <= 0 {
		return nil, errors.INVALID_REQUEST.New("destination is required")
	}

	units, err := parseJettonAmount(amount)
	if err != nil {
		return nil, errors.INVALID_REQUEST.New("invalid jetton amount %q: %s", amount, err)
	}

	fromWallet := s.session.Address()
	msg, err := s.builder.BuildJettonTransfer(
		s.jettonWallet, units, toAddress, fromWallet, s.jettonTransferValue,
	)
	if err != nil {
		return nil, errors.INVALID_REQUEST.Wrap(err)
	}

	seqno, err := s.session.Send(ctx, []domain.TransferMessage{*msg}, s.jettonTransferValue)
	s.recordTransfer(ctx, transferKindJetton, err == nil)
	if err != nil {
		return nil, err
	}

	go publishAlert(s.alerts, ports.TransferSubmitted, ports.TransferAlert{
		Kind:        transferKindJetton,
		FromWallet:  fromWallet,
		Destination: toAddress,
		Seqno:       seqno,
		Amount:      formatJetton(units),
		Fee:         s.jettonTransferValue,
	})
	log.WithField("to", toAddress).WithField("amount", units.String()).
		WithField("seqno", seqno).Info("jetton transfer submitted")

	return &JettonTransferResult{
		FromWallet:   fromWallet,
		ToWallet:     toAddress,
		JettonAmount: units.String(),
		Seqno:        seqno,
	}, nil
}

func (s *transferService) GetWalletInfo(ctx context.Context) (*WalletInfo, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	balance, err := s.session.Balance(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	seqno, err := s.session.CurrentSequence(ctx)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	return &WalletInfo{
		Address:    s.session.Address(),
		Balance:    balance,
		BalanceTon: formatTon(balance),
		Seqno:      seqno,
	}, nil
}

func (s *transferService) Close() {
	if s.session != nil {
		s.session.Close()
	}
}

func (s *transferService) ready() error {
	if s.session == nil {
		return errors.CONFIGURATION_MISSING.New("missing owner mnemonic").
			WithMetadata(errors.ConfigMetadata{Field: "owner-mnemonic"})
	}
	return nil
}

func (s *transferService) recordTransfer(ctx context.Context, kind string, ok bool) {
	if s.metrics != nil {
		s.metrics.TransferSubmitted(ctx, kind, ok)
	}
}
