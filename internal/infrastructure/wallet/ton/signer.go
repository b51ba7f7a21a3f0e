package tonwallet

import (
	"crypto/ed25519"
	"crypto/hmac"
	"crypto/sha512"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/internal/core/ports"
	mintderrors "github.com/beastmint/mintd/pkg/errors"
	"github.com/tyler-smith/go-bip39"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton/wallet"
	"github.com/xssnick/tonutils-go/tvm/cell"
	"golang.org/x/crypto/pbkdf2"
)

const (
	MinMnemonicWords = 12
	DefaultSubwallet = 698983191

	seedSalt       = "TON default seed"
	seedIterations = 100000

	// pay transfer fees separately, ignore action phase errors
	sendMode = 3
	// v4 wallets accept at most 4 actions per external message
	maxMessages = 4
)

type Option func(*signer)

func WithTestnet(testnet bool) Option {
	return func(s *signer) {
		s.testnet = testnet
	}
}

func WithSubwallet(id uint32) Option {
	return func(s *signer) {
		s.subwallet = id
	}
}

func WithMessageTTL(ttl time.Duration) Option {
	return func(s *signer) {
		s.ttl = ttl
	}
}

type signer struct {
	subwallet uint32
	ttl       time.Duration
	testnet   bool
}

// NewSigner returns a V4R2 wallet signer for workchain 0.
func NewSigner(opts ...Option) ports.WalletSigner {
	s := &signer{
		subwallet: DefaultSubwallet,
		ttl:       time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *signer) Derive(words []string) (*domain.WalletHandle, error) {
	normalized := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if len(w) > 0 {
			normalized = append(normalized, w)
		}
	}

	if len(normalized) < MinMnemonicWords {
		return nil, mintderrors.INVALID_MNEMONIC.New(
			"mnemonic must have at least %d words, got %d", MinMnemonicWords, len(normalized),
		).WithMetadata(mintderrors.MnemonicMetadata{WordCount: len(normalized)})
	}
	for i, w := range normalized {
		if _, ok := bip39.GetWordIndex(w); !ok {
			// the word itself is never echoed back
			return nil, mintderrors.INVALID_MNEMONIC.New(
				"mnemonic word at position %d is not in the wordlist", i+1,
			).WithMetadata(mintderrors.MnemonicMetadata{WordCount: len(normalized)})
		}
	}

	key := deriveKey(normalized)
	pubkey := key.Public().(ed25519.PublicKey)

	addr, err := wallet.AddressFromPubKey(pubkey, wallet.V4R2, s.subwallet)
	if err != nil {
		return nil, fmt.Errorf("failed to compute wallet address: %w", err)
	}
	addr.SetTestnetOnly(s.testnet)

	return &domain.WalletHandle{
		Address:   addr.String(),
		PublicKey: pubkey,
		SecretKey: key,
	}, nil
}

func (s *signer) SignTransfer(
	handle domain.WalletHandle, seqno uint32, msgs []domain.TransferMessage,
) ([]byte, error) {
	if len(msgs) <= 0 {
		return nil, fmt.Errorf("missing messages")
	}
	if len(msgs) > maxMessages {
		return nil, fmt.Errorf("too many messages: max %d, got %d", maxMessages, len(msgs))
	}
	if len(handle.SecretKey) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("wallet handle has no signing key")
	}

	walletAddr, err := address.ParseAddr(handle.Address)
	if err != nil {
		return nil, fmt.Errorf("invalid wallet address: %w", err)
	}

	payload := cell.BeginCell().
		MustStoreUInt(uint64(s.subwallet), 32).
		MustStoreUInt(uint64(time.Now().Add(s.ttl).Unix()), 32).
		MustStoreUInt(uint64(seqno), 32).
		MustStoreUInt(0, 8) // simple send

	for i, m := range msgs {
		msgCell, err := internalMessage(m)
		if err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		payload.MustStoreUInt(sendMode, 8).MustStoreRef(msgCell)
	}

	signature := ed25519.Sign(ed25519.PrivateKey(handle.SecretKey), payload.EndCell().Hash())
	body := cell.BeginCell().
		MustStoreSlice(signature, 512).
		MustStoreBuilder(payload).
		EndCell()

	ext := cell.BeginCell().
		MustStoreUInt(0b10, 2). // ext_in_msg_info
		MustStoreAddr(nil).
		MustStoreAddr(walletAddr).
		MustStoreCoins(0) // import_fee

	// an undeployed wallet ships its own code with the first message
	if seqno == 0 {
		stateInit, err := wallet.GetStateInit(
			ed25519.PublicKey(handle.PublicKey), wallet.V4R2, s.subwallet,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to build wallet state init: %w", err)
		}
		stateInitCell, err := tlb.ToCell(stateInit)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize wallet state init: %w", err)
		}
		ext.MustStoreBoolBit(true).MustStoreBoolBit(true).MustStoreRef(stateInitCell)
	} else {
		ext.MustStoreBoolBit(false)
	}
	ext.MustStoreBoolBit(true).MustStoreRef(body)

	return ext.EndCell().ToBOC(), nil
}

func internalMessage(m domain.TransferMessage) (*cell.Cell, error) {
	dest, err := address.ParseAddr(m.Destination)
	if err != nil {
		return nil, fmt.Errorf("invalid destination: %w", err)
	}
	body, err := cell.FromBOC(m.Payload)
	if err != nil {
		return nil, fmt.Errorf("invalid payload: %w", err)
	}

	return tlb.ToCell(&tlb.InternalMessage{
		IHRDisabled: true,
		Bounce:      m.Bounce,
		DstAddr:     dest,
		Amount:      tlb.FromNanoTON(new(big.Int).SetUint64(m.AttachedValue)),
		Body:        body,
	})
}

func deriveKey(words []string) ed25519.PrivateKey {
	mac := hmac.New(sha512.New, []byte(strings.Join(words, " ")))
	entropy := mac.Sum(nil)
	seed := pbkdf2.Key(entropy, []byte(seedSalt), seedIterations, 64, sha512.New)
	return ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize])
}
