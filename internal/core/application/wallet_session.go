package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/beastmint/mintd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type SessionState int

const (
	SessionUninitialized SessionState = iota
	SessionReady
	SessionSequenceKnown
	SessionFaulted
)

func (s SessionState) String() string {
	switch s {
	case SessionReady:
		return "ready"
	case SessionSequenceKnown:
		return "sequence_known"
	case SessionFaulted:
		return "faulted"
	default:
		return "uninitialized"
	}
}

const (
	DefaultSeqnoPollInterval = 2 * time.Second
	DefaultSeqnoWaitTimeout  = 30 * time.Second
	// DefaultMessageExpiry matches the validity window of signed messages.
	DefaultMessageExpiry = time.Minute
)

type SessionOption func(*WalletSession)

// WithSeqnoWait bounds how long Send waits for the previous transfer to be
// applied on chain, and how often it polls meanwhile.
func WithSeqnoWait(pollInterval, timeout time.Duration) SessionOption {
	return func(w *WalletSession) {
		w.pollInterval = pollInterval
		w.waitTimeout = timeout
	}
}

// WithMessageExpiry tells the session after how long a submitted message can
// no longer land, so its seqno is free again.
func WithMessageExpiry(expiry time.Duration) SessionOption {
	return func(w *WalletSession) {
		w.messageExpiry = expiry
	}
}

type pendingTransfer struct {
	seqno       uint32
	submittedAt time.Time
}

// WalletSession holds the signing material of a single wallet for the life
// of the process. The sequence number is read from the chain under the
// wallet lock right before signing. Until the chain moves past the last
// submitted seqno, that seqno is not signed again.
type WalletSession struct {
	chain  ports.ChainClient
	signer ports.WalletSigner
	locker ports.WalletLocker
	handle domain.WalletHandle

	pollInterval  time.Duration
	waitTimeout   time.Duration
	messageExpiry time.Duration

	lock    *sync.RWMutex
	state   SessionState
	pending *pendingTransfer
	now     func() time.Time
}

func NewWalletSession(
	chain ports.ChainClient, signer ports.WalletSigner, locker ports.WalletLocker,
	words []string, opts ...SessionOption,
) (*WalletSession, error) {
	handle, err := signer.Derive(words)
	if err != nil {
		return nil, err
	}
	w := &WalletSession{
		chain:         chain,
		signer:        signer,
		locker:        locker,
		handle:        *handle,
		pollInterval:  DefaultSeqnoPollInterval,
		waitTimeout:   DefaultSeqnoWaitTimeout,
		messageExpiry: DefaultMessageExpiry,
		lock:          &sync.RWMutex{},
		state:         SessionReady,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	log.WithField("address", handle.Address).Debug("wallet session ready")
	return w, nil
}

func (w *WalletSession) Address() string {
	return w.handle.Address
}

func (w *WalletSession) State() SessionState {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return w.state
}

func (w *WalletSession) CurrentSequence(ctx context.Context) (uint32, error) {
	seqno, err := w.chain.GetSeqno(ctx, w.handle.Address)
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet seqno: %w", err)
	}
	w.setState(SessionSequenceKnown)
	return seqno, nil
}

func (w *WalletSession) Balance(ctx context.Context) (uint64, error) {
	balance, err := w.chain.GetBalance(ctx, w.handle.Address)
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet balance: %w", err)
	}
	return balance, nil
}

// Send signs msgs with a freshly read seqno and submits them. When
// minBalance is set, a lower wallet balance fails before anything is signed.
// A seqno already submitted is never signed again: Send waits for the chain
// to move past it or fails with TRANSFER_PENDING. A failed submission is
// never retried.
func (w *WalletSession) Send(
	ctx context.Context, msgs []domain.TransferMessage, minBalance uint64,
) (uint32, error) {
	unlock, err := w.locker.Lock(ctx, w.handle.Address)
	if err != nil {
		return 0, fmt.Errorf("failed to lock wallet: %w", err)
	}
	defer unlock()

	if minBalance > 0 {
		balance, err := w.Balance(ctx)
		if err != nil {
			return 0, err
		}
		if balance < minBalance {
			return 0, errors.INSUFFICIENT_BALANCE.New(
				"insufficient balance: have %s TON, need %s TON",
				formatTon(balance), formatTon(minBalance),
			).WithMetadata(errors.BalanceMetadata{
				Have: formatTon(balance), Need: formatTon(minBalance),
			})
		}
	}

	destination := ""
	if len(msgs) > 0 {
		destination = msgs[0].Destination
	}

	seqno, err := w.nextSequence(ctx, destination)
	if err != nil {
		return 0, err
	}

	metadata := errors.TransferMetadata{
		FromWallet: w.handle.Address, Destination: destination, Seqno: seqno,
	}

	boc, err := w.signer.SignTransfer(w.handle, seqno, msgs)
	if err != nil {
		w.setState(SessionFaulted)
		return 0, errors.TRANSFER_SUBMISSION_FAILED.Wrap(err).WithMetadata(metadata)
	}
	if err := w.chain.SendBoc(ctx, boc); err != nil {
		w.setState(SessionFaulted)
		return 0, errors.TRANSFER_SUBMISSION_FAILED.Wrap(err).WithMetadata(metadata)
	}

	w.setPending(&pendingTransfer{seqno: seqno, submittedAt: w.now()})
	w.setState(SessionReady)
	log.WithField("wallet", w.handle.Address).WithField("seqno", seqno).
		Debug("transfer submitted")
	return seqno, nil
}

// nextSequence returns the chain seqno once it is past the last submitted
// one. It must be called with the wallet lock held.
func (w *WalletSession) nextSequence(ctx context.Context, destination string) (uint32, error) {
	seqno, err := w.CurrentSequence(ctx)
	if err != nil {
		return 0, err
	}

	pending := w.getPending()
	if pending == nil || seqno > pending.seqno {
		w.setPending(nil)
		return seqno, nil
	}
	// the previous message expired without landing, its seqno is free again
	if w.now().Sub(pending.submittedAt) >= w.messageExpiry {
		log.WithField("wallet", w.handle.Address).WithField("seqno", pending.seqno).
			Warn("previous transfer expired without being applied")
		w.setPending(nil)
		return seqno, nil
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	timeout := time.NewTimer(w.waitTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-timeout.C:
			return 0, errors.TRANSFER_PENDING.New(
				"previous transfer with seqno %d is still pending", pending.seqno,
			).WithMetadata(errors.TransferMetadata{
				FromWallet:  w.handle.Address,
				Destination: destination,
				Seqno:       pending.seqno,
			})
		case <-ticker.C:
			seqno, err = w.CurrentSequence(ctx)
			if err != nil {
				return 0, err
			}
			if seqno > pending.seqno {
				w.setPending(nil)
				return seqno, nil
			}
		}
	}
}

func (w *WalletSession) Close() {
	w.locker.Close()
}

func (w *WalletSession) getPending() *pendingTransfer {
	w.lock.RLock()
	defer w.lock.RUnlock()
	return w.pending
}

func (w *WalletSession) setPending(pending *pendingTransfer) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.pending = pending
}

func (w *WalletSession) setState(state SessionState) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.state = state
}
