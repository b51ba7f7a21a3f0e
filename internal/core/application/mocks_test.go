package application

import (
	"context"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Run(
	ctx context.Context, model string, input map[string]any,
) (*ports.GeneratorOutput, error) {
	args := m.Called(ctx, model, input)
	var out *ports.GeneratorOutput
	if res := args.Get(0); res != nil {
		out = res.(*ports.GeneratorOutput)
	}
	return out, args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(
	ctx context.Context, data []byte, displayName string,
) (*domain.PublishedAsset, error) {
	args := m.Called(ctx, data, displayName)
	var asset *domain.PublishedAsset
	if res := args.Get(0); res != nil {
		asset = res.(*domain.PublishedAsset)
	}
	return asset, args.Error(1)
}

func (m *mockPublisher) PublishJSON(
	ctx context.Context, document any, name string,
) (*domain.PublishedAsset, error) {
	args := m.Called(ctx, document, name)
	var asset *domain.PublishedAsset
	if res := args.Get(0); res != nil {
		asset = res.(*domain.PublishedAsset)
	}
	return asset, args.Error(1)
}

type mockMarketplace struct {
	mock.Mock
}

func (m *mockMarketplace) Mint(
	ctx context.Context, payload ports.MintPayload,
) (*ports.MarketplaceResponse, error) {
	args := m.Called(ctx, payload)
	var resp *ports.MarketplaceResponse
	if res := args.Get(0); res != nil {
		resp = res.(*ports.MarketplaceResponse)
	}
	return resp, args.Error(1)
}

func (m *mockMarketplace) MintStatus(
	ctx context.Context, requestId string,
) (*ports.MarketplaceResponse, error) {
	args := m.Called(ctx, requestId)
	var resp *ports.MarketplaceResponse
	if res := args.Get(0); res != nil {
		resp = res.(*ports.MarketplaceResponse)
	}
	return resp, args.Error(1)
}

type mockChain struct {
	mock.Mock
}

func (m *mockChain) GetSeqno(ctx context.Context, address string) (uint32, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(uint32), args.Error(1)
}

func (m *mockChain) GetBalance(ctx context.Context, address string) (uint64, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(uint64), args.Error(1)
}

func (m *mockChain) SendBoc(ctx context.Context, boc []byte) error {
	args := m.Called(ctx, boc)
	return args.Error(0)
}

type mockSigner struct {
	mock.Mock
}

func (m *mockSigner) Derive(words []string) (*domain.WalletHandle, error) {
	args := m.Called(words)
	var handle *domain.WalletHandle
	if res := args.Get(0); res != nil {
		handle = res.(*domain.WalletHandle)
	}
	return handle, args.Error(1)
}

func (m *mockSigner) SignTransfer(
	handle domain.WalletHandle, seqno uint32, msgs []domain.TransferMessage,
) ([]byte, error) {
	args := m.Called(handle, seqno, msgs)
	var boc []byte
	if res := args.Get(0); res != nil {
		boc = res.([]byte)
	}
	return boc, args.Error(1)
}

type mockTxBuilder struct {
	mock.Mock
}

func (m *mockTxBuilder) BuildJettonTransfer(
	jettonWallet string, amount *big.Int, recipient, responseDestination string,
	attachedValue uint64,
) (*domain.TransferMessage, error) {
	args := m.Called(jettonWallet, amount, recipient, responseDestination, attachedValue)
	var msg *domain.TransferMessage
	if res := args.Get(0); res != nil {
		msg = res.(*domain.TransferMessage)
	}
	return msg, args.Error(1)
}

func (m *mockTxBuilder) BuildNftTransfer(
	nftAddress, newOwner, responseDestination string, attachedValue uint64,
) (*domain.TransferMessage, error) {
	args := m.Called(nftAddress, newOwner, responseDestination, attachedValue)
	var msg *domain.TransferMessage
	if res := args.Get(0); res != nil {
		msg = res.(*domain.TransferMessage)
	}
	return msg, args.Error(1)
}

// chanAlerts hands every published alert to a channel.
type chanAlerts chan any

func (a chanAlerts) Publish(_ context.Context, _ ports.Topic, message interface{}) error {
	a <- message
	return nil
}

type mockScheduler struct {
	mock.Mock
}

func (m *mockScheduler) Start() { m.Called() }
func (m *mockScheduler) Stop()  { m.Called() }
func (m *mockScheduler) ScheduleEvery(interval time.Duration, task func()) error {
	args := m.Called(interval, task)
	return args.Error(0)
}

// fakeLocker counts lock acquisitions and never blocks.
type fakeLocker struct {
	mu     sync.Mutex
	locked map[string]int
	closed bool
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{locked: make(map[string]int)}
}

func (l *fakeLocker) Lock(_ context.Context, wallet string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.locked[wallet]++
	return func() {}, nil
}

func (l *fakeLocker) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
}

// memoryRepoManager keeps mint records in a map and can be told to fail
// writes.
type memoryRepoManager struct {
	repo *memoryMintRecordRepo
}

func newMemoryRepoManager() *memoryRepoManager {
	return &memoryRepoManager{&memoryMintRecordRepo{records: make(map[string]domain.MintRecord)}}
}

func (m *memoryRepoManager) MintRecords() domain.MintRecordRepo { return m.repo }
func (m *memoryRepoManager) Close()                             {}

type memoryMintRecordRepo struct {
	mu        sync.Mutex
	records   map[string]domain.MintRecord
	failWrite bool
	writes    int
}

func (r *memoryMintRecordRepo) Upsert(_ context.Context, record domain.MintRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes++
	if r.failWrite {
		return fmt.Errorf("disk full")
	}
	r.records[record.RequestId] = record
	return nil
}

func (r *memoryMintRecordRepo) Get(_ context.Context, requestId string) (*domain.MintRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	record, ok := r.records[requestId]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (r *memoryMintRecordRepo) GetByStatus(
	_ context.Context, status domain.MintStatus,
) ([]domain.MintRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	records := make([]domain.MintRecord, 0)
	for _, record := range r.records {
		if record.Status == status {
			records = append(records, record)
		}
	}
	return records, nil
}

func (r *memoryMintRecordRepo) Close() {}
