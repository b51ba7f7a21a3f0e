package application

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/beastmint/mintd/pkg/errors"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testOwner = "EQowner"

type mintFixture struct {
	svc         *mintService
	generator   *mockGenerator
	publisher   *mockPublisher
	marketplace *mockMarketplace
	repo        *memoryMintRecordRepo
}

func newMintFixture(t *testing.T, scheduler ports.SchedulerService, interval time.Duration) mintFixture {
	srv := newImageServer(t)

	generator := &mockGenerator{}
	generator.On("Run", mock.Anything, mock.Anything, mock.Anything).Return(
		&ports.GeneratorOutput{Kind: ports.OutputUrl, Url: srv.URL + "/image.jpg"}, nil,
	)
	publisher := &mockPublisher{}
	marketplace := &mockMarketplace{}
	repoManager := newMemoryRepoManager()

	svc, err := NewMintService(
		generator, publisher, marketplace, repoManager, scheduler, nil, nil,
		srv.Client(), testOwner, "", DefaultBasePrompt, interval,
	)
	require.NoError(t, err)

	return mintFixture{
		svc:         svc.(*mintService),
		generator:   generator,
		publisher:   publisher,
		marketplace: marketplace,
		repo:        repoManager.repo,
	}
}

func TestMint(t *testing.T) {
	traits := []domain.Trait{{TraitType: "Attack", Value: 100}}

	t.Run("end to end", func(t *testing.T) {
		f := newMintFixture(t, nil, 0)
		f.svc.builder.newId = func() string { return "r1" }

		f.publisher.On("Publish", mock.Anything, imageBytes, mock.MatchedBy(func(name string) bool {
			return strings.HasPrefix(name, "azure_phoenix_") && strings.HasSuffix(name, ".jpg")
		})).Return(&domain.PublishedAsset{ContentId: "QmImage", Uri: "ipfs://QmImage"}, nil)
		f.publisher.On("PublishJSON", mock.Anything, domain.MetadataDocument{
			Name:        "Azure Phoenix",
			Description: "A phoenix",
			Image:       "ipfs://QmImage",
			Attributes:  traits,
		}, "Azure Phoenix").Return(&domain.PublishedAsset{ContentId: "Qm123", Uri: "ipfs://Qm123"}, nil)
		f.marketplace.On("Mint", mock.Anything, ports.MintPayload{
			RequestId:    "r1",
			OwnerAddress: testOwner,
			Name:         "Azure Phoenix",
			Description:  "A phoenix",
			Image:        "ipfs://Qm123",
			Attributes:   traits,
		}).Return(&ports.MarketplaceResponse{
			StatusCode: http.StatusOK,
			Body:       map[string]any{"address": "EQabc", "index": float64(0)},
		}, nil)

		result, err := f.svc.Mint(t.Context(), MintInput{
			Prompt:      "with azure wings",
			Name:        "Azure Phoenix",
			Description: "A phoenix",
			Traits:      traits,
		})
		require.NoError(t, err)
		require.Equal(t, "r1", result.RequestId)
		require.Equal(t, domain.MintStatusInQueue, result.Status)
		require.Equal(t, "QmImage", result.ImageCid)
		require.Equal(t, "Qm123", result.MetadataCid)
		require.Equal(t, "ipfs://Qm123", result.MetadataUri)
		require.Equal(t, "EQabc", result.Marketplace["address"])

		record, err := f.svc.GetMintRecord(t.Context(), "r1")
		require.NoError(t, err)
		require.Equal(t, domain.MintStatusInQueue, record.Status)
		require.Equal(t, "EQabc", record.NftAddress)
		require.NotNil(t, record.NftIndex)
		require.Equal(t, int64(0), *record.NftIndex)
		require.Equal(t, "ipfs://Qm123", record.ImageReference)
		require.Equal(t, traits, record.Traits)

		input := f.generator.Calls[0].Arguments.Get(2).(map[string]any)
		require.Equal(t, DefaultBasePrompt+" with azure wings", input["prompt"])
		require.Equal(t, true, input["prompt_upsampling"])
		require.Equal(t, DefaultModel, f.generator.Calls[0].Arguments.String(1))

		f.publisher.AssertExpectations(t)
		f.marketplace.AssertExpectations(t)
	})

	t.Run("defaults", func(t *testing.T) {
		f := newMintFixture(t, nil, 0)
		f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.PublishedAsset{ContentId: "QmImage", Uri: "ipfs://QmImage"}, nil)
		f.publisher.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.PublishedAsset{ContentId: "QmMeta", Uri: "ipfs://QmMeta"}, nil)
		f.marketplace.On("Mint", mock.Anything, mock.Anything).Return(&ports.MarketplaceResponse{
			StatusCode: http.StatusOK,
			Body:       map[string]any{"raw": "queued"},
			RawBody:    "queued",
		}, nil)

		result, err := f.svc.Mint(t.Context(), MintInput{})
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(result.Name, "Beast #"))
		require.Equal(t, DefaultDescription, result.Description)
		require.Equal(t, DefaultTraits(), result.Traits)

		input := f.generator.Calls[0].Arguments.Get(2).(map[string]any)
		require.Equal(t, DefaultBasePrompt, input["prompt"])

		fileName := f.publisher.Calls[0].Arguments.String(2)
		require.True(t, strings.HasPrefix(fileName, "beast_#"))
		require.True(t, strings.HasSuffix(fileName, ".jpg"))

		payload := f.marketplace.Calls[0].Arguments.Get(1).(ports.MintPayload)
		require.Equal(t, testOwner, payload.OwnerAddress)
		require.Equal(t, "ipfs://QmMeta", payload.Image)
	})

	t.Run("rejected", func(t *testing.T) {
		f := newMintFixture(t, nil, 0)
		f.svc.builder.newId = func() string { return "r2" }
		f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.PublishedAsset{ContentId: "QmImage", Uri: "ipfs://QmImage"}, nil)
		f.publisher.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.PublishedAsset{ContentId: "QmMeta", Uri: "ipfs://QmMeta"}, nil)
		f.marketplace.On("Mint", mock.Anything, mock.Anything).Return(&ports.MarketplaceResponse{
			StatusCode: http.StatusBadRequest,
			Body:       map[string]any{"error": "invalid owner"},
			RawBody:    `{"error":"invalid owner"}`,
		}, nil)

		result, err := f.svc.Mint(t.Context(), MintInput{OwnerAddress: "EQother"})
		require.Error(t, err)
		require.Nil(t, result)
		require.True(t, errors.Is(err, errors.MINT_REJECTED))
		typed, ok := err.(errors.TypedError[errors.MintRejectedMetadata])
		require.True(t, ok)
		require.Equal(t, errors.MintRejectedMetadata{
			RequestId:   "r2",
			ImageUri:    "ipfs://QmImage",
			MetadataUri: "ipfs://QmMeta",
			StatusCode:  http.StatusBadRequest,
			Body:        `{"error":"invalid owner"}`,
		}, typed.TypedMetadata())

		record, err := f.svc.GetMintRecord(t.Context(), "r2")
		require.NoError(t, err)
		require.Equal(t, domain.MintStatusFailed, record.Status)
		require.Equal(t, "EQother", record.OwnerAddress)
	})

	t.Run("record store failure is swallowed", func(t *testing.T) {
		f := newMintFixture(t, nil, 0)
		f.repo.failWrite = true
		f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.PublishedAsset{ContentId: "QmImage", Uri: "ipfs://QmImage"}, nil)
		f.publisher.On("PublishJSON", mock.Anything, mock.Anything, mock.Anything).
			Return(&domain.PublishedAsset{ContentId: "QmMeta", Uri: "ipfs://QmMeta"}, nil)
		f.marketplace.On("Mint", mock.Anything, mock.Anything).Return(&ports.MarketplaceResponse{
			StatusCode: http.StatusOK, Body: map[string]any{},
		}, nil)

		result, err := f.svc.Mint(t.Context(), MintInput{})
		require.NoError(t, err)
		require.NotNil(t, result)
		require.Equal(t, 1, f.repo.writes)
	})

	t.Run("publish failure", func(t *testing.T) {
		f := newMintFixture(t, nil, 0)
		f.publisher.On("Publish", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, http.ErrHandlerTimeout)

		result, err := f.svc.Mint(t.Context(), MintInput{Name: "Azure Phoenix"})
		require.Error(t, err)
		require.Nil(t, result)
		require.True(t, errors.Is(err, errors.PUBLISH_FAILED))
		require.ErrorIs(t, err, http.ErrHandlerTimeout)
		f.marketplace.AssertNotCalled(t, "Mint", mock.Anything, mock.Anything)
	})

	t.Run("missing owner", func(t *testing.T) {
		f := newMintFixture(t, nil, 0)
		f.svc.defaultOwner = ""

		_, err := f.svc.Mint(t.Context(), MintInput{})
		require.True(t, errors.Is(err, errors.CONFIGURATION_MISSING))
		f.generator.AssertNotCalled(t, "Run", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestMintRecordRefresh(t *testing.T) {
	queued := func(id string) domain.MintRecord {
		return *domain.NewMintRecord(domain.MintRequest{RequestId: id, Name: id})
	}

	t.Run("refresh", func(t *testing.T) {
		f := newMintFixture(t, nil, 0)
		require.NoError(t, f.repo.Upsert(t.Context(), queued("r1")))
		require.NoError(t, f.repo.Upsert(t.Context(), queued("r2")))

		f.marketplace.On("MintStatus", mock.Anything, "r1").Return(&ports.MarketplaceResponse{
			StatusCode: http.StatusOK,
			Body: map[string]any{"data": map[string]any{
				"status": "ready", "address": "EQabc", "index": float64(4),
				"url": "https://getgems.io/nft/EQabc",
			}},
		}, nil)
		f.marketplace.On("MintStatus", mock.Anything, "r2").Return(&ports.MarketplaceResponse{
			StatusCode: http.StatusNotFound,
		}, nil)

		record, err := f.svc.RefreshMintRecord(t.Context(), "r1")
		require.NoError(t, err)
		require.Equal(t, domain.MintStatusMinted, record.Status)
		require.Equal(t, "EQabc", record.NftAddress)
		require.Equal(t, int64(4), *record.NftIndex)
		require.Equal(t, "https://getgems.io/nft/EQabc", record.MarketplaceUrl)

		stored, err := f.svc.GetMintRecord(t.Context(), "r1")
		require.NoError(t, err)
		require.Equal(t, domain.MintStatusMinted, stored.Status)

		record, err = f.svc.RefreshMintRecord(t.Context(), "r2")
		require.NoError(t, err)
		require.Equal(t, domain.MintStatusInQueue, record.Status)

		_, err = f.svc.RefreshMintRecord(t.Context(), "unknown")
		require.True(t, errors.Is(err, errors.RECORD_NOT_FOUND))
	})

	t.Run("reconcile", func(t *testing.T) {
		scheduler := &mockScheduler{}
		scheduler.On("Start").Return()
		scheduler.On("Stop").Return()
		scheduler.On("ScheduleEvery", 30*time.Second, mock.Anything).Return(nil)

		f := newMintFixture(t, scheduler, 30*time.Second)
		require.NoError(t, f.repo.Upsert(t.Context(), queued("r1")))
		require.NoError(t, f.repo.Upsert(t.Context(), queued("r2")))
		require.NoError(t, f.repo.Upsert(t.Context(), queued("r3")))

		f.marketplace.On("MintStatus", mock.Anything, "r1").Return(&ports.MarketplaceResponse{
			StatusCode: http.StatusOK,
			Body:       map[string]any{"status": "minted", "address": "EQabc"},
		}, nil)
		f.marketplace.On("MintStatus", mock.Anything, "r2").Return(&ports.MarketplaceResponse{
			StatusCode: http.StatusOK,
			Body:       map[string]any{"status": "error"},
		}, nil)
		f.marketplace.On("MintStatus", mock.Anything, "r3").Return(&ports.MarketplaceResponse{
			StatusCode: http.StatusInternalServerError,
			RawBody:    "boom",
		}, nil)

		require.NoError(t, f.svc.Start())
		task := scheduler.Calls[1].Arguments.Get(1).(func())
		task()

		expected := map[string]domain.MintStatus{
			"r1": domain.MintStatusMinted,
			"r2": domain.MintStatusFailed,
			"r3": domain.MintStatusInQueue,
		}
		for id, status := range expected {
			record, err := f.svc.GetMintRecord(t.Context(), id)
			require.NoError(t, err)
			require.Equal(t, status, record.Status, id)
		}

		f.svc.Stop()
		scheduler.AssertExpectations(t)
	})
}
