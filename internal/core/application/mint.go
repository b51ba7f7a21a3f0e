package application

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/internal/core/ports"
	"github.com/beastmint/mintd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultModel       = "black-forest-labs/flux-1.1-pro"
	DefaultDescription = "A procedurally generated beast"
	DefaultBasePrompt  = "Create a high-detail pixel art dragon with no background. " +
		"Render a perfect, symmetric side view of the entire dragon, showcasing its elongated " +
		"body, detailed scales, and vibrant colors in crisp pixel style. The image should " +
		"capture the dragon in full profile with clean lines and a balanced composition, " +
		"emphasizing its majestic form without any additional elements."

	defaultMetadataName = "nft-metadata"
)

func DefaultTraits() []domain.Trait {
	return []domain.Trait{
		{TraitType: "Attack", Value: 120, DisplayType: "number"},
		{TraitType: "Defense", Value: 80, DisplayType: "number"},
		{TraitType: "Speed", Value: 65, DisplayType: "number"},
		{TraitType: "Tier", Value: "Legendary"},
	}
}

type mintService struct {
	generator   ports.AssetGenerator
	publisher   ports.ContentPublisher
	repoManager ports.RepoManager
	scheduler   ports.SchedulerService
	alerts      ports.Alerts
	metrics     ports.Metrics

	normalizer *AssetNormalizer
	builder    *MintRequestBuilder
	dispatcher *MintDispatcher
	tracker    *MintStatusTracker

	defaultOwner      string
	model             string
	basePrompt        string
	reconcileInterval time.Duration

	now func() time.Time
}

func NewMintService(
	generator ports.AssetGenerator,
	publisher ports.ContentPublisher,
	marketplace ports.Marketplace,
	repoManager ports.RepoManager,
	scheduler ports.SchedulerService,
	alerts ports.Alerts,
	metrics ports.Metrics,
	httpClient *http.Client,
	defaultOwner, model, basePrompt string,
	reconcileInterval time.Duration,
) (MintService, error) {
	if generator == nil || publisher == nil || marketplace == nil || repoManager == nil {
		return nil, fmt.Errorf("missing mint service dependency")
	}
	if len(model) <= 0 {
		model = DefaultModel
	}
	if reconcileInterval > 0 && scheduler == nil {
		return nil, fmt.Errorf("missing scheduler for mint status reconciliation")
	}

	return &mintService{
		generator:         generator,
		publisher:         publisher,
		repoManager:       repoManager,
		scheduler:         scheduler,
		alerts:            alerts,
		metrics:           metrics,
		normalizer:        NewAssetNormalizer(httpClient),
		builder:           NewMintRequestBuilder(),
		dispatcher:        NewMintDispatcher(marketplace),
		tracker:           NewMintStatusTracker(marketplace),
		defaultOwner:      defaultOwner,
		model:             model,
		basePrompt:        basePrompt,
		reconcileInterval: reconcileInterval,
		now:               time.Now,
	}, nil
}

func (s *mintService) Start() error {
	if s.reconcileInterval <= 0 {
		log.Debug("mint status reconciliation disabled")
		return nil
	}

	log.Debug("starting scheduler service...")
	s.scheduler.Start()
	if err := s.scheduler.ScheduleEvery(s.reconcileInterval, s.reconcile); err != nil {
		return fmt.Errorf("failed to schedule mint status reconciliation: %w", err)
	}
	log.Infof("reconciling queued mints every %s", s.reconcileInterval)
	return nil
}

func (s *mintService) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
		log.Debug("stopped scheduler")
	}
	s.repoManager.Close()
	log.Debug("closed connection to db")
}

func (s *mintService) Mint(ctx context.Context, input MintInput) (*MintResult, error) {
	startedAt := s.now()
	defer func() {
		if s.metrics != nil {
			s.metrics.PipelineDuration(ctx, time.Since(startedAt))
		}
	}()

	owner := input.OwnerAddress
	if len(owner) <= 0 {
		owner = s.defaultOwner
	}
	if len(owner) <= 0 {
		return nil, errors.CONFIGURATION_MISSING.New("missing owner address").
			WithMetadata(errors.ConfigMetadata{Field: "owner-address"})
	}

	name := input.Name
	if len(name) <= 0 {
		name = fmt.Sprintf("Beast #%d", startedAt.UnixMilli())
	}
	description := input.Description
	if len(description) <= 0 {
		description = DefaultDescription
	}
	traits := input.Traits
	if traits == nil {
		traits = DefaultTraits()
	}
	model := input.Model
	if len(model) <= 0 {
		model = s.model
	}

	image, err := s.generate(ctx, model, input.Prompt)
	if err != nil {
		return nil, err
	}

	imageAsset, err := s.publish(ctx, image, fileNameFor(name, s.now().UnixMilli()))
	if err != nil {
		return nil, err
	}

	metadataAsset, err := s.publishMetadata(ctx, domain.MetadataDocument{
		Name:        name,
		Description: description,
		Image:       imageAsset.Uri,
		Attributes:  traits,
	})
	if err != nil {
		return nil, err
	}

	req := s.builder.Build(owner, name, description, metadataAsset.Uri, traits)
	outcome, err := s.dispatcher.Dispatch(ctx, req)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}

	record := domain.NewMintRecord(req)
	if outcome.Accepted {
		record.Merge(outcome.Response)
	} else {
		record.Fail()
	}
	s.saveRecord(ctx, *record)

	if s.metrics != nil {
		s.metrics.MintDispatched(ctx, outcome.Accepted)
	}
	alert := ports.MintAlert{
		RequestId:    req.RequestId,
		Name:         name,
		OwnerAddress: owner,
		MetadataUri:  metadataAsset.Uri,
		StatusCode:   outcome.StatusCode,
	}

	if !outcome.Accepted {
		go s.publishAlert(ports.MintRejected, alert)
		return nil, errors.MINT_REJECTED.New(
			"marketplace mint failed (%d)", outcome.StatusCode,
		).WithMetadata(errors.MintRejectedMetadata{
			RequestId:   req.RequestId,
			ImageUri:    imageAsset.Uri,
			MetadataUri: metadataAsset.Uri,
			StatusCode:  outcome.StatusCode,
			Body:        outcome.RawBody,
		})
	}
	go s.publishAlert(ports.MintAccepted, alert)

	log.WithField("request_id", req.RequestId).
		WithField("metadata", metadataAsset.Uri).
		Info("mint request accepted")

	return &MintResult{
		RequestId:   req.RequestId,
		Status:      record.Status,
		Name:        name,
		Description: description,
		Traits:      traits,
		ImageCid:    imageAsset.ContentId,
		ImageUri:    imageAsset.Uri,
		MetadataCid: metadataAsset.ContentId,
		MetadataUri: metadataAsset.Uri,
		Marketplace: outcome.Response,
	}, nil
}

func (s *mintService) GetMintStatus(ctx context.Context, requestId string) (map[string]any, error) {
	if len(requestId) <= 0 {
		return nil, errors.INVALID_REQUEST.New("missing request id")
	}
	return s.tracker.Status(ctx, requestId)
}

func (s *mintService) GetMintRecord(
	ctx context.Context, requestId string,
) (*domain.MintRecord, error) {
	if len(requestId) <= 0 {
		return nil, errors.INVALID_REQUEST.New("missing request id")
	}
	record, err := s.repoManager.MintRecords().Get(ctx, requestId)
	if err != nil {
		return nil, errors.INTERNAL_ERROR.Wrap(err)
	}
	if record == nil {
		return nil, errors.RECORD_NOT_FOUND.New("mint record %s not found", requestId).
			WithMetadata(errors.RecordMetadata{RequestId: requestId})
	}
	return record, nil
}

func (s *mintService) RefreshMintRecord(
	ctx context.Context, requestId string,
) (*domain.MintRecord, error) {
	record, err := s.GetMintRecord(ctx, requestId)
	if err != nil {
		return nil, err
	}
	if _, err := s.refresh(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *mintService) generate(ctx context.Context, model, customPrompt string) ([]byte, error) {
	prompt := strings.TrimSpace(fmt.Sprintf("%s %s", s.basePrompt, customPrompt))
	output, err := s.generator.Run(ctx, model, map[string]any{
		"prompt":            prompt,
		"prompt_upsampling": true,
	})
	if err != nil {
		if _, ok := err.(errors.Error); ok {
			return nil, err
		}
		return nil, errors.GENERATION_FAILED.Wrap(err).
			WithMetadata(map[string]any{"model": model})
	}
	return s.normalizer.Normalize(ctx, output)
}

func (s *mintService) publish(
	ctx context.Context, data []byte, fileName string,
) (*domain.PublishedAsset, error) {
	asset, err := s.publisher.Publish(ctx, data, fileName)
	if err != nil {
		return nil, asPublishFailed(err, fileName)
	}
	return asset, nil
}

func (s *mintService) publishMetadata(
	ctx context.Context, document domain.MetadataDocument,
) (*domain.PublishedAsset, error) {
	name := document.Name
	if len(name) <= 0 {
		name = defaultMetadataName
	}
	asset, err := s.publisher.PublishJSON(ctx, document, name)
	if err != nil {
		return nil, asPublishFailed(err, name)
	}
	return asset, nil
}

// saveRecord never fails the pipeline: the mint already reached the
// marketplace at this point.
func (s *mintService) saveRecord(ctx context.Context, record domain.MintRecord) {
	if err := s.repoManager.MintRecords().Upsert(ctx, record); err != nil {
		errors.RECORD_STORE_WRITE_FAILED.Wrap(err).
			WithMetadata(errors.RecordMetadata{RequestId: record.RequestId}).
			Log().WithError(err).Warn("failed to store mint record")
	}
}

func asPublishFailed(err error, name string) error {
	if errors.Is(err, errors.PUBLISH_FAILED) {
		return err
	}
	return errors.PUBLISH_FAILED.Wrap(err).WithMetadata(errors.PublishMetadata{Name: name})
}
