package application

import (
	"context"
	"time"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/beastmint/mintd/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const reconcileTimeout = 2 * time.Minute

// reconcile polls the marketplace once for every queued mint and stores
// whatever changed.
func (s *mintService) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	records, err := s.repoManager.MintRecords().GetByStatus(ctx, domain.MintStatusInQueue)
	if err != nil {
		log.WithError(err).Warn("failed to load queued mint records")
		return
	}
	if len(records) <= 0 {
		return
	}

	log.Debugf("reconciling %d queued mints", len(records))
	for i := range records {
		record := &records[i]
		changed, err := s.refresh(ctx, record)
		if err != nil {
			log.WithError(err).WithField("request_id", record.RequestId).
				Warn("failed to reconcile mint status")
			continue
		}
		if changed && record.Status.IsFinal() {
			log.WithField("request_id", record.RequestId).
				WithField("status", record.Status).
				WithField("nft_address", record.NftAddress).
				Info("mint settled")
		}
	}
}

// refresh merges the current marketplace status into record and persists
// it. A status check answered with 404 leaves the record untouched since the
// marketplace may not have indexed the request yet.
func (s *mintService) refresh(ctx context.Context, record *domain.MintRecord) (bool, error) {
	status, err := s.tracker.Status(ctx, record.RequestId)
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, err
	}

	before := *record
	record.Merge(status)
	changed := before.Status != record.Status ||
		before.NftAddress != record.NftAddress ||
		before.MarketplaceUrl != record.MarketplaceUrl ||
		!sameIndex(before.NftIndex, record.NftIndex)
	if !changed {
		return false, nil
	}

	if err := s.repoManager.MintRecords().Upsert(ctx, *record); err != nil {
		return false, errors.RECORD_STORE_WRITE_FAILED.Wrap(err).
			WithMetadata(errors.RecordMetadata{RequestId: record.RequestId})
	}
	return true, nil
}

func sameIndex(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
