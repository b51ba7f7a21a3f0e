package badgerdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/beastmint/mintd/internal/core/domain"
	"github.com/dgraph-io/badger/v4"
	"github.com/timshannon/badgerhold/v4"
)

const mintRecordStoreDir = "mint_records"

// mintRecordData flattens traits to JSON since their values are untyped.
type mintRecordData struct {
	RequestId      string
	Status         string `badgerhold:"index"`
	Name           string
	Description    string
	ImageReference string
	OwnerAddress   string
	Traits         []byte
	NftAddress     string
	NftIndex       *int64
	MarketplaceUrl string
	CreatedAt      int64
	UpdatedAt      int64
}

type mintRecordRepository struct {
	store *badgerhold.Store
}

func NewMintRecordRepository(config ...interface{}) (domain.MintRecordRepo, error) {
	if len(config) != 2 {
		return nil, fmt.Errorf("invalid config")
	}
	baseDir, ok := config[0].(string)
	if !ok {
		return nil, fmt.Errorf("invalid base directory")
	}
	var logger badger.Logger
	if config[1] != nil {
		logger, ok = config[1].(badger.Logger)
		if !ok {
			return nil, fmt.Errorf("invalid logger")
		}
	}

	var dir string
	if len(baseDir) > 0 {
		dir = filepath.Join(baseDir, mintRecordStoreDir)
	}
	store, err := createDB(dir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open mint record store: %s", err)
	}

	return &mintRecordRepository{store}, nil
}

func (r *mintRecordRepository) Get(
	ctx context.Context, requestId string,
) (*domain.MintRecord, error) {
	var data mintRecordData
	err := r.store.Get(requestId, &data)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mint record: %w", err)
	}
	return data.toDomain()
}

func (r *mintRecordRepository) GetByStatus(
	ctx context.Context, status domain.MintStatus,
) ([]domain.MintRecord, error) {
	var data []mintRecordData
	query := badgerhold.Where("Status").Eq(string(status)).Index("Status").SortBy("CreatedAt")
	if err := r.store.Find(&data, query); err != nil {
		return nil, fmt.Errorf("failed to find mint records: %w", err)
	}

	records := make([]domain.MintRecord, 0, len(data))
	for _, d := range data {
		record, err := d.toDomain()
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

func (r *mintRecordRepository) Upsert(ctx context.Context, record domain.MintRecord) error {
	data, err := newMintRecordData(record)
	if err != nil {
		return err
	}

	if err := r.store.Upsert(record.RequestId, data); err != nil {
		if errors.Is(err, badger.ErrConflict) {
			attempts := 1
			for errors.Is(err, badger.ErrConflict) && attempts <= maxRetries {
				time.Sleep(100 * time.Millisecond)
				err = r.store.Upsert(record.RequestId, data)
				attempts++
			}
		}
		return err
	}
	return nil
}

func (r *mintRecordRepository) Close() {
	// nolint:all
	r.store.Close()
}

func newMintRecordData(record domain.MintRecord) (*mintRecordData, error) {
	traits, err := json.Marshal(record.Traits)
	if err != nil {
		return nil, fmt.Errorf("failed to encode traits: %w", err)
	}
	return &mintRecordData{
		RequestId:      record.RequestId,
		Status:         string(record.Status),
		Name:           record.Name,
		Description:    record.Description,
		ImageReference: record.ImageReference,
		OwnerAddress:   record.OwnerAddress,
		Traits:         traits,
		NftAddress:     record.NftAddress,
		NftIndex:       record.NftIndex,
		MarketplaceUrl: record.MarketplaceUrl,
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}, nil
}

func (d mintRecordData) toDomain() (*domain.MintRecord, error) {
	var traits []domain.Trait
	if len(d.Traits) > 0 {
		if err := json.Unmarshal(d.Traits, &traits); err != nil {
			return nil, fmt.Errorf("failed to decode traits: %w", err)
		}
	}
	return &domain.MintRecord{
		RequestId:      d.RequestId,
		Status:         domain.MintStatus(d.Status),
		Name:           d.Name,
		Description:    d.Description,
		ImageReference: d.ImageReference,
		OwnerAddress:   d.OwnerAddress,
		Traits:         traits,
		NftAddress:     d.NftAddress,
		NftIndex:       d.NftIndex,
		MarketplaceUrl: d.MarketplaceUrl,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}, nil
}
