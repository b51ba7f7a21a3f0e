package sqlitedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/beastmint/mintd/internal/core/domain"
)

const (
	upsertMintRecord = `
INSERT INTO mint_record (
    request_id, status, name, description, image_reference, owner_address,
    traits, nft_address, nft_index, marketplace_url, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(request_id) DO UPDATE SET
    status = excluded.status,
    name = excluded.name,
    description = excluded.description,
    image_reference = excluded.image_reference,
    owner_address = excluded.owner_address,
    traits = excluded.traits,
    nft_address = excluded.nft_address,
    nft_index = excluded.nft_index,
    marketplace_url = excluded.marketplace_url,
    updated_at = excluded.updated_at`

	selectMintRecord = `
SELECT request_id, status, name, description, image_reference, owner_address,
    traits, nft_address, nft_index, marketplace_url, created_at, updated_at
FROM mint_record`
)

type mintRecordRepository struct {
	db *sql.DB
}

func NewMintRecordRepository(config ...interface{}) (domain.MintRecordRepo, error) {
	if len(config) != 1 {
		return nil, fmt.Errorf("invalid config: expected 1 argument, got %d", len(config))
	}
	db, ok := config[0].(*sql.DB)
	if !ok {
		return nil, fmt.Errorf(
			"cannot open mint record repository: expected *sql.DB but got %T", config[0],
		)
	}

	return &mintRecordRepository{db}, nil
}

func (r *mintRecordRepository) Upsert(ctx context.Context, record domain.MintRecord) error {
	traits, err := json.Marshal(record.Traits)
	if err != nil {
		return fmt.Errorf("failed to encode traits: %w", err)
	}
	var nftIndex sql.NullInt64
	if record.NftIndex != nil {
		nftIndex = sql.NullInt64{Int64: *record.NftIndex, Valid: true}
	}

	if _, err := r.db.ExecContext(
		ctx, upsertMintRecord,
		record.RequestId, string(record.Status), record.Name, record.Description,
		record.ImageReference, record.OwnerAddress, string(traits), record.NftAddress,
		nftIndex, record.MarketplaceUrl, record.CreatedAt, record.UpdatedAt,
	); err != nil {
		return fmt.Errorf("failed to upsert mint record: %w", err)
	}
	return nil
}

func (r *mintRecordRepository) Get(
	ctx context.Context, requestId string,
) (*domain.MintRecord, error) {
	row := r.db.QueryRowContext(ctx, selectMintRecord+" WHERE request_id = ?", requestId)
	record, err := scanMintRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mint record: %w", err)
	}
	return record, nil
}

func (r *mintRecordRepository) GetByStatus(
	ctx context.Context, status domain.MintStatus,
) ([]domain.MintRecord, error) {
	rows, err := r.db.QueryContext(
		ctx, selectMintRecord+" WHERE status = ? ORDER BY created_at", string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to select mint records: %w", err)
	}
	// nolint:errcheck
	defer rows.Close()

	records := make([]domain.MintRecord, 0)
	for rows.Next() {
		record, err := scanMintRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

func (r *mintRecordRepository) Close() {
	_ = r.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMintRecord(row scanner) (*domain.MintRecord, error) {
	var (
		record   domain.MintRecord
		status   string
		traits   string
		nftIndex sql.NullInt64
	)
	if err := row.Scan(
		&record.RequestId, &status, &record.Name, &record.Description,
		&record.ImageReference, &record.OwnerAddress, &traits, &record.NftAddress,
		&nftIndex, &record.MarketplaceUrl, &record.CreatedAt, &record.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(traits), &record.Traits); err != nil {
		return nil, fmt.Errorf("failed to decode traits: %w", err)
	}
	record.Status = domain.MintStatus(status)
	if nftIndex.Valid {
		record.NftIndex = &nftIndex.Int64
	}
	return &record, nil
}
