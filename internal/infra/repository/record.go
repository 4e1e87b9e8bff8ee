package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"airdrop-service/internal/domain"
	"airdrop-service/internal/infra/database/models"
)

type AirdropRecordRepository struct {
	db *gorm.DB
}

func NewAirdropRecordRepository(db *gorm.DB) *AirdropRecordRepository {
	return &AirdropRecordRepository{db: db}
}

func (r *AirdropRecordRepository) FindByIdentity(ctx context.Context, identity string) (*domain.AirdropRecord, error) {
	var row models.AirdropRecord
	err := r.db.WithContext(ctx).
		Where("identity = ?", identity).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, domain.Technical(domain.CodeRecordStore, "record lookup failed", err)
	}
	return fromModel(&row), nil
}

// InsertIfAbsent creates the row unless one already exists for the identity.
// The conflict target is the unique identity index, so two concurrent inserts
// resolve at the database and exactly one caller wins.
func (r *AirdropRecordRepository) InsertIfAbsent(ctx context.Context, record *domain.AirdropRecord) error {
	row := toModel(record)
	row.ID = uuid.New().String()

	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "identity"}},
		DoNothing: true,
	}).Create(row)
	if result.Error != nil {
		return domain.Technical(domain.CodeRecordStore, "record insert failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrAlreadyRegistered
	}

	record.ID = row.ID
	return nil
}

func (r *AirdropRecordRepository) Update(ctx context.Context, id string, patch domain.RecordPatch) error {
	updates := map[string]any{}
	if patch.ClaimTransactionHash != nil {
		updates["claim_transaction_hash"] = *patch.ClaimTransactionHash
	}
	if patch.Claimed != nil {
		updates["claimed"] = *patch.Claimed
	}
	if patch.ClaimedAmount != nil {
		updates["claimed_amount"] = *patch.ClaimedAmount
	}
	if len(updates) == 0 {
		return nil
	}

	query := r.db.WithContext(ctx).Model(&models.AirdropRecord{}).Where("id = ?", id)
	if patch.ClaimTransactionHash != nil {
		// The hash is write-once: never replace a checkpoint that already
		// points at a different transaction.
		query = query.Where("claim_transaction_hash IS NULL OR claim_transaction_hash = ?", *patch.ClaimTransactionHash)
	}

	result := query.Updates(updates)
	if result.Error != nil {
		return domain.Technical(domain.CodeRecordStore, "record update failed", result.Error)
	}
	if result.RowsAffected == 0 {
		return r.classifyUpdateMiss(ctx, id, patch)
	}
	return nil
}

// classifyUpdateMiss names the reason an update matched no rows: either the
// record does not exist, or the write-once hash guard refused to replace an
// already-checkpointed transaction hash.
func (r *AirdropRecordRepository) classifyUpdateMiss(ctx context.Context, id string, patch domain.RecordPatch) error {
	var row models.AirdropRecord
	if err := r.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		return domain.ErrRecordNotFound
	}
	return updateMissError(&row, patch)
}

func updateMissError(row *models.AirdropRecord, patch domain.RecordPatch) error {
	if patch.ClaimTransactionHash != nil &&
		row.ClaimTransactionHash != nil &&
		*row.ClaimTransactionHash != *patch.ClaimTransactionHash {
		return domain.Technical(domain.CodeRecordStore, "refusing to replace claim transaction hash "+*row.ClaimTransactionHash, nil)
	}
	return domain.ErrRecordNotFound
}

func (r *AirdropRecordRepository) ListPendingTransfers(ctx context.Context, limit int) ([]domain.AirdropRecord, error) {
	var rows []models.AirdropRecord
	err := r.db.WithContext(ctx).
		Where("claimed = false AND claim_transaction_hash IS NOT NULL").
		Order("mdate asc").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, domain.Technical(domain.CodeRecordStore, "pending transfer listing failed", err)
	}

	records := make([]domain.AirdropRecord, 0, len(rows))
	for i := range rows {
		records = append(records, *fromModel(&rows[i]))
	}
	return records, nil
}

func toModel(record *domain.AirdropRecord) *models.AirdropRecord {
	return &models.AirdropRecord{
		ID:                   record.ID,
		Identity:             record.Identity,
		Country:              record.Country,
		TermsAccepted:        record.TermsAccepted,
		TotalXPPoints:        record.TotalXPPoints,
		XPPointsBeforeCutoff: record.XPPointsBeforeCutoff,
		ClaimableAmount:      record.ClaimableAmount,
		Claimed:              record.Claimed,
		ClaimedAmount:        record.ClaimedAmount,
		ClaimTransactionHash: record.ClaimTransactionHash,
	}
}

func fromModel(row *models.AirdropRecord) *domain.AirdropRecord {
	return &domain.AirdropRecord{
		ID:                   row.ID,
		Identity:             row.Identity,
		Country:              row.Country,
		TermsAccepted:        row.TermsAccepted,
		TotalXPPoints:        row.TotalXPPoints,
		XPPointsBeforeCutoff: row.XPPointsBeforeCutoff,
		ClaimableAmount:      row.ClaimableAmount,
		Claimed:              row.Claimed,
		ClaimedAmount:        row.ClaimedAmount,
		ClaimTransactionHash: row.ClaimTransactionHash,
	}
}
