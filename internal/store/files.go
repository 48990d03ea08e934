package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quickcdn/qcdn/internal/models"
)

var (
	// ErrNotFound — no live (non-deleted) record under the id.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateID — a record with the id already exists. Practically
	// unreachable with generated UUIDs, but handled rather than assumed away.
	ErrDuplicateID = errors.New("duplicate id")
)

// Files is the file-record repository. Every read filters soft-deleted rows;
// a deleted record is invisible to all lookup paths.
type Files struct {
	db *gorm.DB
}

func NewFiles(db *gorm.DB) *Files {
	return &Files{db: db}
}

// Create inserts a new record. The id must be unique across the store's
// lifetime; a collision yields ErrDuplicateID.
func (f *Files) Create(ctx context.Context, rec *models.FileRecord) error {
	err := f.db.WithContext(ctx).Create(rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateID
		}
		return fmt.Errorf("create file record: %w", err)
	}
	return nil
}

// Get returns the live record under id, or ErrNotFound if the id is unknown
// or soft-deleted.
func (f *Files) Get(ctx context.Context, id uuid.UUID) (*models.FileRecord, error) {
	var rec models.FileRecord
	err := f.db.WithContext(ctx).
		Where("id = ? AND deleted = ?", id, false).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get file record: %w", err)
	}
	return &rec, nil
}

// ListAll returns every live record. Order is unspecified; presentation
// ordering is the caller's concern.
func (f *Files) ListAll(ctx context.Context) ([]models.FileRecord, error) {
	var recs []models.FileRecord
	err := f.db.WithContext(ctx).Where("deleted = ?", false).Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list file records: %w", err)
	}
	return recs, nil
}

// ListByOwner returns the live records owned by ownerID.
func (f *Files) ListByOwner(ctx context.Context, ownerID string) ([]models.FileRecord, error) {
	var recs []models.FileRecord
	err := f.db.WithContext(ctx).
		Where("owner_id = ? AND deleted = ?", ownerID, false).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("list file records by owner: %w", err)
	}
	return recs, nil
}

// QuotaUsed sums the sizes of the owner's live records. Derived on every
// call instead of keeping a counter that could drift; acceptable at the
// target scale and the obvious place for a cache later.
func (f *Files) QuotaUsed(ctx context.Context, ownerID string) (int64, error) {
	var total int64
	err := f.db.WithContext(ctx).
		Model(&models.FileRecord{}).
		Where("owner_id = ? AND deleted = ?", ownerID, false).
		Select("COALESCE(SUM(size), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("sum owner sizes: %w", err)
	}
	return total, nil
}

// SoftDelete marks the record deleted. The transition is one-way: deleting
// an already-deleted or unknown id returns ErrNotFound and never resurrects
// anything.
func (f *Files) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := f.db.WithContext(ctx).
		Model(&models.FileRecord{}).
		Where("id = ? AND deleted = ?", id, false).
		Update("deleted", true)
	if res.Error != nil {
		return fmt.Errorf("soft-delete file record: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Totals aggregates the live records for the stats view: count, cumulative
// size and the largest single file (0 over an empty set).
func (f *Files) Totals(ctx context.Context) (count, totalSize, largest int64, err error) {
	row := struct {
		Count   int64
		Total   int64
		Largest int64
	}{}
	err = f.db.WithContext(ctx).
		Model(&models.FileRecord{}).
		Where("deleted = ?", false).
		Select("COUNT(*) AS count, COALESCE(SUM(size), 0) AS total, COALESCE(MAX(size), 0) AS largest").
		Scan(&row).Error
	if err != nil {
		return 0, 0, 0, fmt.Errorf("aggregate file records: %w", err)
	}
	return row.Count, row.Total, row.Largest, nil
}
