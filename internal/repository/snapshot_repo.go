package repository

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	"github.com/noah-isme/pantau-go-api/internal/models"
)

// SnapshotRepository persists the ordered snapshot sequence. Rows are
// immutable once ingested; the only mutation after import is deleting a whole
// snapshot.
type SnapshotRepository interface {
	List(ctx context.Context) ([]models.Snapshot, error)
	ListMeta(ctx context.Context) ([]models.Snapshot, error)
	Create(ctx context.Context, name string, rows []models.RawRecord) (models.Snapshot, error)
	Delete(ctx context.Context, id uint) error
	NextPosition(ctx context.Context) (int, error)
	NormalizeLegacyRows(ctx context.Context) (bool, error)
}

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository constructs the snapshot repository.
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

func (r *snapshotRepository) List(ctx context.Context) ([]models.Snapshot, error) {
	var snapshots []models.Snapshot
	err := r.db.WithContext(ctx).
		Preload("Rows", func(db *gorm.DB) *gorm.DB { return db.Order("raw_records.id ASC") }).
		Order("position ASC").
		Find(&snapshots).Error
	return snapshots, err
}

// ListMeta returns the snapshot sequence without loading rows.
func (r *snapshotRepository) ListMeta(ctx context.Context) ([]models.Snapshot, error) {
	var snapshots []models.Snapshot
	err := r.db.WithContext(ctx).
		Order("position ASC").
		Find(&snapshots).Error
	return snapshots, err
}

func (r *snapshotRepository) Create(ctx context.Context, name string, rows []models.RawRecord) (models.Snapshot, error) {
	var snapshot models.Snapshot

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		position, err := nextPosition(tx)
		if err != nil {
			return err
		}

		snapshot = models.Snapshot{Name: name, Position: position, Rows: rows}
		return tx.Create(&snapshot).Error
	})

	return snapshot, err
}

func (r *snapshotRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("snapshot_id = ?", id).Delete(&models.RawRecord{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Snapshot{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *snapshotRepository) NextPosition(ctx context.Context) (int, error) {
	return nextPosition(r.db.WithContext(ctx))
}

// NormalizeLegacyRows wraps rows saved by the legacy flat format (no snapshot
// boundaries) into a single synthetic snapshot named "Week 1", positioned
// before everything imported since. Returns true when a snapshot was created.
func (r *snapshotRepository) NormalizeLegacyRows(ctx context.Context) (bool, error) {
	migrated := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var orphans []models.RawRecord
		if err := tx.Where("snapshot_id IS NULL").Order("id ASC").Find(&orphans).Error; err != nil {
			return err
		}
		if len(orphans) == 0 {
			return nil
		}

		var minPosition sql.NullInt64
		if err := tx.Model(&models.Snapshot{}).Select("MIN(position)").Scan(&minPosition).Error; err != nil {
			return err
		}
		position := 1
		if minPosition.Valid {
			position = int(minPosition.Int64) - 1
		}

		snapshot := models.Snapshot{Name: "Week 1", Position: position}
		if err := tx.Create(&snapshot).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.RawRecord{}).
			Where("snapshot_id IS NULL").
			Update("snapshot_id", snapshot.ID).Error; err != nil {
			return err
		}

		migrated = true
		return nil
	})

	return migrated, err
}

func nextPosition(tx *gorm.DB) (int, error) {
	var maxPosition sql.NullInt64
	err := tx.Model(&models.Snapshot{}).Select("MAX(position)").Scan(&maxPosition).Error
	if err != nil {
		return 0, err
	}
	if !maxPosition.Valid {
		return 1, nil
	}
	return int(maxPosition.Int64) + 1, nil
}
