package db

import (
	"context"
	"errors"
	"hash/fnv"

	"github.com/frankieli/baccarat_table/internal/modules/baccarat/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TableRepository persists table rows and owns the per-table
// advancement lock.
type TableRepository struct {
	db *gorm.DB
}

// NewTableRepository creates a new table repository
func NewTableRepository(db *gorm.DB) *TableRepository {
	return &TableRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle
func (r *TableRepository) WithTx(tx *gorm.DB) *TableRepository {
	return &TableRepository{db: tx}
}

// Get reads a table row; returns (nil, nil) when it does not exist
func (r *TableRepository) Get(ctx context.Context, id string) (*domain.Table, error) {
	var table domain.Table
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// GetForUpdate reads a table row under a blocking row lock. Bet
// operations serialize strictly after any in-flight advancement here.
func (r *TableRepository) GetForUpdate(ctx context.Context, id string) (*domain.Table, error) {
	var table domain.Table
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).Take(&table).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &table, nil
}

// Create inserts a table row
func (r *TableRepository) Create(ctx context.Context, table *domain.Table) error {
	return r.db.WithContext(ctx).Create(table).Error
}

// Save persists all fields of a table row
func (r *TableRepository) Save(ctx context.Context, table *domain.Table) error {
	return r.db.WithContext(ctx).Save(table).Error
}

// TryAdvancementLock attempts the non-blocking, transaction-scoped
// advancement right for a table. The lock is released automatically at
// commit or rollback. False means another caller is already advancing.
func (r *TableRepository) TryAdvancementLock(ctx context.Context, tableID string) (bool, error) {
	var acquired bool
	err := r.db.WithContext(ctx).
		Raw("SELECT pg_try_advisory_xact_lock(?)", advancementLockKey(tableID)).
		Scan(&acquired).Error
	if err != nil {
		return false, err
	}
	return acquired, nil
}

func advancementLockKey(tableID string) int64 {
	h := fnv.New64a()
	h.Write([]byte("baccarat:" + tableID))
	return int64(h.Sum64())
}
