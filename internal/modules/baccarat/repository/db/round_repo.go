package db

import (
	"context"
	"errors"

	"github.com/frankieli/baccarat_table/internal/modules/baccarat/domain"
	"gorm.io/gorm"
)

// RoundRepository persists round rows. Rounds are immutable after insert.
type RoundRepository struct {
	db *gorm.DB
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *gorm.DB) *RoundRepository {
	return &RoundRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle
func (r *RoundRepository) WithTx(tx *gorm.DB) *RoundRepository {
	return &RoundRepository{db: tx}
}

// Create inserts a round row
func (r *RoundRepository) Create(ctx context.Context, round *domain.Round) error {
	return r.db.WithContext(ctx).Create(round).Error
}

// Get reads a round row; returns (nil, nil) when it does not exist
func (r *RoundRepository) Get(ctx context.Context, id string) (*domain.Round, error) {
	var round domain.Round
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&round).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &round, nil
}
