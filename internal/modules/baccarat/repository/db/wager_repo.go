package db

import (
	"context"
	"errors"
	"time"

	"github.com/frankieli/baccarat_table/internal/modules/baccarat/domain"
	"gorm.io/gorm"
)

// WagerRepository persists wager rows
type WagerRepository struct {
	db *gorm.DB
}

// NewWagerRepository creates a new wager repository
func NewWagerRepository(db *gorm.DB) *WagerRepository {
	return &WagerRepository{db: db}
}

// WithTx returns a repository bound to the given transaction handle
func (r *WagerRepository) WithTx(tx *gorm.DB) *WagerRepository {
	return &WagerRepository{db: tx}
}

// Create inserts a wager row
func (r *WagerRepository) Create(ctx context.Context, wager *domain.Wager) error {
	return r.db.WithContext(ctx).Create(wager).Error
}

// FindUnresolved returns the single unresolved wager for a
// (round, user, zone) accumulation, or (nil, nil)
func (r *WagerRepository) FindUnresolved(ctx context.Context, roundID string, userID int64, zone domain.Zone) (*domain.Wager, error) {
	var wager domain.Wager
	err := r.db.WithContext(ctx).
		Where("round_id = ? AND user_id = ? AND zone = ? AND is_resolved = false", roundID, userID, zone).
		Take(&wager).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &wager, nil
}

// AddAmount tops up an unresolved wager additively
func (r *WagerRepository) AddAmount(ctx context.Context, wagerID string, amount int64) error {
	return r.db.WithContext(ctx).Model(&domain.Wager{}).
		Where("id = ? AND is_resolved = false", wagerID).
		Update("amount", gorm.Expr("amount + ?", amount)).Error
}

// ListUnresolvedByRound returns all unresolved wagers of a round, for settlement
func (r *WagerRepository) ListUnresolvedByRound(ctx context.Context, roundID string) ([]*domain.Wager, error) {
	var wagers []*domain.Wager
	err := r.db.WithContext(ctx).
		Where("round_id = ? AND is_resolved = false", roundID).
		Find(&wagers).Error
	return wagers, err
}

// ListUnresolvedByUser returns a user's unresolved wagers for a round
func (r *WagerRepository) ListUnresolvedByUser(ctx context.Context, roundID string, userID int64) ([]*domain.Wager, error) {
	var wagers []*domain.Wager
	err := r.db.WithContext(ctx).
		Where("round_id = ? AND user_id = ? AND is_resolved = false", roundID, userID).
		Find(&wagers).Error
	return wagers, err
}

// ResolveRound flips every unresolved wager of a round to resolved in
// one update. The returned count is the number of rows flipped.
func (r *WagerRepository) ResolveRound(ctx context.Context, roundID string, settledAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Wager{}).
		Where("round_id = ? AND is_resolved = false", roundID).
		Updates(map[string]interface{}{
			"is_resolved": true,
			"settled_at":  settledAt,
		})
	return res.RowsAffected, res.Error
}

// DeleteUnresolvedByUser removes a user's unresolved wagers for a round
func (r *WagerRepository) DeleteUnresolvedByUser(ctx context.Context, roundID string, userID int64) error {
	return r.db.WithContext(ctx).
		Where("round_id = ? AND user_id = ? AND is_resolved = false", roundID, userID).
		Delete(&domain.Wager{}).Error
}
