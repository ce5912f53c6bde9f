package points

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// Store implements Ledger against the shared SQL store. Balance reads
// never happen without a guarding predicate: the debit condition lives
// in the UPDATE itself, so concurrent bets cannot double-spend.
type Store struct{}

// NewStore creates a new points store
func NewStore() *Store {
	return &Store{}
}

// DebitIfSufficient atomically deducts amount when the balance covers
// it. Returns ErrInsufficient when the conditional update matches no row.
func (s *Store) DebitIfSufficient(ctx context.Context, db *gorm.DB, userID, amount int64, reason string) (int64, error) {
	res := db.WithContext(ctx).Model(&UserPoints{}).
		Where("user_id = ? AND balance >= ?", userID, amount).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance - ?", amount),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrInsufficient
	}

	balance, err := s.GetBalance(ctx, db, userID)
	if err != nil {
		return 0, err
	}
	return balance, s.log(ctx, db, userID, -amount, balance, reason)
}

// Credit atomically adds amount, creating the balance row if absent
func (s *Store) Credit(ctx context.Context, db *gorm.DB, userID, amount int64, reason string) (int64, error) {
	res := db.WithContext(ctx).Model(&UserPoints{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"balance":    gorm.Expr("balance + ?", amount),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		row := &UserPoints{UserID: userID, Balance: amount, UpdatedAt: time.Now()}
		if err := db.WithContext(ctx).Create(row).Error; err != nil {
			return 0, err
		}
		return amount, s.log(ctx, db, userID, amount, amount, reason)
	}

	balance, err := s.GetBalance(ctx, db, userID)
	if err != nil {
		return 0, err
	}
	return balance, s.log(ctx, db, userID, amount, balance, reason)
}

// GetBalance reads the current balance; missing row reads as zero
func (s *Store) GetBalance(ctx context.Context, db *gorm.DB, userID int64) (int64, error) {
	var row UserPoints
	err := db.WithContext(ctx).Where("user_id = ?", userID).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Balance, nil
}

func (s *Store) log(ctx context.Context, db *gorm.DB, userID, delta, balance int64, reason string) error {
	return db.WithContext(ctx).Create(&Entry{
		UserID:    userID,
		Delta:     delta,
		Balance:   balance,
		Reason:    reason,
		CreatedAt: time.Now(),
	}).Error
}
