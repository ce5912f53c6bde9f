// Package points is the balance-mutation contract of the points
// subsystem. The table engine consumes it through two primitives only:
// debit-if-sufficient and credit, both joining the caller's transaction.
package points

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrInsufficient is returned when a conditional debit matches no row
var ErrInsufficient = errors.New("insufficient point balance")

// Ledger mutates user point balances. Both operations run against the
// supplied db handle so they can join an open transaction, and both
// write a log entry alongside the balance change.
type Ledger interface {
	DebitIfSufficient(ctx context.Context, db *gorm.DB, userID, amount int64, reason string) (int64, error)
	Credit(ctx context.Context, db *gorm.DB, userID, amount int64, reason string) (int64, error)
	GetBalance(ctx context.Context, db *gorm.DB, userID int64) (int64, error)
}

// UserPoints is a user's point balance row
type UserPoints struct {
	UserID    int64     `gorm:"primaryKey" json:"user_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// TableName overrides the table name
func (UserPoints) TableName() string {
	return "user_points"
}

// Entry is one balance mutation in the payout/debit ledger
type Entry struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    int64     `gorm:"not null;index:idx_point_logs_user_id" json:"user_id"`
	Delta     int64     `gorm:"not null" json:"delta"`
	Balance   int64     `gorm:"not null" json:"balance"`
	Reason    string    `gorm:"type:varchar(128);not null" json:"reason"`
	CreatedAt time.Time `gorm:"not null;index:idx_point_logs_created_at" json:"created_at"`
}

// TableName overrides the table name
func (Entry) TableName() string {
	return "point_logs"
}
