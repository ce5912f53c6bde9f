package domain

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Wager accumulates a user's stake on one zone for one round. Repeated
// bets on the same zone top up the single unresolved row.
type Wager struct {
	ID         string     `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TableID    string     `gorm:"type:varchar(64);not null;index:idx_wagers_round,priority:1" json:"table_id"`
	RoundID    string     `gorm:"type:varchar(64);not null;index:idx_wagers_round,priority:2" json:"round_id"`
	UserID     int64      `gorm:"not null;index:idx_wagers_user_id" json:"user_id"`
	Zone       Zone       `gorm:"type:varchar(16);not null" json:"zone"`
	Amount     int64      `gorm:"not null" json:"amount"`
	IsResolved bool       `gorm:"not null;default:false" json:"is_resolved"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
	SettledAt  *time.Time `json:"settled_at"`
}

// TableName overrides the table name
func (Wager) TableName() string {
	return "baccarat_wagers"
}

// NewWager creates a new unresolved wager
func NewWager(tableID, roundID string, userID int64, zone Zone, amount int64) *Wager {
	return &Wager{
		ID:        GenerateID(),
		TableID:   tableID,
		RoundID:   roundID,
		UserID:    userID,
		Zone:      zone,
		Amount:    amount,
		CreatedAt: time.Now(),
	}
}

var (
	node *snowflake.Node
	once sync.Once
)

func initSnowflake() {
	var err error
	// TODO: Get NodeID from config or environment variable.
	// Each instance in a distributed deployment needs a unique NodeID.
	node, err = snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
}

// GenerateID mints a unique id for rounds and wagers
func GenerateID() string {
	once.Do(initSnowflake)
	return node.Generate().String()
}
