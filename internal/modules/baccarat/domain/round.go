package domain

import "time"

// Result is the outcome of a resolved round
type Result string

const (
	ResultPlayer Result = "player"
	ResultBanker Result = "banker"
	ResultTie    Result = "tie"
)

// Letter returns the compact roadmap symbol for the result
func (r Result) Letter() string {
	switch r {
	case ResultPlayer:
		return "P"
	case ResultBanker:
		return "B"
	case ResultTie:
		return "T"
	}
	return "?"
}

// Round is one dealt hand. Immutable once inserted.
type Round struct {
	ID          string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	TableID     string    `gorm:"type:varchar(64);not null;index:idx_baccarat_rounds_table_id" json:"table_id"`
	PlayerCards Cards     `gorm:"serializer:json;type:text;not null" json:"player_cards"`
	BankerCards Cards     `gorm:"serializer:json;type:text;not null" json:"banker_cards"`
	PlayerScore int       `gorm:"not null" json:"player_score"`
	BankerScore int       `gorm:"not null" json:"banker_score"`
	Result      Result    `gorm:"type:varchar(16);not null" json:"result"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
}

// TableName overrides the table name
func (Round) TableName() string {
	return "baccarat_rounds"
}

// NewRound creates a round row from a dealt hand. The id was minted
// when the betting phase opened; the row exists only once cards are dealt.
func NewRound(id, tableID string, hand Hand) *Round {
	return &Round{
		ID:          id,
		TableID:     tableID,
		PlayerCards: hand.PlayerCards,
		BankerCards: hand.BankerCards,
		PlayerScore: hand.PlayerScore,
		BankerScore: hand.BankerScore,
		Result:      hand.Result(),
		CreatedAt:   time.Now(),
	}
}
