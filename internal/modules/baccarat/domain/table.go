package domain

import "time"

// TableStatus is the table's current phase in its repeating cycle
type TableStatus string

const (
	TableStatusBetting TableStatus = "betting"
	TableStatusDealing TableStatus = "dealing"
	TableStatusResult  TableStatus = "result"
)

// HistoryCap bounds the roadmap history kept per table
const HistoryCap = 60

// Table is one physical table. Status, CurrentRoundID and PhaseEndsAt
// are always mutated together, by the synchronizer only.
type Table struct {
	ID             string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Status         TableStatus `gorm:"type:varchar(16);not null" json:"status"`
	CurrentRoundID *string     `gorm:"type:varchar(64)" json:"current_round_id"`
	PhaseEndsAt    *time.Time  `json:"phase_ends_at"`
	History        string      `gorm:"type:varchar(128);not null;default:''" json:"history"`
	CreatedAt      time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time   `gorm:"not null" json:"updated_at"`
}

// TableName overrides the table name
func (Table) TableName() string {
	return "baccarat_tables"
}

// NeedsAdvance reports whether the table requires a transactional
// advancement: no active round, or the current phase deadline passed.
func (t *Table) NeedsAdvance(now time.Time) bool {
	if t.CurrentRoundID == nil || t.PhaseEndsAt == nil {
		return true
	}
	return !now.Before(*t.PhaseEndsAt)
}

// AppendHistory appends a result letter, evicting the oldest entries
// past HistoryCap
func (t *Table) AppendHistory(letter string) {
	h := t.History + letter
	if len(h) > HistoryCap {
		h = h[len(h)-HistoryCap:]
	}
	t.History = h
}
