package points

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// MockLedger implements Ledger in memory for tests
type MockLedger struct {
	balances map[int64]int64
	mu       sync.RWMutex
}

// NewMockLedger creates a new mock ledger
func NewMockLedger() *MockLedger {
	return &MockLedger{
		balances: make(map[int64]int64),
	}
}

// SetBalance sets the balance for a user (for testing)
func (m *MockLedger) SetBalance(userID int64, balance int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[userID] = balance
}

// DebitIfSufficient deducts when the balance covers the amount
func (m *MockLedger) DebitIfSufficient(ctx context.Context, db *gorm.DB, userID, amount int64, reason string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	balance := m.balances[userID]
	if balance < amount {
		return 0, ErrInsufficient
	}
	m.balances[userID] = balance - amount
	return balance - amount, nil
}

// Credit adds amount to the balance
func (m *MockLedger) Credit(ctx context.Context, db *gorm.DB, userID, amount int64, reason string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[userID] += amount
	return m.balances[userID], nil
}

// GetBalance returns the user's balance
func (m *MockLedger) GetBalance(ctx context.Context, db *gorm.DB, userID int64) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.balances[userID], nil
}
