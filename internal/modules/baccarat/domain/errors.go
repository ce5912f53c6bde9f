package domain

import "errors"

var (
	// ErrNeedsResync signals the round was missing or transitioning;
	// the caller synchronizes the table and retries once.
	ErrNeedsResync = errors.New("round transitioning, resync required")

	// ErrNotBetting is terminal: the table is past the betting phase
	ErrNotBetting = errors.New("table is not in betting phase")

	// ErrInsufficientPoints is terminal: the conditional debit matched no row
	ErrInsufficientPoints = errors.New("insufficient points")
)
