// Package usecase implements the business logic of the baccarat table
// engine: the pull-driven table synchronizer and the bet ledger.
package usecase

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/frankieli/baccarat_table/internal/config"
	"github.com/frankieli/baccarat_table/internal/modules/baccarat/domain"
	repo "github.com/frankieli/baccarat_table/internal/modules/baccarat/repository/db"
	"github.com/frankieli/baccarat_table/internal/modules/points"
	"github.com/frankieli/baccarat_table/pkg/logger"
	"gorm.io/gorm"
)

// Publisher pushes a state snapshot to all subscribers of a table.
// Best-effort: implementations swallow failures and never block.
type Publisher interface {
	Publish(ctx context.Context, tableID string, snapshot *Snapshot)
}

// Snapshot is the table view returned to clients and fanned out on
// every state change
type Snapshot struct {
	Table        *domain.Table `json:"table"`
	Round        *domain.Round `json:"round,omitempty"`
	ServerTimeMs int64         `json:"server_time_ms"`
}

// SyncUseCase advances the shared table clock. No background process
// drives the game: every inbound request calls Synchronize, and
// whichever caller arrives after a deadline becomes the advancer.
type SyncUseCase struct {
	db        *gorm.DB
	tables    *repo.TableRepository
	rounds    *repo.RoundRepository
	wagers    *repo.WagerRepository
	ledger    points.Ledger
	publisher Publisher
	game      config.GameConfig

	rndMu sync.Mutex
	rnd   *rand.Rand

	now func() time.Time
}

// NewSyncUseCase creates the table synchronizer
func NewSyncUseCase(
	db *gorm.DB,
	tables *repo.TableRepository,
	rounds *repo.RoundRepository,
	wagers *repo.WagerRepository,
	ledger points.Ledger,
	publisher Publisher,
	game config.GameConfig,
) *SyncUseCase {
	return &SyncUseCase{
		db:        db,
		tables:    tables,
		rounds:    rounds,
		wagers:    wagers,
		ledger:    ledger,
		publisher: publisher,
		game:      game,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		now:       time.Now,
	}
}

// Synchronize guarantees the table is not stuck in an expired phase and
// returns the current snapshot. Idempotent and safe under concurrent
// callers: at most one of them advances, the rest read.
func (uc *SyncUseCase) Synchronize(ctx context.Context, tableID string) (*Snapshot, error) {
	now := uc.now()

	// Read-mostly fast path: no lock, no transaction.
	table, err := uc.tables.Get(ctx, tableID)
	if err != nil {
		return nil, err
	}
	if table != nil && !table.NeedsAdvance(now) {
		return uc.snapshot(ctx, table)
	}

	advanced := false
	err = uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mutated, txErr := uc.advance(ctx, tx, tableID)
		advanced = mutated
		return txErr
	})
	if err != nil {
		return nil, err
	}

	table, err = uc.tables.Get(ctx, tableID)
	if err != nil {
		return nil, err
	}
	snap, err := uc.snapshot(ctx, table)
	if err != nil {
		return nil, err
	}

	if advanced && uc.publisher != nil {
		go func(s *Snapshot) {
			pubCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			uc.publisher.Publish(pubCtx, tableID, s)
		}(snap)
	}
	return snap, nil
}

// advance runs inside one transaction and reports whether it mutated
// state. Losing the advancement lock is not an error.
func (uc *SyncUseCase) advance(ctx context.Context, tx *gorm.DB, tableID string) (bool, error) {
	tables := uc.tables.WithTx(tx)

	acquired, err := tables.TryAdvancementLock(ctx, tableID)
	if err != nil {
		return false, err
	}
	if !acquired {
		// Another caller is mid-advancement; it will publish when done.
		logger.Debug(ctx).Str("table_id", tableID).Msg("advancement lock held elsewhere, returning last-known state")
		return false, nil
	}

	now := uc.now()

	// Re-read under the lock: the table may have been created or
	// advanced while we waited for the transaction to open.
	table, err := tables.Get(ctx, tableID)
	if err != nil {
		return false, err
	}

	if table == nil {
		// First-ever initialization never also resolves a round.
		endsAt := now.Add(uc.game.BettingWindow)
		table = &domain.Table{
			ID:          tableID,
			Status:      domain.TableStatusBetting,
			PhaseEndsAt: &endsAt,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		logger.Info(ctx).Str("table_id", tableID).Msg("table created")
		return true, tables.Create(ctx, table)
	}

	if table.CurrentRoundID == nil || table.PhaseEndsAt == nil {
		roundID := domain.GenerateID()
		endsAt := now.Add(uc.game.BettingWindow)
		table.Status = domain.TableStatusBetting
		table.CurrentRoundID = &roundID
		table.PhaseEndsAt = &endsAt
		logger.Info(ctx).Str("table_id", tableID).Str("round_id", roundID).Msg("round opened")
		return true, tables.Save(ctx, table)
	}

	if now.Before(*table.PhaseEndsAt) {
		// Another caller advanced between the cheap read and the lock grant.
		return false, nil
	}

	if err := uc.catchUp(ctx, tx, table, now); err != nil {
		return false, err
	}
	return true, tables.Save(ctx, table)
}

// catchUp replays the state machine one phase at a time until the table
// is live again, bounded per call. When the backlog spans many whole
// cycles the deadline is fast-forwarded first, so only the most recent
// rounds enter the history.
func (uc *SyncUseCase) catchUp(ctx context.Context, tx *gorm.DB, table *domain.Table, now time.Time) error {
	cycle := uc.game.CycleLength()
	if lag := now.Sub(*table.PhaseEndsAt); lag > cycle*time.Duration(uc.game.MaxCatchUpSteps) {
		skipped := int64(lag/cycle) - 1
		fastForwarded := table.PhaseEndsAt.Add(time.Duration(skipped) * cycle)
		table.PhaseEndsAt = &fastForwarded
		logger.Warn(ctx).
			Str("table_id", table.ID).
			Int64("skipped_cycles", skipped).
			Msg("extreme backlog, fast-forwarding table clock")
	}

	for steps := 0; !now.Before(*table.PhaseEndsAt) && steps < uc.game.MaxCatchUpSteps; steps++ {
		if err := uc.advanceOnePhase(ctx, tx, table); err != nil {
			return err
		}
	}
	return nil
}

// advanceOnePhase performs a single transition of the
// betting -> dealing -> result -> betting cycle
func (uc *SyncUseCase) advanceOnePhase(ctx context.Context, tx *gorm.DB, table *domain.Table) error {
	switch table.Status {
	case domain.TableStatusBetting:
		uc.rndMu.Lock()
		hand := domain.DealHand(uc.rnd)
		uc.rndMu.Unlock()

		round := domain.NewRound(*table.CurrentRoundID, table.ID, hand)
		if err := uc.rounds.WithTx(tx).Create(ctx, round); err != nil {
			return err
		}
		table.Status = domain.TableStatusDealing
		uc.extendDeadline(table, uc.game.DealingWindow)

		logger.Info(ctx).
			Str("table_id", table.ID).
			Str("round_id", round.ID).
			Int("player_score", round.PlayerScore).
			Int("banker_score", round.BankerScore).
			Str("result", string(round.Result)).
			Msg("hand dealt")

	case domain.TableStatusDealing:
		table.Status = domain.TableStatusResult
		uc.extendDeadline(table, uc.game.ResultWindow)

	case domain.TableStatusResult:
		if err := uc.settleRound(ctx, tx, table); err != nil {
			return err
		}
		roundID := domain.GenerateID()
		table.CurrentRoundID = &roundID
		table.Status = domain.TableStatusBetting
		uc.extendDeadline(table, uc.game.BettingWindow)

		logger.Info(ctx).
			Str("table_id", table.ID).
			Str("round_id", roundID).
			Msg("round opened")
	}
	return nil
}

// extendDeadline advances the phase deadline from its previous value so
// the table clock stays aligned to the cycle, not to call arrival times
func (uc *SyncUseCase) extendDeadline(table *domain.Table, window time.Duration) {
	endsAt := table.PhaseEndsAt.Add(window)
	table.PhaseEndsAt = &endsAt
}

// settleRound pays out the just-finished round exactly once: payouts
// are computed from the unresolved wagers read in the same transaction
// that flips them to resolved.
func (uc *SyncUseCase) settleRound(ctx context.Context, tx *gorm.DB, table *domain.Table) error {
	roundID := *table.CurrentRoundID
	round, err := uc.rounds.WithTx(tx).Get(ctx, roundID)
	if err != nil {
		return err
	}
	if round == nil {
		// Round row was never dealt; nothing to settle.
		return nil
	}

	wagers, err := uc.wagers.WithTx(tx).ListUnresolvedByRound(ctx, roundID)
	if err != nil {
		return err
	}

	playerPair := round.PlayerCards.HasPair()
	bankerPair := round.BankerCards.HasPair()

	winnings := make(map[int64]int64)
	for _, wager := range wagers {
		win := domain.CalculatePayout(wager.Zone, wager.Amount, round.Result, playerPair, bankerPair)
		if win > 0 {
			winnings[wager.UserID] += win
		}
	}

	for userID, amount := range winnings {
		if _, err := uc.ledger.Credit(ctx, tx, userID, amount, "win:"+roundID); err != nil {
			return err
		}
	}

	resolved, err := uc.wagers.WithTx(tx).ResolveRound(ctx, roundID, uc.now())
	if err != nil {
		return err
	}

	table.AppendHistory(round.Result.Letter())

	logger.Info(ctx).
		Str("table_id", table.ID).
		Str("round_id", roundID).
		Str("result", string(round.Result)).
		Int64("wagers_resolved", resolved).
		Int("winners", len(winnings)).
		Msg("round settled")
	return nil
}

// snapshot builds the client view. The round row is attached outside
// the betting phase, once cards exist.
func (uc *SyncUseCase) snapshot(ctx context.Context, table *domain.Table) (*Snapshot, error) {
	snap := &Snapshot{
		Table:        table,
		ServerTimeMs: uc.now().UnixMilli(),
	}
	if table != nil && table.Status != domain.TableStatusBetting && table.CurrentRoundID != nil {
		round, err := uc.rounds.Get(ctx, *table.CurrentRoundID)
		if err != nil {
			return nil, err
		}
		snap.Round = round
	}
	return snap, nil
}
