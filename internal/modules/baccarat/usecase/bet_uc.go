package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/frankieli/baccarat_table/internal/modules/baccarat/domain"
	repo "github.com/frankieli/baccarat_table/internal/modules/baccarat/repository/db"
	"github.com/frankieli/baccarat_table/internal/modules/points"
	"github.com/frankieli/baccarat_table/pkg/logger"
	"gorm.io/gorm"
)

// betRetries bounds resync-and-retry after hitting a transitioning
// round: the original attempt plus exactly one retry.
const betRetries = 2

// BetUseCase is the bet ledger: short transactions that debit or credit
// the player balance together with wager row changes, guarded against
// acting on a stale or transitioning round.
type BetUseCase struct {
	db     *gorm.DB
	sync   *SyncUseCase
	tables *repo.TableRepository
	wagers *repo.WagerRepository
	ledger points.Ledger

	now func() time.Time
}

// NewBetUseCase creates the bet ledger
func NewBetUseCase(
	db *gorm.DB,
	sync *SyncUseCase,
	tables *repo.TableRepository,
	wagers *repo.WagerRepository,
	ledger points.Ledger,
) *BetUseCase {
	return &BetUseCase{
		db:     db,
		sync:   sync,
		tables: tables,
		wagers: wagers,
		ledger: ledger,
		now:    time.Now,
	}
}

// PlaceBet stakes amount on a zone for the table's current round.
// Transient contention (round transitioning) is absorbed by one
// resync-and-retry; all other failures are terminal.
func (uc *BetUseCase) PlaceBet(ctx context.Context, tableID string, userID int64, zone domain.Zone, amount int64) (int64, error) {
	ctx = logger.WithFields(ctx, map[string]interface{}{
		"table_id": tableID,
		"user_id":  userID,
	})

	var balance int64
	var err error
	for attempt := 0; attempt < betRetries; attempt++ {
		// Synchronize first so the table is not stuck in an expired phase.
		if _, err = uc.sync.Synchronize(ctx, tableID); err != nil {
			return 0, err
		}

		balance, err = uc.placeBetOnce(ctx, tableID, userID, zone, amount)
		if !errors.Is(err, domain.ErrNeedsResync) {
			break
		}
		logger.Debug(ctx).Int("attempt", attempt+1).Msg("round transitioning, resyncing before retry")
	}
	if err != nil {
		return 0, err
	}

	logger.Info(ctx).
		Str("zone", string(zone)).
		Int64("amount", amount).
		Int64("balance", balance).
		Msg("bet placed")
	return balance, nil
}

func (uc *BetUseCase) placeBetOnce(ctx context.Context, tableID string, userID int64, zone domain.Zone, amount int64) (int64, error) {
	var balance int64
	err := uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, roundID, err := uc.lockLiveRound(ctx, tx, tableID)
		if err != nil {
			return err
		}
		if table.Status != domain.TableStatusBetting {
			return domain.ErrNotBetting
		}

		balance, err = uc.ledger.DebitIfSufficient(ctx, tx, userID, amount, "bet:"+roundID)
		if errors.Is(err, points.ErrInsufficient) {
			return domain.ErrInsufficientPoints
		}
		if err != nil {
			return err
		}

		wagers := uc.wagers.WithTx(tx)
		existing, err := wagers.FindUnresolved(ctx, roundID, userID, zone)
		if err != nil {
			return err
		}
		if existing != nil {
			return wagers.AddAmount(ctx, existing.ID, amount)
		}
		return wagers.Create(ctx, domain.NewWager(tableID, roundID, userID, zone, amount))
	})
	return balance, err
}

// ClearBets removes all of the user's unresolved wagers for the current
// round and refunds their sum. Success with no balance change when
// there is nothing to clear.
func (uc *BetUseCase) ClearBets(ctx context.Context, tableID string, userID int64) (int64, error) {
	ctx = logger.WithFields(ctx, map[string]interface{}{
		"table_id": tableID,
		"user_id":  userID,
	})

	var balance int64
	var err error
	for attempt := 0; attempt < betRetries; attempt++ {
		if _, err = uc.sync.Synchronize(ctx, tableID); err != nil {
			return 0, err
		}

		balance, err = uc.clearBetsOnce(ctx, tableID, userID)
		if !errors.Is(err, domain.ErrNeedsResync) {
			break
		}
		logger.Debug(ctx).Int("attempt", attempt+1).Msg("round transitioning, resyncing before retry")
	}
	if err != nil {
		return 0, err
	}

	logger.Info(ctx).Int64("balance", balance).Msg("bets cleared")
	return balance, nil
}

func (uc *BetUseCase) clearBetsOnce(ctx context.Context, tableID string, userID int64) (int64, error) {
	var balance int64
	err := uc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		table, roundID, err := uc.lockLiveRound(ctx, tx, tableID)
		if err != nil {
			return err
		}
		if table.Status != domain.TableStatusBetting {
			return domain.ErrNotBetting
		}

		wagers := uc.wagers.WithTx(tx)
		pending, err := wagers.ListUnresolvedByUser(ctx, roundID, userID)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			balance, err = uc.ledger.GetBalance(ctx, tx, userID)
			return err
		}

		var refund int64
		for _, wager := range pending {
			refund += wager.Amount
		}
		if err := wagers.DeleteUnresolvedByUser(ctx, roundID, userID); err != nil {
			return err
		}
		balance, err = uc.ledger.Credit(ctx, tx, userID, refund, "refund:"+roundID)
		return err
	})
	return balance, err
}

// lockLiveRound takes the blocking row lock on the table and verifies
// the round is live. A missing round or an expired deadline (the
// boundary instant included) reads as transitioning.
func (uc *BetUseCase) lockLiveRound(ctx context.Context, tx *gorm.DB, tableID string) (*domain.Table, string, error) {
	table, err := uc.tables.WithTx(tx).GetForUpdate(ctx, tableID)
	if err != nil {
		return nil, "", err
	}
	if table == nil || table.CurrentRoundID == nil || table.PhaseEndsAt == nil {
		return nil, "", domain.ErrNeedsResync
	}
	if !uc.now().Before(*table.PhaseEndsAt) {
		return nil, "", domain.ErrNeedsResync
	}
	return table, *table.CurrentRoundID, nil
}

// PlayerState returns the caller's unresolved wagers for the current
// round plus their balance, for the sync response
func (uc *BetUseCase) PlayerState(ctx context.Context, tableID string, userID int64) ([]*domain.Wager, int64, error) {
	table, err := uc.tables.Get(ctx, tableID)
	if err != nil {
		return nil, 0, err
	}

	var wagers []*domain.Wager
	if table != nil && table.CurrentRoundID != nil {
		wagers, err = uc.wagers.ListUnresolvedByUser(ctx, *table.CurrentRoundID, userID)
		if err != nil {
			return nil, 0, err
		}
	}

	balance, err := uc.ledger.GetBalance(ctx, uc.db, userID)
	if err != nil {
		return nil, 0, err
	}
	return wagers, balance, nil
}
