package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/frankieli/baccarat_table/internal/modules/baccarat/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynchronizeCreatesTableLazily(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()

	snap, err := e.sync.Synchronize(ctx, "t-lazy")
	require.NoError(t, err)
	require.NotNil(t, snap.Table)
	assert.Equal(t, domain.TableStatusBetting, snap.Table.Status)
	// First-ever initialization does not also open a round.
	assert.Nil(t, snap.Table.CurrentRoundID)
	require.NotNil(t, snap.Table.PhaseEndsAt)

	snap, err = e.sync.Synchronize(ctx, "t-lazy")
	require.NoError(t, err)
	require.NotNil(t, snap.Table.CurrentRoundID)
	assert.Equal(t, domain.TableStatusBetting, snap.Table.Status)
}

func TestSynchronizeFastPathIsIdempotent(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()
	table := e.openTable(t, "t-idem")

	before := *table

	e.clock.Advance(time.Second) // still inside the betting window
	for i := 0; i < 5; i++ {
		snap, err := e.sync.Synchronize(ctx, "t-idem")
		require.NoError(t, err)
		assert.Equal(t, *before.CurrentRoundID, *snap.Table.CurrentRoundID)
		assert.True(t, before.PhaseEndsAt.Equal(*snap.Table.PhaseEndsAt))
		assert.Equal(t, before.Status, snap.Table.Status)
	}
}

func TestAdvanceBettingToDealing(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()
	table := e.openTable(t, "t-deal")
	roundID := *table.CurrentRoundID

	e.clock.Set(*table.PhaseEndsAt) // now == phaseEndsAt counts as expired

	snap, err := e.sync.Synchronize(ctx, "t-deal")
	require.NoError(t, err)
	assert.Equal(t, domain.TableStatusDealing, snap.Table.Status)
	assert.Equal(t, roundID, *snap.Table.CurrentRoundID)
	assert.True(t, snap.Table.PhaseEndsAt.Equal(table.PhaseEndsAt.Add(testGame.DealingWindow)))

	require.NotNil(t, snap.Round)
	assert.Equal(t, roundID, snap.Round.ID)
	assert.GreaterOrEqual(t, len(snap.Round.PlayerCards), 2)
	assert.GreaterOrEqual(t, snap.Round.PlayerScore, 0)
	assert.LessOrEqual(t, snap.Round.BankerScore, 9)
}

func TestConcurrentSyncSingleAdvancer(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()
	table := e.openTable(t, "t-race")
	roundID := *table.CurrentRoundID

	e.clock.Set(*table.PhaseEndsAt)

	const callers = 16
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.sync.Synchronize(ctx, "t-race")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Exactly one caller performed the transition: one round row, one
	// phase step.
	var roundCount int64
	require.NoError(t, e.db.Model(&domain.Round{}).Where("id = ?", roundID).Count(&roundCount).Error)
	assert.Equal(t, int64(1), roundCount)

	after, err := e.tables.Get(ctx, "t-race")
	require.NoError(t, err)
	assert.Equal(t, domain.TableStatusDealing, after.Status)
	assert.True(t, after.PhaseEndsAt.Equal(table.PhaseEndsAt.Add(testGame.DealingWindow)))
}

// seedResultPhase crafts a table sitting at the end of its result
// phase with a known round outcome, so settlement is deterministic.
func seedResultPhase(t *testing.T, e *engine, tableID string, hand domain.Hand) (*domain.Table, *domain.Round) {
	t.Helper()
	ctx := context.Background()

	round := domain.NewRound(domain.GenerateID(), tableID, hand)
	require.NoError(t, e.rounds.Create(ctx, round))

	endsAt := e.clock.Now()
	table := &domain.Table{
		ID:             tableID,
		Status:         domain.TableStatusResult,
		CurrentRoundID: &round.ID,
		PhaseEndsAt:    &endsAt,
	}
	require.NoError(t, e.tables.Create(ctx, table))
	return table, round
}

func TestSettlementExactlyOnce(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()

	playerWin := domain.Hand{
		PlayerCards: domain.Cards{{Rank: 4, Point: 4}, {Rank: 5, Point: 5}},
		BankerCards: domain.Cards{{Rank: 2, Point: 2}, {Rank: 11, Point: 0}},
		PlayerScore: 9,
		BankerScore: 2,
	}
	_, round := seedResultPhase(t, e, "t-settle", playerWin)

	wagerWin := domain.NewWager("t-settle", round.ID, 1001, domain.ZonePlayer, 100)
	wagerLose := domain.NewWager("t-settle", round.ID, 1002, domain.ZoneTie, 100)
	require.NoError(t, e.wagers.Create(ctx, wagerWin))
	require.NoError(t, e.wagers.Create(ctx, wagerLose))

	snap, err := e.sync.Synchronize(ctx, "t-settle")
	require.NoError(t, err)

	// Round advances into a fresh betting phase and the result letter
	// enters the history.
	assert.Equal(t, domain.TableStatusBetting, snap.Table.Status)
	assert.NotEqual(t, round.ID, *snap.Table.CurrentRoundID)
	assert.Equal(t, "P", snap.Table.History)

	// Winner credited 2x, loser untouched.
	assert.Equal(t, int64(200), e.balance(t, 1001))
	assert.Equal(t, int64(0), e.balance(t, 1002))

	var unresolved int64
	require.NoError(t, e.db.Model(&domain.Wager{}).
		Where("round_id = ? AND is_resolved = false", round.ID).Count(&unresolved).Error)
	assert.Zero(t, unresolved)

	// Settlement never reruns: further syncs leave balances alone.
	e.clock.Advance(time.Second)
	_, err = e.sync.Synchronize(ctx, "t-settle")
	require.NoError(t, err)
	assert.Equal(t, int64(200), e.balance(t, 1001))

	var winLogs int64
	require.NoError(t, e.db.Table("point_logs").
		Where("user_id = ? AND reason = ?", 1001, "win:"+round.ID).Count(&winLogs).Error)
	assert.Equal(t, int64(1), winLogs)
}

func TestSettlementTiePushesMainZones(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()

	tie := domain.Hand{
		PlayerCards: domain.Cards{{Rank: 3, Point: 3}, {Rank: 3, Point: 3}},
		BankerCards: domain.Cards{{Rank: 2, Point: 2}, {Rank: 4, Point: 4}},
		PlayerScore: 6,
		BankerScore: 6,
	}
	_, round := seedResultPhase(t, e, "t-push", tie)

	require.NoError(t, e.wagers.Create(ctx, domain.NewWager("t-push", round.ID, 2001, domain.ZoneTie, 100)))
	require.NoError(t, e.wagers.Create(ctx, domain.NewWager("t-push", round.ID, 2002, domain.ZonePlayer, 50)))

	_, err := e.sync.Synchronize(ctx, "t-push")
	require.NoError(t, err)

	assert.Equal(t, int64(900), e.balance(t, 2001)) // tie pays 9x
	assert.Equal(t, int64(50), e.balance(t, 2002))  // push refunds the stake

	table, err := e.tables.Get(ctx, "t-push")
	require.NoError(t, err)
	assert.Equal(t, "T", table.History)
}

func TestCatchUpReplaysMissedPhases(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()
	table := e.openTable(t, "t-catchup")

	// Two whole cycles elapse while nobody polls.
	e.clock.Set(table.PhaseEndsAt.Add(2 * testGame.CycleLength()))

	snap, err := e.sync.Synchronize(ctx, "t-catchup")
	require.NoError(t, err)

	// Both missed rounds settled into history and a third was dealt.
	assert.Len(t, snap.Table.History, 2)
	assert.Equal(t, domain.TableStatusDealing, snap.Table.Status)
	assert.True(t, e.clock.Now().Before(*snap.Table.PhaseEndsAt))

	var rounds int64
	require.NoError(t, e.db.Model(&domain.Round{}).Where("table_id = ?", "t-catchup").Count(&rounds).Error)
	assert.Equal(t, int64(3), rounds)
}

func TestCatchUpFastForwardsExtremeBacklog(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()
	table := e.openTable(t, "t-backlog")

	// Backlog far past the per-call replay bound.
	e.clock.Set(table.PhaseEndsAt.Add(200 * testGame.CycleLength()))

	snap, err := e.sync.Synchronize(ctx, "t-backlog")
	require.NoError(t, err)

	// The clock fast-forwarded by whole cycles and replayed only the
	// tail, so the table is live again with a short history.
	assert.True(t, e.clock.Now().Before(*snap.Table.PhaseEndsAt))
	assert.LessOrEqual(t, len(snap.Table.History), 2)
}

type recordingPublisher struct {
	published chan string
}

func (p *recordingPublisher) Publish(ctx context.Context, tableID string, snapshot *Snapshot) {
	p.published <- tableID
}

func TestPublishOnlyOnMutation(t *testing.T) {
	pub := &recordingPublisher{published: make(chan string, 8)}
	e := newEngine(t, pub)
	ctx := context.Background()

	_, err := e.sync.Synchronize(ctx, "t-pub")
	require.NoError(t, err)

	select {
	case id := <-pub.published:
		assert.Equal(t, "t-pub", id)
	case <-time.After(time.Second):
		t.Fatal("expected a publish after state mutation")
	}

	// Fast path must not publish.
	_, err = e.sync.Synchronize(ctx, "t-pub")
	require.NoError(t, err) // opens the round, publishes again
	<-pub.published

	e.clock.Advance(time.Second)
	_, err = e.sync.Synchronize(ctx, "t-pub")
	require.NoError(t, err)

	select {
	case <-pub.published:
		t.Fatal("fast path must not publish")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHistoryStaysBounded(t *testing.T) {
	e := newEngine(t, nil)
	ctx := context.Background()

	endsAt := e.clock.Now()
	roundID := domain.GenerateID()
	table := &domain.Table{
		ID:             "t-history",
		Status:         domain.TableStatusBetting,
		CurrentRoundID: &roundID,
		PhaseEndsAt:    &endsAt,
	}
	for i := 0; i < domain.HistoryCap+5; i++ {
		table.AppendHistory("B")
	}
	require.NoError(t, e.tables.Create(ctx, table))

	e.clock.Set(endsAt.Add(testGame.CycleLength()))
	snap, err := e.sync.Synchronize(ctx, "t-history")
	require.NoError(t, err)
	assert.LessOrEqual(t, len(snap.Table.History), domain.HistoryCap)
}
