package domain

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDealHandScoresAlwaysInRange(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	for i := 0; i < 10000; i++ {
		hand := DealHand(rnd)
		assert.GreaterOrEqual(t, hand.PlayerScore, 0)
		assert.LessOrEqual(t, hand.PlayerScore, 9)
		assert.GreaterOrEqual(t, hand.BankerScore, 0)
		assert.LessOrEqual(t, hand.BankerScore, 9)
		assert.Equal(t, hand.PlayerCards.Score(), hand.PlayerScore)
		assert.Equal(t, hand.BankerCards.Score(), hand.BankerScore)
	}
}

func TestNaturalStopsAllDrawing(t *testing.T) {
	rnd := rand.New(rand.NewSource(2))

	naturals := 0
	for i := 0; i < 10000; i++ {
		initial := DealInitialHands(rnd)
		if initial.PlayerScore < 8 && initial.BankerScore < 8 {
			continue
		}
		naturals++
		final := ApplyThirdCardRule(rnd, initial)
		assert.Len(t, final.PlayerCards, 2, "player drew on a natural")
		assert.Len(t, final.BankerCards, 2, "banker drew on a natural")
	}
	require.NotZero(t, naturals, "sample produced no naturals")
}

func TestPlayerDrawsOnFiveOrLess(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))

	for i := 0; i < 10000; i++ {
		initial := DealInitialHands(rnd)
		if initial.PlayerScore >= 8 || initial.BankerScore >= 8 {
			continue
		}
		final := ApplyThirdCardRule(rnd, initial)
		if initial.PlayerScore <= 5 {
			assert.Len(t, final.PlayerCards, 3)
		} else {
			assert.Len(t, final.PlayerCards, 2)
		}
	}
}

// TestBankerDrawTable checks the banker decision for every
// (bankerScore, playerThirdCard) combination against the standard rule.
func TestBankerDrawTable(t *testing.T) {
	// Player stood: banker draws on 5 or less.
	for score := 0; score <= 7; score++ {
		assert.Equal(t, score <= 5, BankerDraws(score, false, 0),
			"banker score %d, player stood", score)
	}

	// Player drew: the decision depends on the third card's point value.
	draws := func(score, d int) bool {
		switch score {
		case 0, 1, 2:
			return true
		case 3:
			return d != 8
		case 4:
			return d >= 2 && d <= 7
		case 5:
			return d >= 4 && d <= 7
		case 6:
			return d == 6 || d == 7
		default:
			return false
		}
	}
	for score := 0; score <= 7; score++ {
		for d := 0; d <= 9; d++ {
			assert.Equal(t, draws(score, d), BankerDraws(score, true, d),
				"banker score %d, player third card %d", score, d)
		}
	}
}

func TestHandResult(t *testing.T) {
	assert.Equal(t, ResultPlayer, Hand{PlayerScore: 8, BankerScore: 3}.Result())
	assert.Equal(t, ResultBanker, Hand{PlayerScore: 2, BankerScore: 7}.Result())
	assert.Equal(t, ResultTie, Hand{PlayerScore: 6, BankerScore: 6}.Result())
}

func TestPointValue(t *testing.T) {
	assert.Equal(t, 1, PointValue(1)) // ace
	assert.Equal(t, 9, PointValue(9))
	for rank := 10; rank <= 13; rank++ {
		assert.Equal(t, 0, PointValue(rank))
	}
}

func TestCardsHasPair(t *testing.T) {
	pair := Cards{{Rank: 7}, {Rank: 7}, {Rank: 2}}
	assert.True(t, pair.HasPair())

	// Only the first two cards count for the pair side bets.
	thirdCardPair := Cards{{Rank: 3}, {Rank: 7}, {Rank: 7}}
	assert.False(t, thirdCardPair.HasPair())

	assert.False(t, Cards{{Rank: 5}}.HasPair())
}
