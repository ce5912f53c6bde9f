package domain

import "math/rand"

// Hand is a fully dealt baccarat hand
type Hand struct {
	PlayerCards Cards
	BankerCards Cards
	PlayerScore int
	BankerScore int
}

// Result determines the round outcome from the final scores
func (h Hand) Result() Result {
	switch {
	case h.PlayerScore > h.BankerScore:
		return ResultPlayer
	case h.BankerScore > h.PlayerScore:
		return ResultBanker
	default:
		return ResultTie
	}
}

// DealHand deals a complete hand: two cards each side, then the
// third-card rule. Pure aside from consuming randomness.
func DealHand(rnd *rand.Rand) Hand {
	return ApplyThirdCardRule(rnd, DealInitialHands(rnd))
}

// DealInitialHands draws two cards each for player and banker
func DealInitialHands(rnd *rand.Rand) Hand {
	player := Cards{DrawCard(rnd), DrawCard(rnd)}
	banker := Cards{DrawCard(rnd), DrawCard(rnd)}
	return Hand{
		PlayerCards: player,
		BankerCards: banker,
		PlayerScore: player.Score(),
		BankerScore: banker.Score(),
	}
}

// ApplyThirdCardRule runs the standard baccarat drawing rule on an
// initial two-card hand. A natural (either side 8 or 9) stops play.
func ApplyThirdCardRule(rnd *rand.Rand, h Hand) Hand {
	if h.PlayerScore >= 8 || h.BankerScore >= 8 {
		return h
	}

	playerDrew := false
	playerThird := 0
	if h.PlayerScore <= 5 {
		card := DrawCard(rnd)
		h.PlayerCards = append(h.PlayerCards, card)
		h.PlayerScore = h.PlayerCards.Score()
		playerDrew = true
		playerThird = card.Point
	}

	if BankerDraws(h.BankerScore, playerDrew, playerThird) {
		h.BankerCards = append(h.BankerCards, DrawCard(rnd))
		h.BankerScore = h.BankerCards.Score()
	}

	return h
}

// BankerDraws decides the banker's third card. When the player stood,
// the banker draws on 5 or less. When the player drew, the decision
// depends on the player's third-card point value d.
func BankerDraws(bankerScore int, playerDrew bool, d int) bool {
	if !playerDrew {
		return bankerScore <= 5
	}
	switch bankerScore {
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
