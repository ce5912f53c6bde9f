package domain

import "fmt"

// Zone represents a betting zone on the table layout
type Zone string

const (
	ZonePlayer     Zone = "player"
	ZoneBanker     Zone = "banker"
	ZoneTie        Zone = "tie"
	ZonePlayerPair Zone = "player_pair"
	ZoneBankerPair Zone = "banker_pair"
)

// ParseZone validates a client-supplied zone string
func ParseZone(s string) (Zone, error) {
	switch Zone(s) {
	case ZonePlayer, ZoneBanker, ZoneTie, ZonePlayerPair, ZoneBankerPair:
		return Zone(s), nil
	}
	return "", fmt.Errorf("invalid betting zone: %q", s)
}

// CalculatePayout computes the win amount for a single wager. Zones are
// mutually exclusive per wager row, so exactly one branch applies.
// Wagers on player or banker push (stake returned) when the result is a
// tie. Banker wins pay the standard 5% commission, floored.
func CalculatePayout(zone Zone, amount int64, result Result, playerPair, bankerPair bool) int64 {
	switch zone {
	case ZonePlayer:
		if result == ResultPlayer {
			return amount * 2
		}
		if result == ResultTie {
			return amount
		}
	case ZoneBanker:
		if result == ResultBanker {
			return amount + amount*95/100
		}
		if result == ResultTie {
			return amount
		}
	case ZoneTie:
		if result == ResultTie {
			return amount * 9
		}
	case ZonePlayerPair:
		if playerPair {
			return amount * 12
		}
	case ZoneBankerPair:
		if bankerPair {
			return amount * 12
		}
	}
	return 0
}
