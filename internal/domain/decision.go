package domain

// BetSide is the outcome a bet backs.
type BetSide string

const (
	SideYes BetSide = "YES"
	SideNo  BetSide = "NO"
)

// Hold reasons attached to a Decision when no bet is placed.
const (
	HoldBelowConfidence   = "below confidence threshold"
	HoldInsufficientEdge  = "insufficient edge"
	HoldDegenerateOdds    = "degenerate odds"
	HoldNonProfitableOdds = "non-profitable odds"
	HoldNonPositiveKelly  = "non-positive Kelly fraction"
	HoldStakeBelowMinimum = "stake below minimum tradable unit"
)

// Decision is the engine's output for one market. Either a bet with a side and
// positive stake, or a hold with a reason.
type Decision struct {
	Bet        bool
	Side       BetSide
	Stake      float64 // mana to wager, meaningful only when Bet is true
	Edge       float64 // analyst probability minus market probability
	HoldReason string  // set only when Bet is false
}

// Hold builds a no-bet decision carrying the computed edge.
func Hold(reason string, edge float64) Decision {
	return Decision{Bet: false, Edge: edge, HoldReason: reason}
}
