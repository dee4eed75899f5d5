package domain

import "time"

// BetResult is the platform's acknowledgement of a placed bet.
type BetResult struct {
	BetID      string
	ContractID string
	Outcome    BetSide
	Amount     float64 // mana actually filled, whole units
	Shares     float64
	ProbBefore float64
	ProbAfter  float64
	CreatedAt  time.Time
}

// BetRecord is one row of the audit trail: everything needed to reconstruct
// why a bet was (or would have been) placed.
type BetRecord struct {
	ID         string
	Timestamp  time.Time
	MarketID   string
	Question   string
	Outcome    BetSide
	Amount     float64
	ModelName  string
	ModelProb  float64
	ModelConf  Confidence
	MarketProb float64
	Edge       float64
	DryRun     bool
}
