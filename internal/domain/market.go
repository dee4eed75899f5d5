package domain

import "time"

// OutcomeType is the mechanism a market resolves by. The decision engine only
// understands two-outcome markets; everything else is skipped at analysis time.
type OutcomeType string

const (
	OutcomeTypeBinary OutcomeType = "BINARY"
	OutcomeTypeOther  OutcomeType = "OTHER"
)

// Market represents a Manifold prediction market.
type Market struct {
	ID              string
	Slug            string
	URL             string
	Question        string
	Description     string // resolution criteria, extracted to plain text
	CreatorUsername string
	OutcomeType     OutcomeType
	Probability     float64 // implied probability of the YES outcome
	Volume          float64
	UniqueBettors   int
	CloseTime       *time.Time // nil when the market carries no close time
	IsResolved      bool
}

// Binary reports whether the market has exactly two outcomes.
func (m Market) Binary() bool {
	return m.OutcomeType == OutcomeTypeBinary
}

// User holds the account fields read from the platform's identity endpoint.
type User struct {
	ID            string
	Username      string
	Balance       float64
	TotalDeposits float64
	AllTimeProfit float64
}

// NetWorth is the figure shown in the session header.
func (u User) NetWorth() float64 {
	return u.Balance + u.TotalDeposits
}
