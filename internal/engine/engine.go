package engine

import (
	"log/slog"
	"math"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

const (
	defaultKellyFraction = 0.25
	defaultMinEdge       = 0.01
	defaultMinStake      = 1.0

	// probEpsilon guards the payout-odds divisions against prices pinned at 0 or 1.
	probEpsilon = 1e-9
)

// Params controls the sizing rules.
type Params struct {
	KellyFraction float64 // fraction of full Kelly to deploy, in (0,1]
	MinEdge       float64 // minimum |model - market| probability gap
	MinConfidence domain.Confidence
	MinStake      float64 // smallest tradable amount of currency
}

// DefaultParams returns the sizing defaults used by the reference session.
func DefaultParams() Params {
	return Params{
		KellyFraction: defaultKellyFraction,
		MinEdge:       defaultMinEdge,
		MinConfidence: domain.ConfidenceMedium,
		MinStake:      defaultMinStake,
	}
}

// Engine turns analyst estimates into bet-or-hold decisions using fractional
// Kelly sizing. It holds no mutable state and is safe for concurrent use.
type Engine struct {
	params Params
	logger *slog.Logger
}

// New creates an Engine with the given sizing parameters.
func New(params Params, logger *slog.Logger) *Engine {
	return &Engine{
		params: params,
		logger: logger.With(slog.String("component", "engine")),
	}
}

// Decide evaluates one market against the analyst's estimate and the current
// balance. Gates are checked in a fixed order and the first failure wins; the
// returned decision carries the reason for any hold.
func (e *Engine) Decide(est domain.Estimate, marketProb, balance float64) domain.Decision {
	edge := est.Probability - marketProb

	if !est.Confidence.AtLeast(e.params.MinConfidence) {
		return domain.Hold(domain.HoldBelowConfidence, edge)
	}
	if math.Abs(edge) <= e.params.MinEdge {
		return domain.Hold(domain.HoldInsufficientEdge, edge)
	}

	// Net fractional odds for the chosen side. Backing YES pays out at 1/p,
	// backing NO at 1/(1-p); b is the profit per unit staked.
	var side domain.BetSide
	var b float64
	if edge > 0 {
		side = domain.SideYes
		if marketProb <= probEpsilon {
			return domain.Hold(domain.HoldDegenerateOdds, edge)
		}
		b = 1/marketProb - 1
	} else {
		side = domain.SideNo
		if 1-marketProb <= probEpsilon {
			return domain.Hold(domain.HoldDegenerateOdds, edge)
		}
		b = 1/(1-marketProb) - 1
	}
	if b <= 0 {
		return domain.Hold(domain.HoldNonProfitableOdds, edge)
	}

	pWin := est.Probability
	if side == domain.SideNo {
		pWin = 1 - est.Probability
	}
	kelly := (pWin*(b+1) - 1) / b
	if kelly <= 0 {
		return domain.Hold(domain.HoldNonPositiveKelly, edge)
	}

	stake := balance * kelly * e.params.KellyFraction
	if stake < e.params.MinStake {
		return domain.Hold(domain.HoldStakeBelowMinimum, edge)
	}
	if stake > balance {
		stake = balance
	}

	e.logger.Debug("bet sized",
		slog.String("side", string(side)),
		slog.Float64("edge", edge),
		slog.Float64("kelly", kelly),
		slog.Float64("stake", stake))

	return domain.Decision{Bet: true, Side: side, Stake: stake, Edge: edge}
}
