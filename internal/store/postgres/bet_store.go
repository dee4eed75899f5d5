package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/notpranavshinde/manifold-llm-betting/internal/domain"
)

// BetStore implements domain.BetStore using PostgreSQL.
type BetStore struct {
	pool *pgxpool.Pool
}

// NewBetStore creates a BetStore backed by the given connection pool.
func NewBetStore(pool *pgxpool.Pool) *BetStore {
	return &BetStore{pool: pool}
}

// Insert appends one bet record. The table is append-only; records are never
// updated after the fact.
func (s *BetStore) Insert(ctx context.Context, rec domain.BetRecord) error {
	const query = `
		INSERT INTO bets (
			id, placed_at, market_id, question, outcome, amount,
			model_name, model_prob, model_confidence, market_prob, edge, dry_run
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.pool.Exec(ctx, query,
		rec.ID, rec.Timestamp, rec.MarketID, rec.Question, string(rec.Outcome), rec.Amount,
		rec.ModelName, rec.ModelProb, rec.ModelConf.String(), rec.MarketProb, rec.Edge, rec.DryRun,
	)
	if err != nil {
		return fmt.Errorf("postgres: insert bet for market %s: %w", rec.MarketID, err)
	}
	return nil
}

// ListRecent returns bet records newest first.
func (s *BetStore) ListRecent(ctx context.Context, opts domain.ListOpts) ([]domain.BetRecord, error) {
	query := `
		SELECT id, placed_at, market_id, question, outcome, amount,
		       model_name, model_prob, model_confidence, market_prob, edge, dry_run
		FROM bets WHERE 1=1`
	args := []any{}
	argIdx := 1

	if opts.Since != nil {
		query += fmt.Sprintf(" AND placed_at >= $%d", argIdx)
		args = append(args, *opts.Since)
		argIdx++
	}
	if opts.Until != nil {
		query += fmt.Sprintf(" AND placed_at <= $%d", argIdx)
		args = append(args, *opts.Until)
		argIdx++
	}

	query += " ORDER BY placed_at DESC"

	if opts.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, opts.Limit)
		argIdx++
	}
	if opts.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, opts.Offset)
	}

	return s.queryRecords(ctx, query, args)
}

// ListByMarket returns the bet history for one market, newest first.
func (s *BetStore) ListByMarket(ctx context.Context, marketID string, opts domain.ListOpts) ([]domain.BetRecord, error) {
	query := `
		SELECT id, placed_at, market_id, question, outcome, amount,
		       model_name, model_prob, model_confidence, market_prob, edge, dry_run
		FROM bets WHERE market_id = $1 ORDER BY placed_at DESC`
	args := []any{marketID}

	if opts.Limit > 0 {
		query += " LIMIT $2"
		args = append(args, opts.Limit)
	}

	return s.queryRecords(ctx, query, args)
}

// SumStaked returns real (non dry-run) mana staked since the given time.
func (s *BetStore) SumStaked(ctx context.Context, since time.Time) (float64, error) {
	const query = `
		SELECT COALESCE(SUM(amount), 0) FROM bets
		WHERE placed_at >= $1 AND NOT dry_run`

	var total float64
	if err := s.pool.QueryRow(ctx, query, since).Scan(&total); err != nil {
		return 0, fmt.Errorf("postgres: sum staked: %w", err)
	}
	return total, nil
}

func (s *BetStore) queryRecords(ctx context.Context, query string, args []any) ([]domain.BetRecord, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: list bets: %w", err)
	}
	defer rows.Close()

	var recs []domain.BetRecord
	for rows.Next() {
		var (
			rec     domain.BetRecord
			outcome string
			conf    string
		)
		if err := rows.Scan(
			&rec.ID, &rec.Timestamp, &rec.MarketID, &rec.Question, &outcome, &rec.Amount,
			&rec.ModelName, &rec.ModelProb, &conf, &rec.MarketProb, &rec.Edge, &rec.DryRun,
		); err != nil {
			return nil, fmt.Errorf("postgres: scan bet: %w", err)
		}
		rec.Outcome = domain.BetSide(outcome)
		if c, err := domain.ParseConfidence(conf); err == nil {
			rec.ModelConf = c
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list bets rows: %w", err)
	}
	return recs, nil
}
