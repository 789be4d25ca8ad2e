package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"scanner/internal/domain"
)

type scoreSnapshotRepositoryHandler struct {
	Db *sql.DB
}

// ScoreSnapshotRepository persists the per-run score history so consecutive
// scans can be compared after the fact.
type ScoreSnapshotRepository interface {
	EnsureSchema(ctx context.Context) error
	AddRun(ctx context.Context, runID uuid.UUID, regime string, results []domain.ScoreResult) error
	Prune(ctx context.Context, olderThan time.Time) (int64, error)
}

func NewScoreSnapshotRepository(db *sql.DB) ScoreSnapshotRepository {
	return scoreSnapshotRepositoryHandler{db}
}

func (h scoreSnapshotRepositoryHandler) EnsureSchema(ctx context.Context) error {
	_, err := h.Db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS score_snapshot (
			score_snapshot_id SERIAL PRIMARY KEY,
			run_id UUID NOT NULL,
			symbol TEXT NOT NULL,
			regime TEXT NOT NULL,
			final_score DOUBLE PRECISION,
			opportunity_score DOUBLE PRECISION NOT NULL,
			risk_score DOUBLE PRECISION NOT NULL,
			confidence_score DOUBLE PRECISION NOT NULL,
			confidence_label TEXT NOT NULL,
			diversification_penalty DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS score_snapshot_run_id_idx ON score_snapshot (run_id);
		CREATE INDEX IF NOT EXISTS score_snapshot_symbol_idx ON score_snapshot (symbol, created_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure score_snapshot schema: %w", err)
	}
	return nil
}

func (h scoreSnapshotRepositoryHandler) AddRun(ctx context.Context, runID uuid.UUID, regime string, results []domain.ScoreResult) error {
	tx, err := h.Db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin snapshot tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO score_snapshot (
			run_id, symbol, regime, final_score, opportunity_score, risk_score,
			confidence_score, confidence_label, diversification_penalty, status, error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range results {
		var errMsg *string
		if res.Err != "" {
			errMsg = &res.Err
		}
		_, err = stmt.ExecContext(ctx,
			runID,
			res.Symbol,
			regime,
			res.FinalScore,
			res.OpportunityScore,
			res.RiskScore,
			res.ConfidenceScore,
			res.ConfidenceLabel,
			res.DiversificationPenalty,
			string(res.Status),
			errMsg,
		)
		if err != nil {
			return fmt.Errorf("failed to insert snapshot for %s: %w", res.Symbol, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot tx: %w", err)
	}
	return nil
}

func (h scoreSnapshotRepositoryHandler) Prune(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := h.Db.ExecContext(ctx, `DELETE FROM score_snapshot WHERE created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("failed to prune score snapshots: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read pruned row count: %w", err)
	}
	return rows, nil
}
