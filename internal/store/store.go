package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"BondLens/internal/holdings"
	"BondLens/internal/quality"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the optional Postgres sink. The filesystem outputs remain the
// system of record; the sink exists so downstream reporting can query runs.
type Store struct {
	pool *pgxpool.Pool
}

// Open connects and ensures the schema. Called only when a database URL is
// configured.
func Open(ctx context.Context, url string) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("connect to store: %w", err)
	}
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS canonical_holdings (
			run_id              UUID        NOT NULL,
			fund_name           TEXT        NOT NULL,
			amc                 TEXT        NOT NULL,
			isin                TEXT,
			instrument_name     TEXT        NOT NULL,
			market_value_lacs   NUMERIC,
			pct_to_nav          NUMERIC,
			yield_pct           NUMERIC,
			rating_raw          TEXT,
			rating_standardized TEXT,
			quantity            NUMERIC,
			maturity_date       DATE,
			as_of_date          DATE        NOT NULL,
			security_type       TEXT        NOT NULL,
			issuer_name         TEXT,
			instrument_type     TEXT,
			maturity_bucket     TEXT,
			loaded_at           TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_canonical_holdings_run ON canonical_holdings (run_id);
		CREATE INDEX IF NOT EXISTS idx_canonical_holdings_amc_asof ON canonical_holdings (amc, as_of_date);
		CREATE TABLE IF NOT EXISTS quality_verdicts (
			run_id     UUID        PRIMARY KEY,
			as_of_date DATE        NOT NULL,
			passed     BOOLEAN     NOT NULL,
			criticals  INT         NOT NULL,
			warnings   INT         NOT NULL,
			gates      JSONB       NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	if err != nil {
		return fmt.Errorf("ensure store schema: %w", err)
	}
	return nil
}

// SaveRun bulk-loads one run's consolidated holdings via CopyFrom and
// records its verdict audit row.
func (s *Store) SaveRun(runID string, consolidated *holdings.Table, verdict *quality.Verdict) error {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	rows := make([][]interface{}, 0, len(consolidated.Rows))
	for _, h := range consolidated.Rows {
		var maturity interface{}
		if h.MaturityDate != nil {
			maturity = *h.MaturityDate
		}
		rows = append(rows, []interface{}{
			runID, h.FundName, h.AMC, nullString(h.ISIN), h.InstrumentName,
			nullNumeric(h.MarketValueLacs.Valid, h.MarketValueLacs.Decimal.String()),
			nullNumeric(h.PctToNAV.Valid, h.PctToNAV.Decimal.String()),
			nullNumeric(h.YieldPct.Valid, h.YieldPct.Decimal.String()),
			nullString(h.RatingRaw), nullString(h.RatingStandardized),
			nullNumeric(h.Quantity.Valid, h.Quantity.Decimal.String()),
			maturity, h.AsOfDate, string(h.SecurityType),
			nullString(h.IssuerName), nullString(h.InstrumentType), nullString(h.MaturityBucket),
		})
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"canonical_holdings"},
		[]string{
			"run_id", "fund_name", "amc", "isin", "instrument_name",
			"market_value_lacs", "pct_to_nav", "yield_pct",
			"rating_raw", "rating_standardized", "quantity",
			"maturity_date", "as_of_date", "security_type",
			"issuer_name", "instrument_type", "maturity_bucket",
		},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy holdings for run %s: %w", runID, err)
	}

	gates, err := json.Marshal(verdict.Gates)
	if err != nil {
		return fmt.Errorf("marshal verdict gates: %w", err)
	}
	asOf := time.Time{}
	if len(consolidated.Rows) > 0 {
		asOf = consolidated.Rows[0].AsOfDate
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO quality_verdicts (run_id, as_of_date, passed, criticals, warnings, gates)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id) DO NOTHING
	`, runID, asOf, verdict.Passed, verdict.CriticalCount(), verdict.WarningCount(), gates)
	if err != nil {
		return fmt.Errorf("insert verdict for run %s: %w", runID, err)
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullNumeric(valid bool, s string) interface{} {
	if !valid {
		return nil
	}
	return s
}
