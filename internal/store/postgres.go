package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bondhedge/hedge-engine/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore implements Store using PostgreSQL as the source of truth.
// Headline figures are stored as NUMERIC for exact decimal precision; the
// full request and result are kept as JSONB snapshots.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) CreateCalculation(ctx context.Context, c *model.Calculation) error {
	inv, err := json.Marshal(c.Investment)
	if err != nil {
		return fmt.Errorf("encode investment: %w", err)
	}
	hedge, err := json.Marshal(c.Hedge)
	if err != nil {
		return fmt.Errorf("encode hedge: %w", err)
	}
	result, err := json.Marshal(c.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	r := c.Result
	_, err = s.pool.Exec(ctx,
		`INSERT INTO calculations (id, cost_model, rounding,
		        principal, maturity_value, usd_notional, lots_required, margin_required, net_return_with_hedge,
		        investment, hedge, result, created_at)
		 VALUES ($1, $2, $3,
		         $4::NUMERIC, $5::NUMERIC, $6::NUMERIC, $7, $8::NUMERIC, $9::NUMERIC,
		         $10::JSONB, $11::JSONB, $12::JSONB, $13)`,
		c.ID, string(r.CostModel), string(r.Rounding),
		r.Principal.String(), r.MaturityValueINR.String(), r.USDNotional.String(),
		r.LotsRequired, r.MarginRequiredINR.String(), r.NetReturnWithHedgeINR.String(),
		string(inv), string(hedge), string(result), c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert calculation %s: %w", c.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetCalculation(ctx context.Context, id string) (*model.Calculation, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, investment::TEXT, hedge::TEXT, result::TEXT, created_at
		 FROM calculations WHERE id = $1`, id)

	c, err := scanCalculation(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: calculation %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get calculation %s: %w", id, err)
	}
	return c, nil
}

func (s *PostgresStore) ListCalculations(ctx context.Context, limit int) ([]model.Calculation, error) {
	query := `SELECT id, investment::TEXT, hedge::TEXT, result::TEXT, created_at
		 FROM calculations ORDER BY created_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calcs []model.Calculation
	for rows.Next() {
		c, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		calcs = append(calcs, *c)
	}
	return calcs, rows.Err()
}

func (s *PostgresStore) InsertSweep(ctx context.Context, sw *model.Sweep) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO scenario_sweeps (id, calculation_id, created_at) VALUES ($1, $2, $3)`,
		sw.ID, sw.CalculationID, sw.CreatedAt,
	); err != nil {
		return insertSweepError(sw, err)
	}

	batch := &pgx.Batch{}
	for i, r := range sw.Rows {
		batch.Queue(
			`INSERT INTO scenario_rows (sweep_id, position, shift_percent, implied_spot_rate,
			        unhedged_return_inr, hedged_return_inr, unhedged_return_usd, hedged_return_usd, error)
			 VALUES ($1, $2, $3::NUMERIC, $4::NUMERIC, $5::NUMERIC, $6::NUMERIC, $7::NUMERIC, $8::NUMERIC, $9)`,
			sw.ID, i, r.ShiftPercent.String(),
			nullableNumeric(r, r.ImpliedSpotRate), nullableNumeric(r, r.UnhedgedReturnINR),
			nullableNumeric(r, r.HedgedReturnINR), nullableNumeric(r, r.UnhedgedReturnUSD),
			nullableNumeric(r, r.HedgedReturnUSD), r.Error,
		)
	}
	br := tx.SendBatch(ctx, batch)
	for range sw.Rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("insert scenario rows for sweep %s: %w", sw.ID, err)
		}
	}
	if err := br.Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) GetSweepsByCalculation(ctx context.Context, calculationID string) ([]model.Sweep, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT s.id, s.created_at, r.position,
		        r.shift_percent::TEXT,
		        COALESCE(r.implied_spot_rate, 0)::TEXT,
		        COALESCE(r.unhedged_return_inr, 0)::TEXT,
		        COALESCE(r.hedged_return_inr, 0)::TEXT,
		        COALESCE(r.unhedged_return_usd, 0)::TEXT,
		        COALESCE(r.hedged_return_usd, 0)::TEXT,
		        r.error
		 FROM scenario_sweeps s
		 JOIN scenario_rows r ON r.sweep_id = s.id
		 WHERE s.calculation_id = $1
		 ORDER BY s.created_at, s.id, r.position`, calculationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sweeps []model.Sweep
	for rows.Next() {
		var (
			sw       model.Sweep
			position int
			row      model.ScenarioRow
			shiftS   string
			impliedS string
			uInrS    string
			hInrS    string
			uUsdS    string
			hUsdS    string
		)
		if err := rows.Scan(&sw.ID, &sw.CreatedAt, &position,
			&shiftS, &impliedS, &uInrS, &hInrS, &uUsdS, &hUsdS, &row.Error); err != nil {
			return nil, err
		}

		if err := decodeScenarioRow(&row, shiftS, impliedS, uInrS, hInrS, uUsdS, hUsdS); err != nil {
			return nil, fmt.Errorf("decode sweep %s row %d: %w", sw.ID, position, err)
		}

		if n := len(sweeps); n == 0 || sweeps[n-1].ID != sw.ID {
			sw.CalculationID = calculationID
			sweeps = append(sweeps, sw)
		}
		last := &sweeps[len(sweeps)-1]
		last.Rows = append(last.Rows, row)
	}
	return sweeps, rows.Err()
}

// foreignKeyViolation is the SQLSTATE for a missing referenced row.
const foreignKeyViolation = "23503"

// insertSweepError reports a sweep for an unknown calculation as
// ErrNotFound, matching MemoryStore.
func insertSweepError(sw *model.Sweep, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
		return fmt.Errorf("%w: calculation %s", ErrNotFound, sw.CalculationID)
	}
	return fmt.Errorf("insert sweep %s: %w", sw.ID, err)
}

// decodeScenarioRow parses the NUMERIC text columns of one row, in
// column order.
func decodeScenarioRow(row *model.ScenarioRow, cols ...string) error {
	dst := []*decimal.Decimal{
		&row.ShiftPercent, &row.ImpliedSpotRate,
		&row.UnhedgedReturnINR, &row.HedgedReturnINR,
		&row.UnhedgedReturnUSD, &row.HedgedReturnUSD,
	}
	if len(cols) != len(dst) {
		return fmt.Errorf("expected %d numeric columns, got %d", len(dst), len(cols))
	}
	for i, c := range cols {
		v, err := decimal.NewFromString(c)
		if err != nil {
			return err
		}
		*dst[i] = v
	}
	return nil
}

// nullableNumeric stores failed rows' figures as NULL.
func nullableNumeric(r model.ScenarioRow, v decimal.Decimal) any {
	if !r.OK() {
		return nil
	}
	return v.String()
}

// pgxRow is satisfied by both pgx.Row and pgx.Rows.
type pgxRow interface {
	Scan(dest ...interface{}) error
}

func scanCalculation(row pgxRow) (*model.Calculation, error) {
	var c model.Calculation
	var inv, hedge, result string

	if err := row.Scan(&c.ID, &inv, &hedge, &result, &c.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(inv), &c.Investment); err != nil {
		return nil, fmt.Errorf("decode investment %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(hedge), &c.Hedge); err != nil {
		return nil, fmt.Errorf("decode hedge %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(result), &c.Result); err != nil {
		return nil, fmt.Errorf("decode result %s: %w", c.ID, err)
	}
	return &c, nil
}
