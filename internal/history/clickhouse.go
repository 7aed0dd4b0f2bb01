package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/kiralabs/launchpad/internal/models"
)

// ClickHouseConfig holds connection settings for the history store.
type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

// ClickHouseStore persists terminal workflow runs and executed swaps for
// analytics.
type ClickHouseStore struct {
	conn driver.Conn
}

func NewClickHouseStore(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseStore{conn: conn}, nil
}

// InsertRun writes a terminal run summary into the launches table.
func (c *ClickHouseStore) InsertRun(ctx context.Context, run *models.RunEvent) error {
	steps, err := json.Marshal(run.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}

	query := `
		INSERT INTO launches (
			run_id, workflow, started_at, finished_at,
			succeeded, canceled, error_kind, error, mint, steps
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if err := c.conn.Exec(ctx, query,
		run.RunID,
		run.Workflow,
		run.StartedAt,
		run.FinishedAt,
		run.Succeeded,
		run.Canceled,
		run.ErrorKind,
		run.Error,
		run.Mint,
		string(steps),
	); err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	return nil
}

// InsertSwap writes an executed swap into the swaps table.
func (c *ClickHouseStore) InsertSwap(ctx context.Context, swap *models.SwapEvent) error {
	query := `
		INSERT INTO swaps (
			signature, timestamp, pair, input_mint, output_mint,
			amount_in, amount_out, minimum_out, price, fee_bps, pool
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	if err := c.conn.Exec(ctx, query,
		swap.Signature,
		swap.Timestamp,
		swap.Pair,
		swap.InputMint,
		swap.OutputMint,
		swap.AmountIn,
		swap.AmountOut,
		swap.MinimumOut,
		swap.Price,
		swap.FeeBps,
		swap.Pool,
	); err != nil {
		return fmt.Errorf("failed to insert swap: %w", err)
	}
	return nil
}

func (c *ClickHouseStore) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseStore) Close() error {
	return c.conn.Close()
}
