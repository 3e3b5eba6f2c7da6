package checkers

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultPingTimeout = time.Second

// PostgresChecker reports whether the resume database accepts connections.
type PostgresChecker struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPostgresChecker pings pool within timeout; zero means one second.
func NewPostgresChecker(pool *pgxpool.Pool, timeout time.Duration) *PostgresChecker {
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	return &PostgresChecker{pool: pool, timeout: timeout}
}

func (c *PostgresChecker) Name() string { return "postgres" }

func (c *PostgresChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping %s: %w", c.pool.Config().ConnConfig.Database, err)
	}
	return nil
}
