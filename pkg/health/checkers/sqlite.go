package checkers

import (
	"context"
	"database/sql"
	"time"
)

type SQLiteChecker struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLiteChecker(db *sql.DB, timeout time.Duration) *SQLiteChecker {
	if timeout <= 0 {
		timeout = defaultPingTimeout
	}
	return &SQLiteChecker{db: db, timeout: timeout}
}

func (c *SQLiteChecker) Name() string { return "sqlite" }

func (c *SQLiteChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.db.PingContext(ctx)
}
