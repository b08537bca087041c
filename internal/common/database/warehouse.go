package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"eiv-admissions/internal/common/config"

	_ "github.com/snowflakedb/gosnowflake"
)

// WarehouseClient executes read-only queries against the analytical store
// that serves the reference dataset.
type WarehouseClient struct {
	DB     *sql.DB
	Driver string
}

// NewWarehouse opens the warehouse with the configured driver ("snowflake" or "postgres").
func NewWarehouse(cfg config.WarehouseConfig) (*WarehouseClient, error) {
	db, err := sql.Open(cfg.Driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s warehouse: %w", cfg.Driver, err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(30 * time.Minute)

	return &WarehouseClient{DB: db, Driver: cfg.Driver}, nil
}

func (c *WarehouseClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *WarehouseClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// QueryContext runs a query that returns rows.
func (c *WarehouseClient) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return c.DB.QueryContext(ctx, query, args...)
}

// ReadQueryFile loads a SQL statement from disk, trimming a trailing semicolon.
func ReadQueryFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read query file %s: %w", path, err)
	}
	query := strings.TrimSpace(string(raw))
	query = strings.TrimSuffix(query, ";")
	if query == "" {
		return "", fmt.Errorf("query file %s is empty", path)
	}
	return query, nil
}
