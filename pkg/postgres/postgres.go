package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	logx "github.com/tanpawarit/chative-wholesale-agent/pkg/logger"
)

type Config struct {
	DSN          string `split_words:"true"`
	MaxOpenConns int    `split_words:"true" default:"10"`
	PingTimeout  int    `split_words:"true" default:"5"`
	LogQueries   bool   `split_words:"true" default:"false"`
}

// Enabled reports whether a database is configured. Without one the service
// runs on in-memory repositories.
func (c *Config) Enabled() bool {
	return strings.TrimSpace(c.DSN) != ""
}

func (c *Config) New(ctx context.Context) (*bun.DB, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("postgres: dsn is required")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(strings.TrimSpace(c.DSN))))
	if c.MaxOpenConns > 0 {
		sqldb.SetMaxOpenConns(c.MaxOpenConns)
		sqldb.SetMaxIdleConns(c.MaxOpenConns)
	}

	db := bun.NewDB(sqldb, pgdialect.New())
	if c.LogQueries {
		db.AddQueryHook(QueryLogger{})
	}

	pingCtx, cancel := context.WithTimeout(ctx, time.Duration(c.PingTimeout)*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return db, nil
}

func (c *Config) MustNew(ctx context.Context) *bun.DB {
	db, err := c.New(ctx)
	if err != nil {
		panic(err)
	}
	return db
}

// QueryLogger is a bun.QueryHook writing every statement to the request logger.
type QueryLogger struct{}

var _ bun.QueryHook = QueryLogger{}

func (QueryLogger) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (QueryLogger) AfterQuery(ctx context.Context, event *bun.QueryEvent) {
	logger := logx.Ctx(ctx)
	e := logger.Debug()
	if event.Err != nil && event.Err != sql.ErrNoRows {
		e = logger.Error().Err(event.Err)
	}
	e.Str("operation", event.Operation()).
		Dur("elapsed", time.Since(event.StartTime)).
		Str("query", event.Query).
		Msg("sql query")
}
