package datastore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const defaultConnectTimeout = time.Second * 5

// Connector hands a gateway operation a database handle bound to exactly one
// connection for the duration of fn. The connection is released when fn
// returns, whether or not it failed.
type Connector interface {
	WithConn(ctx context.Context, fn func(db *gorm.DB) error) error
	Close() error
}

// Config creates pgxpool.Config with default settings provided
// by the parameters.
func Config(dsn string) (*pgxpool.Config, error) {
	const defaultMaxConns = int32(4)
	const defaultMinConns = int32(2)
	const defaultMaxConnLifetime = time.Minute * 10
	const defaultMaxIdletime = time.Minute * 5
	const defaultHealthCheckPeriod = time.Minute

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("Error parsing dsn to config: %w", err)
	}

	config.MaxConns = defaultMaxConns
	config.MinConns = defaultMinConns
	config.MaxConnLifetime = defaultMaxConnLifetime
	config.MaxConnIdleTime = defaultMaxIdletime
	config.HealthCheckPeriod = defaultHealthCheckPeriod
	config.ConnConfig.ConnectTimeout = defaultConnectTimeout
	return config, nil
}

// NewDBPool creates a new PostgreSQL connection pool using the provided config.
func NewDBPool(ctx context.Context, config *pgxpool.Config) (*pgxpool.Pool, error) {
	cp, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("Error in NewDBPool: %w", err)
	}
	return cp, nil
}

// newGormLogger logs slow queries and errors. A lookup that matches nothing
// is reported by the caller, not logged.
func newGormLogger(w logger.Writer) logger.Interface {
	return logger.New(w, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 newGormLogger(log.New(os.Stderr, "\r\n", log.LstdFlags)),
	}
}

func openGorm(sqlDB *sql.DB) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig())
}

// DirectConnector opens a brand new connection for every call and closes it
// afterwards. Nothing is shared between calls.
type DirectConnector struct {
	connConfig *pgx.ConnConfig
}

func NewDirectConnector(dsn string) (*DirectConnector, error) {
	cc, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("Error parsing dsn to config: %w", err)
	}
	cc.ConnectTimeout = defaultConnectTimeout
	return &DirectConnector{connConfig: cc}, nil
}

func (d *DirectConnector) WithConn(ctx context.Context, fn func(db *gorm.DB) error) error {
	sqlDB := stdlib.OpenDB(*d.connConfig)
	defer sqlDB.Close()
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.PingContext(ctx); err != nil {
		return err
	}

	db, err := openGorm(sqlDB)
	if err != nil {
		return err
	}
	return fn(db.WithContext(ctx))
}

func (d *DirectConnector) Close() error { return nil }

// PooledConnector checks a connection out of a shared pool for every call.
// When built from a config the pool is only created by the first call, so
// nothing connects before the store is first used.
type PooledConnector struct {
	config *pgxpool.Config

	mu   sync.Mutex
	db   *gorm.DB
	pool *pgxpool.Pool
}

// NewPooledConnector wraps an already opened gorm handle.
func NewPooledConnector(db *gorm.DB) *PooledConnector {
	return &PooledConnector{db: db}
}

// OpenPooled returns a connector that builds a pgx pool from config and puts
// gorm on top of it on first use.
func OpenPooled(config *pgxpool.Config) *PooledConnector {
	return &PooledConnector{config: config}
}

func (p *PooledConnector) handle(ctx context.Context) (*gorm.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db != nil {
		return p.db, nil
	}
	if p.config == nil {
		return nil, errors.New("pooled connector has no config")
	}

	// The pool outlives the call that happens to create it.
	pool, err := NewDBPool(context.WithoutCancel(ctx), p.config)
	if err != nil {
		return nil, err
	}
	db, err := openGorm(stdlib.OpenDBFromPool(pool))
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("Error opening gorm on pool: %w", err)
	}
	p.db, p.pool = db, pool
	return db, nil
}

func (p *PooledConnector) WithConn(ctx context.Context, fn func(db *gorm.DB) error) error {
	db, err := p.handle(ctx)
	if err != nil {
		return err
	}
	return db.WithContext(ctx).Connection(fn)
}

// Opened reports whether the pool has been created.
func (p *PooledConnector) Opened() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.db != nil
}

func (p *PooledConnector) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	sqlDB, err := p.db.DB()
	if err == nil {
		err = sqlDB.Close()
	}
	if p.pool != nil {
		p.pool.Close()
	}
	return err
}

// Initialize a new PostgresDataStore on top of a connector.
func NewPostgresDataStore(c Connector) *PostgresDataStore {
	return &PostgresDataStore{conn: c}
}

// Migrate creates or updates every table the gateway writes to.
func Migrate(ctx context.Context, c Connector) error {
	err := c.WithConn(ctx, func(db *gorm.DB) error {
		return db.AutoMigrate(models()...)
	})
	if err != nil {
		return fmt.Errorf("Error migrating schema: %w", err)
	}
	return nil
}
