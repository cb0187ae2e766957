package seen

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresConfig controls the connection pool for the Postgres seen store.
type PostgresConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresStore persists fingerprints in a (category, fingerprint) table.
// The table is append-only like the file document; insertion order is
// preserved by the serial primary key.
type PostgresStore struct {
	pool   pgxQuerier
	table  string
	logger *zap.Logger

	// persisted tracks rows already written so Save only inserts the delta.
	persisted map[Bucket]map[string]struct{}
}

// NewPostgresStore connects a pool and ensures the backing table exists.
func NewPostgresStore(ctx context.Context, cfg PostgresConfig, logger *zap.Logger) (*PostgresStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("state.postgres.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	store, err := NewPostgresStoreWithPool(pool, cfg.Table, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := store.ensureTable(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStoreWithPool constructs a store from an existing pool
// (primarily for testing).
func NewPostgresStoreWithPool(pool pgxQuerier, table string, logger *zap.Logger) (*PostgresStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "seen_fingerprints"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{
		pool:      pool,
		table:     table,
		logger:    logger,
		persisted: map[Bucket]map[string]struct{}{},
	}, nil
}

func (s *PostgresStore) ensureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id BIGSERIAL PRIMARY KEY,
	category TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (category, fingerprint)
)`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure seen table: %w", err)
	}
	return nil
}

// Load reads every persisted fingerprint in insertion order.
func (s *PostgresStore) Load(ctx context.Context) (*Set, error) {
	query := fmt.Sprintf("SELECT category, fingerprint FROM %s ORDER BY id", s.table)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load seen state: %w", err)
	}
	defer rows.Close()

	set := NewSet()
	s.persisted = map[Bucket]map[string]struct{}{}
	for rows.Next() {
		var category, fingerprint string
		if err := rows.Scan(&category, &fingerprint); err != nil {
			return nil, fmt.Errorf("scan seen row: %w", err)
		}
		bucket := Bucket(category)
		set.Add(bucket, fingerprint)
		s.markPersisted(bucket, fingerprint)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read seen rows: %w", err)
	}

	s.logger.Info("Loaded seen state",
		zap.Int("booked", set.Len(Booked)),
		zap.Int("released", set.Len(Released)))
	return set, nil
}

// Save inserts fingerprints not yet persisted. ON CONFLICT keeps the write
// idempotent when two processes share a table.
func (s *PostgresStore) Save(ctx context.Context, set *Set) error {
	query := fmt.Sprintf(
		"INSERT INTO %s (category, fingerprint) VALUES ($1, $2) ON CONFLICT (category, fingerprint) DO NOTHING",
		s.table)

	inserted := 0
	for _, bucket := range []Bucket{Booked, Released} {
		for _, fingerprint := range set.Fingerprints(bucket) {
			if s.isPersisted(bucket, fingerprint) {
				continue
			}
			if _, err := s.pool.Exec(ctx, query, string(bucket), fingerprint); err != nil {
				return fmt.Errorf("insert fingerprint: %w", err)
			}
			s.markPersisted(bucket, fingerprint)
			inserted++
		}
	}

	if inserted > 0 {
		s.logger.Info("Saved seen state", zap.Int("new_fingerprints", inserted))
	}
	return nil
}

// Close releases the underlying pool resources.
func (s *PostgresStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

func (s *PostgresStore) isPersisted(bucket Bucket, fingerprint string) bool {
	_, ok := s.persisted[bucket][fingerprint]
	return ok
}

func (s *PostgresStore) markPersisted(bucket Bucket, fingerprint string) {
	if s.persisted[bucket] == nil {
		s.persisted[bucket] = map[string]struct{}{}
	}
	s.persisted[bucket][fingerprint] = struct{}{}
}
