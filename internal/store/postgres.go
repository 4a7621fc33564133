package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/site-engine/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS generations (
	id            TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	business_id   TEXT NOT NULL DEFAULT '',
	business_name TEXT NOT NULL DEFAULT '',
	industry      TEXT NOT NULL DEFAULT '',
	template_id   TEXT NOT NULL,
	quality_total DOUBLE PRECISION NOT NULL DEFAULT 0,
	payload       JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_generations_business ON generations(business_id);
CREATE INDEX IF NOT EXISTS idx_generations_industry ON generations(industry);
CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at DESC);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveGeneration(ctx context.Context, g *model.Generation) error {
	prepare(g)

	payload, err := json.Marshal(g)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal generation")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO generations (id, business_id, business_name, industry, template_id, quality_total, payload, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		g.ID, g.BusinessID, g.Business, g.Industry, g.Selection.TemplateID, g.Quality.Total, payload, g.CreatedAt,
	)
	return eris.Wrapf(err, "postgres: insert generation %s", g.ID)
}

func (s *PostgresStore) GetGeneration(ctx context.Context, id string) (*model.Generation, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM generations WHERE id = $1`, id).Scan(&payload)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, eris.Wrapf(ErrNotFound, "postgres: get generation %s", id)
		}
		return nil, eris.Wrapf(err, "postgres: get generation %s", id)
	}
	g, err := decodeGeneration(payload)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get generation %s", id)
	}
	return g, nil
}

func (s *PostgresStore) ListGenerations(ctx context.Context, filter GenerationFilter) ([]model.Generation, error) {
	query := `SELECT payload FROM generations WHERE 1=1`
	var args []any
	add := func(clause string, v any) {
		args = append(args, v)
		query += fmt.Sprintf(" AND %s = $%d", clause, len(args))
	}

	if filter.BusinessID != "" {
		add("business_id", filter.BusinessID)
	}
	if filter.Industry != "" {
		add("industry", filter.Industry)
	}
	if filter.TemplateID != "" {
		add("template_id", filter.TemplateID)
	}

	args = append(args, listLimit(filter.Limit))
	query += fmt.Sprintf(" ORDER BY created_at DESC, id LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list generations")
	}
	defer rows.Close()

	var out []model.Generation
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan generation")
		}
		g, err := decodeGeneration(payload)
		if err != nil {
			return nil, eris.Wrap(err, "postgres: list generations")
		}
		out = append(out, *g)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list generations iterate")
}

func (s *PostgresStore) DeleteGeneration(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM generations WHERE id = $1`, id)
	if err != nil {
		return eris.Wrapf(err, "postgres: delete generation %s", id)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "id %s", id)
	}
	return nil
}
