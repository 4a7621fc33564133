package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/site-engine/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS generations (
	id            TEXT PRIMARY KEY,
	business_id   TEXT NOT NULL DEFAULT '',
	business_name TEXT NOT NULL DEFAULT '',
	industry      TEXT NOT NULL DEFAULT '',
	template_id   TEXT NOT NULL,
	quality_total REAL NOT NULL DEFAULT 0,
	payload       TEXT NOT NULL,
	created_at    DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_generations_business ON generations(business_id);
CREATE INDEX IF NOT EXISTS idx_generations_industry ON generations(industry);
CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveGeneration(ctx context.Context, g *model.Generation) error {
	prepare(g)

	payload, err := json.Marshal(g)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal generation")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO generations (id, business_id, business_name, industry, template_id, quality_total, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.BusinessID, g.Business, g.Industry, g.Selection.TemplateID, g.Quality.Total, string(payload), g.CreatedAt,
	)
	return eris.Wrapf(err, "sqlite: insert generation %s", g.ID)
}

func (s *SQLiteStore) GetGeneration(ctx context.Context, id string) (*model.Generation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM generations WHERE id = ?`, id)
	g, err := scanGeneration(row)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get generation %s", id)
	}
	return g, nil
}

func (s *SQLiteStore) ListGenerations(ctx context.Context, filter GenerationFilter) ([]model.Generation, error) {
	query := `SELECT payload FROM generations WHERE 1=1`
	var args []any

	if filter.BusinessID != "" {
		query += ` AND business_id = ?`
		args = append(args, filter.BusinessID)
	}
	if filter.Industry != "" {
		query += ` AND industry = ?`
		args = append(args, filter.Industry)
	}
	if filter.TemplateID != "" {
		query += ` AND template_id = ?`
		args = append(args, filter.TemplateID)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, listLimit(filter.Limit))

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list generations")
	}
	defer rows.Close()

	var out []model.Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, eris.Wrap(err, "sqlite: list generations")
		}
		out = append(out, *g)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list generations iterate")
}

func (s *SQLiteStore) DeleteGeneration(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM generations WHERE id = ?`, id)
	if err != nil {
		return eris.Wrapf(err, "sqlite: delete generation %s", id)
	}
	return checkRowsAffected(res, id)
}

// helpers

// prepare assigns an ID and creation time to a new generation.
func prepare(g *model.Generation) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
}

func checkRowsAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "id %s", id)
	}
	return nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanGeneration(row scannable) (*model.Generation, error) {
	var payload []byte
	err := row.Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "scan generation")
	}
	return decodeGeneration(payload)
}

func decodeGeneration(payload []byte) (*model.Generation, error) {
	var g model.Generation
	if err := json.Unmarshal(payload, &g); err != nil {
		return nil, eris.Wrap(err, "unmarshal generation")
	}
	return &g, nil
}
