package visibility

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// storedTimeLayout is fixed width so checked_at sorts as text.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Check is one stored visibility run for a domain.
type Check struct {
	ID        int64
	Domain    string
	Score     int
	Platforms []PlatformResult
	CheckedAt time.Time
}

// Store persists visibility checks.
type Store interface {
	Record(ctx context.Context, c Check) (int64, error)
	Latest(ctx context.Context, domain string) (Check, bool, error)
	History(ctx context.Context, domain string, limit int) ([]Check, error)
	Close() error
}

var schemas = map[string]string{
	"sqlite": `
CREATE TABLE IF NOT EXISTS visibility_checks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	domain TEXT NOT NULL,
	score INTEGER NOT NULL,
	platforms TEXT NOT NULL,
	checked_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visibility_checks_domain ON visibility_checks(domain, checked_at);`,
	"postgres": `
CREATE TABLE IF NOT EXISTS visibility_checks (
	id BIGSERIAL PRIMARY KEY,
	domain TEXT NOT NULL,
	score INTEGER NOT NULL,
	platforms TEXT NOT NULL,
	checked_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_visibility_checks_domain ON visibility_checks(domain, checked_at);`,
}

// SQLStore keeps checks in SQLite or PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenStore opens the database for driver ("sqlite" or "postgres") and
// creates the schema when missing.
func OpenStore(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	schema, ok := schemas[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}
	if driver == "sqlite" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if driver == "sqlite" {
		// a single connection keeps :memory: databases shared and serializes writers
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return &SQLStore{db: db, driver: driver}, nil
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStore) Record(ctx context.Context, c Check) (int64, error) {
	platforms, err := json.Marshal(c.Platforms)
	if err != nil {
		return 0, fmt.Errorf("encode platforms: %w", err)
	}
	checkedAt := c.CheckedAt.UTC().Format(storedTimeLayout)

	if s.driver == "postgres" {
		var id int64
		err := s.db.QueryRowContext(ctx, s.rebind(
			`INSERT INTO visibility_checks (domain, score, platforms, checked_at) VALUES (?, ?, ?, ?) RETURNING id`),
			c.Domain, c.Score, string(platforms), checkedAt).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert visibility check: %w", err)
		}
		return id, nil
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO visibility_checks (domain, score, platforms, checked_at) VALUES (?, ?, ?, ?)`,
		c.Domain, c.Score, string(platforms), checkedAt)
	if err != nil {
		return 0, fmt.Errorf("insert visibility check: %w", err)
	}
	return res.LastInsertId()
}

const selectChecks = `SELECT id, domain, score, platforms, checked_at FROM visibility_checks
WHERE domain = ? ORDER BY checked_at DESC, id DESC LIMIT ?`

func (s *SQLStore) History(ctx context.Context, domain string, limit int) ([]Check, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(selectChecks), domain, limit)
	if err != nil {
		return nil, fmt.Errorf("query visibility checks: %w", err)
	}
	defer rows.Close()

	var checks []Check
	for rows.Next() {
		var (
			c         Check
			platforms string
			checkedAt string
		)
		if err := rows.Scan(&c.ID, &c.Domain, &c.Score, &platforms, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan visibility check: %w", err)
		}
		if err := json.Unmarshal([]byte(platforms), &c.Platforms); err != nil {
			return nil, fmt.Errorf("decode platforms for check %d: %w", c.ID, err)
		}
		if c.CheckedAt, err = time.Parse(storedTimeLayout, checkedAt); err != nil {
			return nil, fmt.Errorf("parse checked_at for check %d: %w", c.ID, err)
		}
		checks = append(checks, c)
	}
	return checks, rows.Err()
}

func (s *SQLStore) Latest(ctx context.Context, domain string) (Check, bool, error) {
	checks, err := s.History(ctx, domain, 1)
	if err != nil {
		return Check{}, false, err
	}
	if len(checks) == 0 {
		return Check{}, false, nil
	}
	return checks[0], true, nil
}

func (s *SQLStore) Close() error {
	return s.db.Close()
}
