package learning

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects the SQL flavour used for DDL and placeholders.
type Dialect string

const (
	MySQL    Dialect = "mysql"
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mysql", "mariadb":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return Postgres, nil
	case "sqlite", "sqlite3", "":
		return SQLite, nil
	}
	return "", fmt.Errorf("unsupported database driver %q", name)
}

func (d Dialect) driverName() string {
	switch d {
	case Postgres:
		return "pgx"
	case MySQL:
		return "mysql"
	default:
		return "sqlite"
	}
}

// Open connects to the learning database and verifies the connection.
func Open(ctx context.Context, d Dialect, dsn string) (*sql.DB, error) {
	db, err := sql.Open(d.driverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d, err)
	}
	if d == SQLite {
		if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
			db.SetMaxOpenConns(1)
		} else if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("pragma: %w", err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", d, err)
	}
	return db, nil
}

// rebind rewrites ? placeholders into $n for Postgres.
func (d Dialect) rebind(query string) string {
	if d != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d Dialect) schema() []string {
	switch d {
	case MySQL:
		return []string{`
CREATE TABLE IF NOT EXISTS chatbot_learning (
    id               BIGINT AUTO_INCREMENT PRIMARY KEY,
    question         TEXT NOT NULL,
    response         TEXT NOT NULL,
    user_id          VARCHAR(64) NULL,
    intent_category  VARCHAR(64) NOT NULL DEFAULT 'general',
    intent_labels    TEXT NOT NULL,
    confidence_score DOUBLE NOT NULL DEFAULT 0,
    frequency        INT NOT NULL DEFAULT 1,
    created_at       BIGINT NOT NULL,
    last_asked       BIGINT NOT NULL,
    UNIQUE KEY uq_chatbot_learning_question (question(255)),
    KEY idx_chatbot_learning_lookup (intent_category, confidence_score, frequency)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`}
	case Postgres:
		return []string{`
CREATE TABLE IF NOT EXISTS chatbot_learning (
    id               BIGSERIAL PRIMARY KEY,
    question         TEXT NOT NULL UNIQUE,
    response         TEXT NOT NULL,
    user_id          TEXT,
    intent_category  TEXT NOT NULL DEFAULT 'general',
    intent_labels    TEXT NOT NULL DEFAULT '[]',
    confidence_score DOUBLE PRECISION NOT NULL DEFAULT 0,
    frequency        INTEGER NOT NULL DEFAULT 1,
    created_at       BIGINT NOT NULL,
    last_asked       BIGINT NOT NULL
)`, `
CREATE INDEX IF NOT EXISTS idx_chatbot_learning_lookup
ON chatbot_learning(intent_category, confidence_score, frequency)`}
	default:
		return []string{`
CREATE TABLE IF NOT EXISTS chatbot_learning (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    question         TEXT NOT NULL UNIQUE,
    response         TEXT NOT NULL,
    user_id          TEXT,
    intent_category  TEXT NOT NULL DEFAULT 'general',
    intent_labels    TEXT NOT NULL DEFAULT '[]',
    confidence_score REAL NOT NULL DEFAULT 0,
    frequency        INTEGER NOT NULL DEFAULT 1,
    created_at       INTEGER NOT NULL,
    last_asked       INTEGER NOT NULL
)`, `
CREATE INDEX IF NOT EXISTS idx_chatbot_learning_lookup
ON chatbot_learning(intent_category, confidence_score, frequency)`}
	}
}
