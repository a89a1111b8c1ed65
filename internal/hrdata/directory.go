// Package hrdata looks up the caller's own HR records so answers can cite
// them. Queries are configured per deployment and take the employee id as
// their only parameter, written with the driver's native placeholder.
package hrdata

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

const maxRowsPerQuery = 20

type Directory struct {
	db      *sql.DB
	queries map[string]string
	logger  *slog.Logger
}

// NewDirectory wraps db with named queries such as
// "leave_balance": "SELECT leave_type, remaining FROM leave_balances WHERE empid = ?".
func NewDirectory(db *sql.DB, queries map[string]string, logger *slog.Logger) *Directory {
	if logger == nil {
		logger = slog.Default()
	}
	q := make(map[string]string, len(queries))
	for name, query := range queries {
		if strings.TrimSpace(query) != "" {
			q[name] = query
		}
	}
	return &Directory{db: db, queries: q, logger: logger}
}

func (d *Directory) Names() []string {
	names := make([]string, 0, len(d.queries))
	for name := range d.queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Records runs one named query for empID and returns its rows as column maps.
func (d *Directory) Records(ctx context.Context, name, empID string) ([]map[string]string, error) {
	query, ok := d.queries[name]
	if !ok {
		return nil, fmt.Errorf("unknown hr query %q", name)
	}

	rows, err := d.db.QueryContext(ctx, query, empID)
	if err != nil {
		return nil, fmt.Errorf("failed to run %s: %w", name, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", name, err)
	}

	var out []map[string]string
	for rows.Next() && len(out) < maxRowsPerQuery {
		values := make([]sql.NullString, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", name, err)
		}
		row := make(map[string]string, len(cols))
		for i, col := range cols {
			row[col] = values[i].String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Summary renders every configured query for empID as plain text context.
// A failing query is logged and skipped.
func (d *Directory) Summary(ctx context.Context, empID string) (string, error) {
	if empID == "" {
		return "", nil
	}

	var sb strings.Builder
	for _, name := range d.Names() {
		rows, err := d.Records(ctx, name, empID)
		if err != nil {
			d.logger.Warn("hr record lookup failed", "query", name, "error", err)
			continue
		}
		if len(rows) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "%s:\n", strings.ReplaceAll(name, "_", " "))
		for _, row := range rows {
			sb.WriteString("- ")
			sb.WriteString(formatRow(row))
			sb.WriteString("\n")
		}
	}
	return strings.TrimSpace(sb.String()), nil
}

func formatRow(row map[string]string) string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+row[k])
	}
	return strings.Join(parts, ", ")
}
