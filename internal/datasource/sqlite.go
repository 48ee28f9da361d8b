package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/spectra/pkg/model"
)

const nodesSchema = `
CREATE TABLE IF NOT EXISTS nodes (
	position  INTEGER NOT NULL,
	id        TEXT PRIMARY KEY,
	label     TEXT,
	important INTEGER NOT NULL DEFAULT 0,
	value     REAL NOT NULL DEFAULT 0,
	kind      TEXT
)`

// ReadSQLite reads the nodes table of a SQLite database opened read-only.
// Databases without the position or kind columns are read in rowid order.
func ReadSQLite(ctx context.Context, path string, warn func(string)) ([]model.Node, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx,
		`SELECT id, label, important, value, kind FROM nodes ORDER BY position, rowid`)
	if err != nil {
		rows, err = db.QueryContext(ctx, `SELECT id, label, important, value, NULL FROM nodes ORDER BY rowid`)
		if err != nil {
			return nil, fmt.Errorf("querying nodes: %w", err)
		}
	}
	defer rows.Close()

	warn = warnOrDiscard(warn)
	var nodes []model.Node
	row := 0
	for rows.Next() {
		row++
		var (
			n         model.Node
			label     sql.NullString
			kind      sql.NullString
			important sql.NullBool
			value     sql.NullFloat64
		)
		if err := rows.Scan(&n.ID, &label, &important, &value, &kind); err != nil {
			warn(fmt.Sprintf("skipping row %d: %v", row, err))
			continue
		}
		n.Label = label.String
		n.Kind = kind.String
		n.Important = important.Bool
		if value.Valid {
			if value.Float64 < 0 || value.Float64 > 1 {
				warn(fmt.Sprintf("row %d: value %v out of range, clamped", row, value.Float64))
			}
			n.Value = model.ClampUnit(value.Float64)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating nodes: %w", err)
	}
	return nodes, nil
}

// WriteSQLite replaces the nodes table of the database at path, creating
// the file when needed. Nodes are normalized first.
func WriteSQLite(ctx context.Context, path string, nodes []model.Node) error {
	db, err := sql.Open("sqlite", "file:"+path)
	if err != nil {
		return fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, nodesSchema); err != nil {
		return fmt.Errorf("creating nodes table: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM nodes`); err != nil {
		return fmt.Errorf("clearing nodes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO nodes (position, id, label, important, value, kind) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range model.NormalizeAll(nodes) {
		if _, err := stmt.ExecContext(ctx, i, n.ID, n.Label, n.Important, n.Value, n.Kind); err != nil {
			return fmt.Errorf("inserting node %s: %w", n.ID, err)
		}
	}
	return tx.Commit()
}
