package dataio

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/datatidy-cli/internal/table"
)

// SQLiteTable is the table the sqlite export writes into.
const SQLiteTable = "cleaned_data"

// encodeSQLite builds a sqlite database holding t and returns the database file bytes. The
// database is built in a scratch directory so the result can be written through any afero.Fs.
func encodeSQLite(ctx context.Context, t table.Table) ([]byte, error) {
	dir, err := os.MkdirTemp("", "datatidy-sqlite-*")
	if err != nil {
		return nil, fmt.Errorf("sqlite: scratch dir: %w", err)
	}
	defer os.RemoveAll(dir)
	dbPath := filepath.Join(dir, "out.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if err := writeSQLite(ctx, db, t); err != nil {
		db.Close()
		return nil, err
	}
	if err := db.Close(); err != nil {
		return nil, fmt.Errorf("sqlite: close: %w", err)
	}
	b, err := os.ReadFile(dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: read database: %w", err)
	}
	return b, nil
}

func writeSQLite(ctx context.Context, db *sql.DB, t table.Table) error {
	names := sqliteNames(t.Names())
	cols := make([]string, t.NumCols())
	defs := make([]string, t.NumCols())
	for i, c := range t.Columns {
		cols[i] = quoteIdent(names[i])
		defs[i] = cols[i] + " " + sqliteType(c.Type)
	}
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", SQLiteTable, strings.Join(defs, ", "))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("sqlite: create table: %w", err)
	}
	if t.NumCols() == 0 || t.NumRows() == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	stmtSQL := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", SQLiteTable, strings.Join(cols, ", "), placeholders)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, stmtSQL)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(cols))
	for r := 0; r < t.NumRows(); r++ {
		for j, c := range t.Columns {
			args[j] = sqliteValue(c.Cells[r])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("sqlite: insert row %d: %w", r+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit: %w", err)
	}
	return nil
}

// sqliteNames makes column names unique under SQLite's case-insensitive identifier rules by
// suffixing later duplicates with _1, _2, ...
func sqliteNames(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]struct{}, len(names))
	for i, name := range names {
		cand := name
		for n := 1; ; n++ {
			if _, taken := used[strings.ToLower(cand)]; !taken {
				break
			}
			cand = fmt.Sprintf("%s_%d", name, n)
		}
		used[strings.ToLower(cand)] = struct{}{}
		out[i] = cand
	}
	return out
}

func sqliteType(t table.Type) string {
	switch t {
	case table.TypeInt, table.TypeBool:
		return "INTEGER"
	case table.TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

func sqliteValue(c table.Cell) any {
	switch c.Kind() {
	case table.KindNull:
		return nil
	case table.KindInt:
		v, _ := c.Int()
		return v
	case table.KindFloat:
		v, _ := c.Float64()
		return v
	case table.KindBool:
		if v, _ := c.Bool(); v {
			return int64(1)
		}
		return int64(0)
	default:
		return c.String()
	}
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
