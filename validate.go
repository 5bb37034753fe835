package bus2sqlite

import (
	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"fmt"
	"log/slog"
	"strings"
)

const danglingSampleSize = 10

// checkLinks counts route links whose stop id has no stops row. The feeds
// are fetched independently so this is reported, never enforced.
func checkLinks(db *sqlite.Conn) (int, error) {
	slog.Info("Checking route links")

	var dangling int
	err := sqlitex.Exec(db,
		"SELECT count(*) AS count FROM routes WHERE lbsl NOT IN (SELECT lbsl FROM stops)",
		func(stmt *sqlite.Stmt) error {
			dangling = int(stmt.GetInt64("count"))
			return nil
		})
	if err != nil {
		return 0, err
	}
	if dangling == 0 {
		return 0, nil
	}

	var sample []string
	query := fmt.Sprintf("SELECT route, run, sequence, lbsl FROM routes WHERE lbsl NOT IN (SELECT lbsl FROM stops) ORDER BY rowid LIMIT %d",
		danglingSampleSize)
	err = sqlitex.ExecTransient(db, query, func(stmt *sqlite.Stmt) error {
		sample = append(sample, prettyPrintRow(stmt))
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Warn(fmt.Sprintf("%d route link(s) reference unknown stops", dangling),
		"sample", strings.Join(sample, "; "))
	return dangling, nil
}

func prettyPrintRow(row *sqlite.Stmt) string {
	var out []string
	for i := 0; i < row.ColumnCount(); i++ {
		column := row.ColumnName(i)
		value := row.GetText(column)
		if column != "rowid" && value != "" {
			out = append(out, fmt.Sprintf("%s: %s", column, value))
		}
	}
	return strings.Join(out, ", ")
}
