package bus2sqlite

import (
	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Export writes every snapshot table in dbPath to <outDir>/<table>.csv.
func Export(dbPath string, outDir string) error {
	if dbPath == "" {
		panic("Missing dbPath")
	}
	if outDir == "" {
		panic("Missing outDir")
	}

	slog.Info(fmt.Sprintf("Exporting %s to %s", dbPath, outDir))

	db, err := sqlite.OpenConn(dbPath, sqlite.SQLITE_OPEN_READONLY)
	if err != nil {
		return err
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}

	for _, schema := range snapshotSchema {
		if err := exportTableTo(db, schema, filepath.Join(outDir, schema.Name+".csv")); err != nil {
			return err
		}
	}

	err = db.Close()
	db = nil
	return err
}

func exportTableTo(db *sqlite.Conn, schema tableSchema, path string) error {
	outputF, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() { _ = outputF.Close() }()

	rowCount, err := ExportTable(db, schema.Name, outputF)
	if err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("Wrote %d rows to %s", rowCount, path))
	return outputF.Close()
}

// ExportTable writes table as CSV with a header row, ordered by rowid.
// It returns the number of data rows written.
func ExportTable(db *sqlite.Conn, table string, w io.Writer) (int, error) {
	outputCSV := csv.NewWriter(w)

	var cols []string
	err := sqlitex.Exec(db, "SELECT name FROM pragma_table_info(?)", func(stmt *sqlite.Stmt) error {
		cols = append(cols, stmt.GetText("name"))
		return nil
	}, table)
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, fmt.Errorf("no such table %s", table)
	}
	if err := outputCSV.Write(cols); err != nil {
		return 0, err
	}

	rowCount := 0
	err = sqlitex.ExecTransient(db, "SELECT * FROM "+table+" ORDER BY rowid", func(stmt *sqlite.Stmt) error {
		var row []string
		for _, col := range cols {
			row = append(row, stmt.GetText(col))
		}
		rowCount++
		return outputCSV.Write(row)
	})
	if err != nil {
		return 0, err
	}

	outputCSV.Flush()
	return rowCount, outputCSV.Error()
}
