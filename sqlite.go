package bus2sqlite

import (
	"crawshaw.io/sqlite"
)

// Rollback journal rather than WAL, so a closed snapshot is a single file.
const snapshotOpenFlags = sqlite.SQLITE_OPEN_READWRITE | sqlite.SQLITE_OPEN_CREATE | sqlite.SQLITE_OPEN_NOMUTEX

func sqlitexNoop(_ *sqlite.Stmt) error { return nil }

// execPrepared runs stmt once with fresh bindings.
func execPrepared(stmt *sqlite.Stmt, bind func(stmt *sqlite.Stmt)) error {
	if err := stmt.Reset(); err != nil {
		return err
	}
	if err := stmt.ClearBindings(); err != nil {
		return err
	}
	bind(stmt)
	for {
		rowReturned, err := stmt.Step()
		if err != nil {
			return err
		}
		if !rowReturned {
			return nil
		}
	}
}
