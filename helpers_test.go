package bus2sqlite

import (
	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"fmt"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleStops = `Stop_Code_LBSL,Bus_Stop_Code,Naptan_Atco,Stop_Name,Location_Easting,Location_Northing,Heading,Stop_Area,Virtual_Bus_Stop
S1,001,N1,Stop A,530000,180000,90,AREA1,false
S2,002,N2,Stop B,531000,181000,270,AREA1,false
`

const sampleSequences = `Route,Run,Sequence,Stop_Code_LBSL
RT1,1,1,S1
`

func testTempdir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "")
	require.NoError(t, err)
	t.Cleanup(func() {
		if t.Failed() {
			fmt.Println("Preserving tempdir after failed test", dir)
		} else {
			_ = os.RemoveAll(dir)
		}
	})
	return dir
}

func writeTestFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func openTestSnapshot(t *testing.T, path string) *sqlite.Conn {
	t.Helper()
	conn, err := sqlite.OpenConn(path, sqlite.SQLITE_OPEN_READONLY)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func countTable(t *testing.T, conn *sqlite.Conn, query string) int {
	t.Helper()
	var count int
	err := sqlitex.Exec(conn, query, func(stmt *sqlite.Stmt) error {
		count = int(stmt.ColumnInt64(0))
		return nil
	})
	require.NoError(t, err)
	return count
}

func dumpSnapshot(t *testing.T, path string) string {
	t.Helper()
	conn := openTestSnapshot(t, path)
	var out strings.Builder
	for _, schema := range snapshotSchema {
		_, err := ExportTable(conn, schema.Name, &out)
		require.NoError(t, err)
	}
	return out.String()
}

// assertSnapshotsEqual fails with a unified diff of the table dumps.
func assertSnapshotsEqual(t *testing.T, expected, actual string) {
	t.Helper()
	expectedDump := dumpSnapshot(t, expected)
	actualDump := dumpSnapshot(t, actual)
	edits := myers.ComputeEdits(span.URIFromPath(expected), expectedDump, actualDump)
	if len(edits) > 0 {
		t.Errorf("%s != %s\n%s", expected, actual,
			gotextdiff.ToUnified("expected", "actual", expectedDump, edits))
	}
}

func readBytes(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}
