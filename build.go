package bus2sqlite

import (
	"crawshaw.io/sqlite"
	"crawshaw.io/sqlite/sqlitex"
	"errors"
	"fmt"
	"github.com/dzfranklin/bus2sqlite/osgrid"
	"log/slog"
	"os"
	"path/filepath"
)

var ErrDuplicateStop = errors.New("duplicate stop id")

// Transformer converts National Grid coordinates to WGS84.
type Transformer interface {
	ToWGS84(easting, northing float64) (lng, lat float64)
}

// ProgressFunc is called while a table loads, each time the number of rows
// still to process is a multiple of ProgressInterval.
type ProgressFunc func(table string, remaining int)

const ProgressInterval = 1000

type BuildOpts struct {
	// Transformer defaults to osgrid.New().
	Transformer Transformer
	Progress    ProgressFunc
	// AllowOutOfGrid keeps stops whose easting/northing lie outside the
	// National Grid. Their lng/lat are meaningless.
	AllowOutOfGrid bool
	Clip           *ClipFeature
	CheckLinks     bool
}

type BuildStats struct {
	Stops         int
	Routes        int
	Clipped       int
	DanglingLinks int
}

var buildPragmas = map[string]string{
	"synchronous": "OFF", // Publish syncs the finished file
}

// Build writes a new snapshot database to tempPath from the stops and
// sequences feeds. On error the temp file is removed.
func Build(stopsPath, sequencesPath, tempPath string, opts *BuildOpts) (stats *BuildStats, err error) {
	if stopsPath == "" {
		panic("Missing stopsPath")
	}
	if sequencesPath == "" {
		panic("Missing sequencesPath")
	}
	if tempPath == "" {
		panic("Missing tempPath")
	}

	if opts == nil {
		opts = &BuildOpts{}
	}
	if opts.Transformer == nil {
		opts.Transformer = osgrid.New()
	}

	slog.Info(fmt.Sprintf("Building %s from %s and %s", tempPath, stopsPath, sequencesPath))

	if err := removeSnapshot(tempPath); err != nil {
		return nil, err
	}

	db, err := sqlite.OpenConn(tempPath, snapshotOpenFlags)
	if err != nil {
		return nil, err
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
		if err != nil {
			_ = removeSnapshot(tempPath)
		}
	}()

	for pragma, value := range buildPragmas {
		if err := sqlitex.Exec(db, "PRAGMA "+pragma+" = "+value, sqlitexNoop); err != nil {
			return nil, err
		}
	}

	for _, schema := range snapshotSchema {
		if err := sqlitex.ExecTransient(db, schema.createQuery(), sqlitexNoop); err != nil {
			return nil, err
		}
	}

	stats = &BuildStats{}
	b := &builder{db: db, opts: opts, seenStops: make(map[string]struct{})}

	stats.Stops, stats.Clipped, err = b.loadStops(stopsPath)
	if err != nil {
		return nil, err
	}
	stats.Routes, err = b.loadRoutes(sequencesPath)
	if err != nil {
		return nil, err
	}

	for _, schema := range snapshotSchema {
		for _, query := range schema.indexQueries() {
			if err := sqlitex.ExecTransient(db, query, sqlitexNoop); err != nil {
				return nil, err
			}
		}
	}

	if opts.CheckLinks {
		stats.DanglingLinks, err = checkLinks(db)
		if err != nil {
			return nil, err
		}
	}

	err = db.Close()
	db = nil
	if err != nil {
		return nil, err
	}

	slog.Info(fmt.Sprintf("Wrote %s (%d stops, %d routes)", tempPath, stats.Stops, stats.Routes))
	return stats, nil
}

type builder struct {
	db   *sqlite.Conn
	opts *BuildOpts
	// Stop ids seen so far, including clipped stops the PRIMARY KEY never sees.
	seenStops map[string]struct{}
}

func (b *builder) progress(table string, remaining int) {
	if b.opts.Progress != nil && remaining%ProgressInterval == 0 {
		b.opts.Progress(table, remaining)
	}
}

func (b *builder) loadStops(path string) (written, clipped int, err error) {
	file := filepath.Base(path)
	remaining, err := countDataRows(path)
	if err != nil {
		return 0, 0, err
	}
	slog.Info(fmt.Sprintf("Processing %d bus stops", remaining))

	defer sqlitex.Save(b.db)(&err)

	insertStmt, err := b.db.Prepare(stopsTable.insertQuery())
	if err != nil {
		return 0, 0, err
	}

	err = eachDataRow(path, func(line int, row []string) error {
		stop, err := parseBusStop(file, line, row)
		if err != nil {
			return err
		}
		if _, ok := b.seenStops[stop.LBSL]; ok {
			return fmt.Errorf("%w %q at %s line %d", ErrDuplicateStop, stop.LBSL, file, line)
		}
		b.seenStops[stop.LBSL] = struct{}{}

		if !b.opts.AllowOutOfGrid && !inGrid(stop) {
			return malformed(file, line, "easting/northing %d,%d outside the National Grid", stop.Easting, stop.Northing)
		}
		stop.Lng, stop.Lat = b.opts.Transformer.ToWGS84(float64(stop.Easting), float64(stop.Northing))

		remaining--
		defer b.progress(stopsTable.Name, remaining)

		if b.opts.Clip != nil && !b.opts.Clip.Contains(stop.Lng, stop.Lat) {
			clipped++
			return nil
		}

		err = execPrepared(insertStmt, func(stmt *sqlite.Stmt) { bindStop(stmt, stop) })
		if err != nil {
			return err
		}
		written++
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	if clipped > 0 {
		slog.Info(fmt.Sprintf("Clipped %d stops outside the clip feature", clipped))
	}
	slog.Info(fmt.Sprintf("Wrote %d rows to %s", written, stopsTable.Name))
	return written, clipped, nil
}

func (b *builder) loadRoutes(path string) (written int, err error) {
	file := filepath.Base(path)
	remaining, err := countDataRows(path)
	if err != nil {
		return 0, err
	}
	slog.Info(fmt.Sprintf("Processing %d bus routes", remaining))

	defer sqlitex.Save(b.db)(&err)

	insertStmt, err := b.db.Prepare(routesTable.insertQuery())
	if err != nil {
		return 0, err
	}

	err = eachDataRow(path, func(line int, row []string) error {
		link, err := parseRouteStopLink(file, line, row)
		if err != nil {
			return err
		}
		err = execPrepared(insertStmt, func(stmt *sqlite.Stmt) {
			stmt.BindText(1, link.Route)
			stmt.BindInt64(2, link.Run)
			stmt.BindInt64(3, link.Sequence)
			stmt.BindText(4, link.LBSL)
		})
		if err != nil {
			return err
		}
		written++
		remaining--
		b.progress(routesTable.Name, remaining)
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Info(fmt.Sprintf("Wrote %d rows to %s", written, routesTable.Name))
	return written, nil
}

func bindStop(stmt *sqlite.Stmt, stop BusStop) {
	stmt.BindText(1, stop.LBSL)
	stmt.BindText(2, stop.Code)
	stmt.BindText(3, stop.Naptan)
	stmt.BindText(4, stop.Name)
	stmt.BindInt64(5, stop.Easting)
	stmt.BindInt64(6, stop.Northing)
	if stop.Heading != nil {
		stmt.BindInt64(7, *stop.Heading)
	} else {
		stmt.BindNull(7)
	}
	stmt.BindText(8, stop.Area)
	stmt.BindText(9, stop.Virtual)
	stmt.BindFloat(10, stop.Lng)
	stmt.BindFloat(11, stop.Lat)
}

func inGrid(stop BusStop) bool {
	return osgrid.InGrid(float64(stop.Easting), float64(stop.Northing))
}

// removeSnapshot removes a database file and any journal left beside it. A
// stale hot journal would otherwise be replayed into the next build.
func removeSnapshot(path string) error {
	if err := removeIfExists(path + "-journal"); err != nil {
		return err
	}
	return removeIfExists(path)
}

func removeIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
