package bus2sqlite

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrMalformedRow = errors.New("malformed row")

const (
	stopsColumnCount     = 9
	sequencesColumnCount = 4
)

// BusStop is one row of the stops feed plus its computed WGS84 position.
type BusStop struct {
	LBSL     string
	Code     string
	Naptan   string
	Name     string
	Easting  int64
	Northing int64
	Heading  *int64 // nil when the feed leaves it blank
	Area     string
	Virtual  string
	Lng      float64
	Lat      float64
}

// RouteStopLink is one row of the sequences feed.
type RouteStopLink struct {
	Route    string
	Run      int64
	Sequence int64
	LBSL     string
}

type rowError struct {
	file string
	line int
	msg  string
}

func (e *rowError) Error() string {
	return fmt.Sprintf("%s line %d: %s", e.file, e.line, e.msg)
}

func (e *rowError) Unwrap() error { return ErrMalformedRow }

func malformed(file string, line int, format string, args ...any) error {
	return &rowError{file: file, line: line, msg: fmt.Sprintf(format, args...)}
}

// parseBusStop parses the feed columns of a stop. Lng and Lat are left zero.
func parseBusStop(file string, line int, row []string) (BusStop, error) {
	if len(row) != stopsColumnCount {
		return BusStop{}, malformed(file, line, "expected %d columns, got %d", stopsColumnCount, len(row))
	}
	stop := BusStop{
		LBSL:    row[0],
		Code:    row[1],
		Naptan:  row[2],
		Name:    row[3],
		Area:    row[7],
		Virtual: row[8],
	}
	if stop.LBSL == "" {
		return BusStop{}, malformed(file, line, "empty stop id")
	}

	var err error
	if stop.Easting, err = parseInt(row[4]); err != nil {
		return BusStop{}, malformed(file, line, "easting %q is not an integer", row[4])
	}
	if stop.Northing, err = parseInt(row[5]); err != nil {
		return BusStop{}, malformed(file, line, "northing %q is not an integer", row[5])
	}
	if strings.TrimSpace(row[6]) != "" {
		heading, err := parseInt(row[6])
		if err != nil {
			return BusStop{}, malformed(file, line, "heading %q is not an integer", row[6])
		}
		stop.Heading = &heading
	}
	return stop, nil
}

func parseRouteStopLink(file string, line int, row []string) (RouteStopLink, error) {
	if len(row) != sequencesColumnCount {
		return RouteStopLink{}, malformed(file, line, "expected %d columns, got %d", sequencesColumnCount, len(row))
	}
	link := RouteStopLink{Route: row[0], LBSL: row[3]}

	var err error
	if link.Run, err = parseInt(row[1]); err != nil {
		return RouteStopLink{}, malformed(file, line, "run %q is not an integer", row[1])
	}
	if link.Sequence, err = parseInt(row[2]); err != nil {
		return RouteStopLink{}, malformed(file, line, "sequence %q is not an integer", row[2])
	}
	return link, nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}
