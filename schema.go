package bus2sqlite

import (
	"fmt"
	"strings"
)

// NOTE: routes.lbsl has no REFERENCES clause. Dangling stop ids are kept.

type tableSchema struct {
	Name    string
	Columns []columnSchema
	Indexes []indexSchema
}

type columnSchema struct {
	Name        string
	Type        string
	Constraints string
}

type indexSchema struct {
	Name    string
	Columns []string
}

var stopsTable = tableSchema{
	Name: "stops",
	Columns: []columnSchema{
		{Name: "lbsl", Type: "TEXT", Constraints: "PRIMARY KEY"},
		{Name: "code", Type: "TEXT"},
		{Name: "naptan", Type: "TEXT"},
		{Name: "name", Type: "TEXT"},
		{Name: "easting", Type: "INT"},
		{Name: "northing", Type: "INT"},
		{Name: "heading", Type: "INT"},
		{Name: "area", Type: "TEXT"},
		{Name: "virtual", Type: "TEXT"},
		{Name: "lng", Type: "REAL"},
		{Name: "lat", Type: "REAL"},
	},
	Indexes: []indexSchema{
		{Name: "stops_code", Columns: []string{"code"}},
		{Name: "stops_lat_lng", Columns: []string{"lat", "lng"}},
	},
}

var routesTable = tableSchema{
	Name: "routes",
	Columns: []columnSchema{
		{Name: "route", Type: "TEXT"},
		{Name: "run", Type: "INT"},
		{Name: "sequence", Type: "INT"},
		{Name: "lbsl", Type: "TEXT"},
	},
	Indexes: []indexSchema{
		{Name: "routes_lbsl", Columns: []string{"lbsl"}},
		{Name: "routes_route_run_sequence", Columns: []string{"route", "run", "sequence"}},
	},
}

var snapshotSchema = []tableSchema{stopsTable, routesTable}

func (s tableSchema) createQuery() string {
	var columnFragments []string
	for _, column := range s.Columns {
		fragment := column.Name + " " + column.Type
		if column.Constraints != "" {
			fragment += " " + column.Constraints
		}
		columnFragments = append(columnFragments, fragment)
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", s.Name, strings.Join(columnFragments, ", "))
}

func (s tableSchema) insertQuery() string {
	var names, args []string
	for i, column := range s.Columns {
		names = append(names, column.Name)
		args = append(args, fmt.Sprintf("?%d", i+1))
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.Name, strings.Join(names, ", "), strings.Join(args, ", "))
}

func (s tableSchema) indexQueries() []string {
	var out []string
	for _, index := range s.Indexes {
		out = append(out, fmt.Sprintf("CREATE INDEX %s ON %s (%s)",
			index.Name, s.Name, strings.Join(index.Columns, ", ")))
	}
	return out
}

func (s tableSchema) columnNames() []string {
	var out []string
	for _, column := range s.Columns {
		out = append(out, column.Name)
	}
	return out
}
