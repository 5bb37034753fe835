// Package osgrid converts between the British National Grid (OSGB36,
// EPSG:27700) and WGS84 geographic coordinates (EPSG:4326).
//
// The transforms come from the EPSG repository in github.com/wroge/wgs84:
// Transverse Mercator on the Airy 1830 ellipsoid and a 7-parameter Helmert
// datum shift, accurate to a few metres. The OSTN15 grid is not applied.
//
// Inputs far outside the grid produce meaningless output rather than an
// error. Use InGrid to screen them.
package osgrid

import "github.com/wroge/wgs84"

const (
	NationalGrid = 27700
	LonLat       = 4326
)

// Grid extent in metres.
const (
	MaxEasting  = 700000.0
	MaxNorthing = 1300000.0
)

type transform = func(a, b, c float64) (float64, float64, float64)

// Transformer holds both directions of the conversion. The zero value is not
// usable; construct with New. A Transformer is safe for concurrent use.
type Transformer struct {
	toWGS84 transform
	toGrid  transform
}

func New() *Transformer {
	epsg := wgs84.EPSG()
	grid := epsg.Code(NationalGrid)
	lonLat := epsg.Code(LonLat)
	return &Transformer{
		toWGS84: wgs84.Transform(grid, lonLat),
		toGrid:  wgs84.Transform(lonLat, grid),
	}
}

// ToWGS84 converts a National Grid easting/northing in metres to WGS84
// longitude/latitude in degrees.
func (t *Transformer) ToWGS84(easting, northing float64) (lng, lat float64) {
	lng, lat, _ = t.toWGS84(easting, northing, 0)
	return lng, lat
}

// ToGrid converts WGS84 longitude/latitude in degrees to a National Grid
// easting/northing in metres.
func (t *Transformer) ToGrid(lng, lat float64) (easting, northing float64) {
	easting, northing, _ = t.toGrid(lng, lat, 0)
	return easting, northing
}

// InGrid reports whether easting/northing lie inside the National Grid.
func InGrid(easting, northing float64) bool {
	return easting >= 0 && easting <= MaxEasting && northing >= 0 && northing <= MaxNorthing
}
