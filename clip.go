package bus2sqlite

import (
	"fmt"
	"github.com/tidwall/geojson"
	"github.com/tidwall/geojson/geometry"
	"os"
)

// ClipFeature restricts a snapshot to the stops inside a GeoJSON geometry.
type ClipFeature struct {
	feature geojson.Object
}

func ParseClipFeature(data string) (*ClipFeature, error) {
	feature, err := geojson.Parse(data, &geojson.ParseOptions{RequireValid: true})
	if err != nil {
		return nil, fmt.Errorf("parse clip feature: %w", err)
	}
	return &ClipFeature{feature: feature}, nil
}

func LoadClipFeature(path string) (*ClipFeature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseClipFeature(string(data))
}

func (c *ClipFeature) NumPoints() int {
	return c.feature.NumPoints()
}

func (c *ClipFeature) Contains(lng, lat float64) bool {
	return c.feature.Contains(geojson.NewPoint(geometry.Point{X: lng, Y: lat}))
}
