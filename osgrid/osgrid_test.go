package osgrid

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func dms(d, m, s float64) float64 {
	return d + m/60 + s/3600
}

// Worked example from the Ordnance Survey coordinate systems guide.
const (
	exampleEasting  = 651409.903
	exampleNorthing = 313177.270
)

func TestToWGS84WorkedExample(t *testing.T) {
	tr := New()
	lng, lat := tr.ToWGS84(exampleEasting, exampleNorthing)
	assert.InDelta(t, dms(52, 39, 28.72), lat, 1e-5)
	assert.InDelta(t, dms(1, 42, 57.79), lng, 1e-5)
}

func TestToWGS84CentralLondon(t *testing.T) {
	tr := New()
	lng, lat := tr.ToWGS84(530000, 180000)
	assert.InDelta(t, 51.51, lat, 0.02)
	assert.InDelta(t, -0.13, lng, 0.02)
}

func TestToGridWorkedExample(t *testing.T) {
	tr := New()
	e, n := tr.ToGrid(dms(1, 42, 57.79), dms(52, 39, 28.72))
	// The WGS84 reference is only given to 0.01", so allow ~0.5m.
	assert.InDelta(t, exampleEasting, e, 0.5)
	assert.InDelta(t, exampleNorthing, n, 0.5)
}

func TestRoundTrip(t *testing.T) {
	tr := New()
	points := [][2]float64{
		{530000, 180000},
		{531000, 181000},
		{exampleEasting, exampleNorthing},
		{326000, 673000},  // Edinburgh
		{216000, 771000},  // Oban
		{133000, 26000},   // Lizard
		{465000, 1210000}, // Shetland
	}
	for _, p := range points {
		lng, lat := tr.ToWGS84(p[0], p[1])
		e, n := tr.ToGrid(lng, lat)
		// A reversed Helmert shift is only an approximate inverse.
		assert.InDelta(t, p[0], e, 0.05, "easting for %v", p)
		assert.InDelta(t, p[1], n, 0.05, "northing for %v", p)
	}
}

// Results from the OS guide's own Transverse Mercator and Helmert formulae,
// to 1e-7 degrees.
func TestToWGS84MatchesOSFormulae(t *testing.T) {
	tr := New()
	cases := []struct {
		name     string
		e, n     float64
		lng, lat float64
	}{
		{"worked example", exampleEasting, exampleNorthing, 1.7160519, 52.6579786},
		{"central london", 530000, 180000, -0.1283540, 51.5039908},
		{"edinburgh", 326000, 673000, -3.1863793, 55.9443222},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			lng, lat := tr.ToWGS84(c.e, c.n)
			assert.InDelta(t, c.lng, lng, 2e-5)
			assert.InDelta(t, c.lat, lat, 2e-5)
		})
	}
}

func TestInGrid(t *testing.T) {
	assert.True(t, InGrid(530000, 180000))
	assert.True(t, InGrid(0, 0))
	assert.False(t, InGrid(-1, 180000))
	assert.False(t, InGrid(530000, 1300001))
	assert.False(t, InGrid(700001, 0))
}

func BenchmarkToWGS84(b *testing.B) {
	tr := New()
	for i := 0; i < b.N; i++ {
		tr.ToWGS84(530000, 180000)
	}
}
