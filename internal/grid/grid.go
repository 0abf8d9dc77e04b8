// Package grid builds the regular time/lon/lat coordinate axes and their
// cell bounds for a GERDA sample dataset.
package grid

import (
	"errors"
	"math"
	"time"

	"github.com/ctessum/sparse"
)

// Alignment selects how a cell's bounds relate to its coordinate value.
type Alignment int

const (
	// AlignLeft places the value at the lower bound: [v, v+res].
	// Used for time, where a daily cell starts at its timestamp.
	AlignLeft Alignment = iota
	// AlignCenter centers the cell on the value: [v-res/2, v+res/2].
	// Used for lon and lat.
	AlignCenter
)

var ErrBadAlignment = errors.New("unsupported bounds alignment")

// Grid holds the coordinate axes and bounds shared by all variables.
type Grid struct {
	Resolution float64

	Time       []time.Time
	TimeBounds [][2]time.Time

	Lon       []float64
	Lat       []float64
	LonBounds *sparse.DenseArray // shape (len(Lon), 2)
	LatBounds *sparse.DenseArray // shape (len(Lat), 2)
}

// New builds a daily time axis from start to end inclusive and lon/lat axes
// covering [lonMin, lonMax] and [latMin, latMax] at the given resolution.
// An end before start yields a grid with an empty time axis.
func New(start, end time.Time, lonMin, lonMax, latMin, latMax, resolution float64) (*Grid, error) {
	g := &Grid{
		Resolution: resolution,
		Time:       Times(start, end),
		Lon:        Axis(lonMin, lonMax, resolution),
		Lat:        Axis(latMin, latMax, resolution),
	}
	g.TimeBounds = TimeBounds(g.Time, 24*time.Hour)
	var err error
	g.LonBounds, err = AxisBounds(g.Lon, resolution, AlignCenter)
	if err != nil {
		return nil, err
	}
	g.LatBounds, err = AxisBounds(g.Lat, resolution, AlignCenter)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// Times returns one timestamp per day from start to end inclusive.
// The result is empty when end is before start.
func Times(start, end time.Time) []time.Time {
	var ts []time.Time
	for t := start; !t.After(end); t = t.Add(24 * time.Hour) {
		ts = append(ts, t)
	}
	return ts
}

// Axis returns values min, min+resolution, ... up to and including the first
// value at or above max. The upper end is inclusive by construction; the
// sequence may overshoot max by less than one step due to floating point.
// Values are rounded to one decimal place to suppress drift.
func Axis(min, max, resolution float64) []float64 {
	if resolution <= 0 {
		return nil
	}
	var vals []float64
	// Mirrors numpy.arange(min, max+resolution, resolution): the stop is
	// exclusive, so max itself is always included.
	for v := min; v < max+resolution; v += resolution {
		vals = append(vals, math.Round(v*10)/10)
	}
	return vals
}

// AxisBounds returns an (n, 2) array of [lower, upper] cell bounds, one pair
// per coordinate value, under the given alignment policy.
func AxisBounds(values []float64, resolution float64, align Alignment) (*sparse.DenseArray, error) {
	bounds := sparse.ZerosDense(len(values), 2)
	for i, v := range values {
		switch align {
		case AlignLeft:
			bounds.Set(v, i, 0)
			bounds.Set(v+resolution, i, 1)
		case AlignCenter:
			bounds.Set(v-0.5*resolution, i, 0)
			bounds.Set(v+0.5*resolution, i, 1)
		default:
			return nil, ErrBadAlignment
		}
	}
	return bounds, nil
}

// TimeBounds returns left-aligned [t, t+step] bounds, one pair per timestamp.
func TimeBounds(times []time.Time, step time.Duration) [][2]time.Time {
	bounds := make([][2]time.Time, len(times))
	for i, t := range times {
		bounds[i] = [2]time.Time{t, t.Add(step)}
	}
	return bounds
}
