// Package fields synthesizes the GERDA sample variables on a
// (time, lat, lon) grid. The values are deterministic test patterns, not
// physically meaningful data.
package fields

import (
	"math"

	"github.com/ctessum/sparse"
)

// CloudFraction returns the daily mean cloud fraction field in percent.
// Values between 10 and 20 are replaced with NaN to simulate a data gap;
// the rest are rounded to two decimals.
func CloudFraction(nt int, lat, lon []float64) *sparse.DenseArray {
	cfc := sparse.ZerosDense(nt, len(lat), len(lon))
	for t := 0; t < nt; t++ {
		for j, la := range lat {
			latTerm := math.Pow(math.Cos(float64(t)/10*deg2rad(la)), 2)
			for i, lo := range lon {
				lonTerm := math.Pow(math.Sin(float64(t)/5*deg2rad(lo)), 2)
				v := 100 * lonTerm * latTerm
				if v < 10 || v > 20 {
					v = math.Round(v*100) / 100
				} else {
					v = math.NaN()
				}
				cfc.Set(v, t, j, i)
			}
		}
	}
	return cfc
}

// Observations returns the per-cell observation count field. The synthetic
// pattern drifts eastward over the time axis; values are cast to the uint8
// range the same way numpy casts floats (truncate toward zero, wrap mod 256).
func Observations(nt int, lat, lon []float64) *sparse.DenseArray {
	nobs := sparse.ZerosDense(nt, len(lat), len(lon))
	if nt == 0 || len(lon) == 0 {
		return nobs
	}
	lonMin, lonMax := lon[0], lon[0]
	for _, lo := range lon {
		lonMin = math.Min(lonMin, lo)
		lonMax = math.Max(lonMax, lo)
	}
	tmax := nt - 1
	for t := 0; t < nt; t++ {
		shift := 0.0
		if tmax > 0 {
			shift = (lonMax - lonMin) / 2 * float64(t) / float64(tmax)
		}
		for j, la := range lat {
			for i, lo := range lon {
				v := 96 * math.Pow(math.Sin(float64(t)/5*deg2rad(lo+shift)*deg2rad(la)), 2)
				nobs.Set(float64(castUint8(v)), t, j, i)
			}
		}
	}
	return nobs
}

// Quality returns the per-cell quality classification. The bands depend only
// on latitude magnitude: below 30 degrees good (0), between 30 and 65 medium
// (1), above 65 bad (2). Latitudes of exactly 30 or 65 match no band and
// keep the zero default.
func Quality(nt int, lat, lon []float64) *sparse.DenseArray {
	qual := sparse.ZerosDense(nt, len(lat), len(lon))
	for j, la := range lat {
		abs := math.Abs(la)
		var code float64
		switch {
		case abs < 30:
			code = 0
		case abs > 30 && abs < 65:
			code = 1
		case abs > 65:
			code = 2
		}
		if code == 0 {
			continue
		}
		for t := 0; t < nt; t++ {
			for i := range lon {
				qual.Set(code, t, j, i)
			}
		}
	}
	return qual
}

// heartExtent scales the normalized axes so the heart shape keeps a margin
// inside the grid.
const heartExtent = 1.2

// SunshineDuration returns the sunshine duration field in seconds: a
// heart-shaped region of 1s on a background of 0s, rotated by 360*i/n
// degrees at timestep i of n.
func SunshineDuration(nt, nlat, nlon int) *sparse.DenseArray {
	sdu := sparse.ZerosDense(nt, nlat, nlon)
	if nt == 0 {
		return sdu
	}
	heart := HeartMask(nlat, nlon)
	for t := 0; t < nt; t++ {
		angle := 360 * float64(t) / float64(nt)
		rotated := Rotate(heart, angle)
		for j := range rotated {
			for i, on := range rotated[j] {
				if on {
					sdu.Set(1, t, j, i)
				}
			}
		}
	}
	return sdu
}

// HeartMask builds a boolean heart shape on a normalized grid with rows
// spanning y from 1 to -1 and columns spanning x from -1 to 1, both scaled
// by heartExtent. A cell is inside when x^2 + (5y/4 - sqrt(|x|))^2 - 1 <= 0.
func HeartMask(rows, cols int) [][]bool {
	mask := make([][]bool, rows)
	for j := 0; j < rows; j++ {
		mask[j] = make([]bool, cols)
		y := heartExtent * linspace(1, -1, rows, j)
		for i := 0; i < cols; i++ {
			x := heartExtent * linspace(-1, 1, cols, i)
			d := x*x + math.Pow(5*y/4-math.Sqrt(math.Abs(x)), 2) - 1
			mask[j][i] = d <= 0
		}
	}
	return mask
}

// Rotate rotates a boolean mask counterclockwise by the given angle in
// degrees about the array center. The output has the same shape; cells whose
// source falls outside the input are false.
func Rotate(mask [][]bool, angle float64) [][]bool {
	rows := len(mask)
	if rows == 0 {
		return nil
	}
	cols := len(mask[0])
	cy := float64(rows-1) / 2
	cx := float64(cols-1) / 2
	sin, cos := math.Sincos(angle * math.Pi / 180)

	out := make([][]bool, rows)
	for j := 0; j < rows; j++ {
		out[j] = make([]bool, cols)
		for i := 0; i < cols; i++ {
			// Inverse mapping: find the source cell that lands here.
			dy := float64(j) - cy
			dx := float64(i) - cx
			sy := cy + cos*dy - sin*dx
			sx := cx + sin*dy + cos*dx
			sj := int(math.Round(sy))
			si := int(math.Round(sx))
			if sj >= 0 && sj < rows && si >= 0 && si < cols {
				out[j][i] = mask[sj][si]
			}
		}
	}
	return out
}

// linspace returns the i-th of n evenly spaced points from start to stop
// inclusive. A single point yields start.
func linspace(start, stop float64, n, i int) float64 {
	if n < 2 {
		return start
	}
	return start + (stop-start)*float64(i)/float64(n-1)
}

// castUint8 reproduces numpy's float-to-uint8 cast: truncate toward zero,
// then wrap modulo 256.
func castUint8(v float64) uint8 {
	return uint8(int64(v))
}

func deg2rad(d float64) float64 {
	return d * math.Pi / 180
}
