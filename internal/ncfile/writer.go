// Package ncfile writes a dataset tree to a NetCDF4 (HDF5) file, applying
// the per-variable on-disk encoding.
package ncfile

import (
	"fmt"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/hdf5"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/ctessum/sparse"

	"github.com/cmsaf/gerda/internal/dataset"
)

// TZ=UTC date --date="2000-01-01 00:00:00" +%s
const unixSecs2000 = 946684800

const timeUnits = "days since 2000-01-01 00:00:00"

// varEncoding describes how a variable is laid out on disk.
type varEncoding struct {
	dims  []string
	dtype string // float64, float32 or uint8
}

// encodings maps group path and variable name to the on-disk encoding,
// mirroring the archive's file specification.
var encodings = map[string]map[string]varEncoding{
	"/": {
		"time":          {[]string{"time"}, "float64"},
		"time_bounds":   {[]string{"time", "bounds"}, "float64"},
		"lon":           {[]string{"lon"}, "float64"},
		"lon_bounds":    {[]string{"lon", "bounds"}, "float64"},
		"lat":           {[]string{"lat"}, "float64"},
		"lat_bounds":    {[]string{"lat", "bounds"}, "float64"},
		"record_status": {[]string{"time"}, "uint8"},
	},
	"/clouds": {
		"cfc_dm":  {[]string{"time", "lat", "lon"}, "float32"},
		"nobs":    {[]string{"time", "lat", "lon"}, "uint8"},
		"quality": {[]string{"time", "lat", "lon"}, "uint8"},
	},
	"/radiation": {
		"sdu": {[]string{"time", "lat", "lon"}, "float32"},
	},
}

// Write serializes the tree to a NetCDF4 file at the given path.
func Write(tree *dataset.Tree, path string) error {
	w, err := hdf5.OpenWriter(path)
	if err != nil {
		return err
	}
	if err := writeGroup(w, tree.Root, "/"); err != nil {
		w.Close()
		return err
	}
	for _, name := range tree.GroupNames() {
		g, _ := tree.Group(name)
		gw, err := w.CreateGroup(name)
		if err != nil {
			w.Close()
			return err
		}
		if err := writeGroup(gw, g, "/"+name); err != nil {
			w.Close()
			return err
		}
	}
	return w.Close()
}

func writeGroup(w api.Writer, g *dataset.Group, path string) error {
	if err := w.AddAttributes(g.Attrs); err != nil {
		return fmt.Errorf("attributes of %q: %w", path, err)
	}
	for _, name := range g.Names() {
		v, _ := g.Var(name)
		enc, ok := encodings[path][name]
		if !ok {
			return fmt.Errorf("no encoding for %s/%s", path, name)
		}
		values, err := encode(v.Data, enc.dtype)
		if err != nil {
			return fmt.Errorf("%s/%s: %w", path, name, err)
		}
		attrs := v.Attrs
		if _, isTime := v.Data.([]time.Time); isTime {
			attrs = withTimeUnits(attrs)
		}
		err = w.AddVar(name, api.Variable{
			Values:     values,
			Dimensions: enc.dims,
			Attributes: attrs,
		})
		if err != nil {
			return fmt.Errorf("%s/%s: %w", path, name, err)
		}
	}
	return nil
}

// encode converts in-memory variable data to nested slices of the on-disk
// element type.
func encode(data any, dtype string) (any, error) {
	switch d := data.(type) {
	case []time.Time:
		days := make([]float64, len(d))
		for i, t := range d {
			days[i] = daysSinceEpoch(t)
		}
		return days, nil
	case [][2]time.Time:
		days := make([][]float64, len(d))
		for i, b := range d {
			days[i] = []float64{daysSinceEpoch(b[0]), daysSinceEpoch(b[1])}
		}
		return days, nil
	case []float64:
		return d, nil
	case []uint8:
		return d, nil
	case *sparse.DenseArray:
		return encodeDense(d, dtype)
	}
	return nil, fmt.Errorf("unsupported in-memory type %T", data)
}

func encodeDense(a *sparse.DenseArray, dtype string) (any, error) {
	switch len(a.Shape) {
	case 2:
		out := make([][]float64, a.Shape[0])
		for i := range out {
			row := make([]float64, a.Shape[1])
			for j := range row {
				row[j] = a.Get(i, j)
			}
			out[i] = row
		}
		return out, nil
	case 3:
		nt, nlat, nlon := a.Shape[0], a.Shape[1], a.Shape[2]
		switch dtype {
		case "float32":
			out := make([][][]float32, nt)
			for t := range out {
				out[t] = make([][]float32, nlat)
				for j := range out[t] {
					row := make([]float32, nlon)
					for i := range row {
						row[i] = float32(a.Get(t, j, i))
					}
					out[t][j] = row
				}
			}
			return out, nil
		case "uint8":
			out := make([][][]uint8, nt)
			for t := range out {
				out[t] = make([][]uint8, nlat)
				for j := range out[t] {
					row := make([]uint8, nlon)
					for i := range row {
						row[i] = uint8(int64(a.Get(t, j, i)))
					}
					out[t][j] = row
				}
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("cannot encode %d-d field as %s", len(a.Shape), dtype)
}

// withTimeUnits returns a copy of the attributes with the CF time units and
// calendar appended.
func withTimeUnits(attrs *util.OrderedMap) *util.OrderedMap {
	om, _ := util.NewOrderedMap(nil, nil)
	if attrs != nil {
		for _, k := range attrs.Keys() {
			v, _ := attrs.Get(k)
			om.Add(k, v)
		}
	}
	om.Add("units", timeUnits)
	om.Add("calendar", "standard")
	return om
}

func daysSinceEpoch(t time.Time) float64 {
	return float64(t.Unix()-unixSecs2000) / 86400
}
