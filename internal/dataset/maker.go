package dataset

import (
	"encoding/json"
	"math"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/gonum/floats"

	"github.com/cmsaf/gerda/internal/fields"
	"github.com/cmsaf/gerda/internal/grid"
)

const isoFormat = "2006-01-02T15:04:05Z"

// Config holds the generation parameters for one sample file.
type Config struct {
	Start, End     time.Time
	LonMin, LonMax float64
	LatMin, LatMax float64
	Resolution     float64
	VoidPositions  []int
}

// Maker builds the sample data tree for a Config.
type Maker struct {
	cfg  Config
	grid *grid.Grid
	mask *VoidMask
	now  func() time.Time
}

// NewMaker builds the coordinate grid and validates the void positions.
func NewMaker(cfg Config) (*Maker, error) {
	g, err := grid.New(cfg.Start, cfg.End, cfg.LonMin, cfg.LonMax, cfg.LatMin, cfg.LatMax, cfg.Resolution)
	if err != nil {
		return nil, err
	}
	mask, err := NewVoidMask(cfg.VoidPositions, len(g.Time))
	if err != nil {
		return nil, err
	}
	return &Maker{cfg: cfg, grid: g, mask: mask, now: time.Now}, nil
}

// Summary returns key/value pairs describing the grid, suitable for logging.
func (m *Maker) Summary() []any {
	return []any{
		"times", len(m.grid.Time),
		"lats", len(m.grid.Lat),
		"lons", len(m.grid.Lon),
		"resolution", m.grid.Resolution,
		"voids", len(m.cfg.VoidPositions),
	}
}

// Tree assembles the root group and the clouds and radiation sub-groups,
// with masking already applied.
func (m *Maker) Tree() (*Tree, error) {
	tree := NewTree(m.root())

	clouds, err := m.clouds()
	if err != nil {
		return nil, err
	}
	tree.AddGroup("clouds", clouds)

	radiation, err := m.radiation()
	if err != nil {
		return nil, err
	}
	tree.AddGroup("radiation", radiation)
	return tree, nil
}

func (m *Maker) root() *Group {
	g := m.grid
	root := NewGroup(m.globalAttrs())
	root.Add("time", g.Time, attrs(
		"axis", "T",
		"bounds", "time_bounds",
		"long_name", "Time",
		"standard_name", "time",
	))
	root.Add("time_bounds", g.TimeBounds, attrs("long_name", "Time bounds"))
	root.Add("lon", g.Lon, attrs(
		"axis", "X",
		"bounds", "lon_bounds",
		"long_name", "Longitude",
		"standard_name", "longitude",
		"units", "degrees_east",
	))
	root.Add("lon_bounds", g.LonBounds, attrs("long_name", "Longitude bounds"))
	root.Add("lat", g.Lat, attrs(
		"axis", "Y",
		"bounds", "lat_bounds",
		"long_name", "Latitude",
		"standard_name", "latitude",
		"units", "degrees_north",
	))
	root.Add("lat_bounds", g.LatBounds, attrs("long_name", "Latitude bounds"))
	root.Add("record_status", RecordStatus(len(g.Time), m.mask), attrs(
		"comment", "Overall status of each record (timestamp) in this file. If a record is flagged as not ok, it is recommended not to use it.",
		"flag_meanings", "ok void bad_quality",
		"flag_values", []uint8{0, 1, 2},
		"long_name", "Record Status",
	))
	return root
}

func (m *Maker) clouds() (*Group, error) {
	g := m.grid
	nt := len(g.Time)
	clouds := NewGroup(attrs(
		"title", "Clouds",
		"variable_id", "cfc_dm",
	))
	clouds.Add("cfc_dm", fields.CloudFraction(nt, g.Lat, g.Lon), attrs(
		"ancillary_variables", "nobs quality",
		"cell_methods", "time: area: mean (interval: 15 minutes interval: 3 km)",
		"comment", "rounded float + zlib compression is preferred over compression with scale factor and offset",
		"long_name", "Daily Mean Cloud Fraction",
		"standard_name", "cloud_area_fraction",
		"units", "%",
	))
	clouds.Add("nobs", fields.Observations(nt, g.Lat, g.Lon), attrs(
		"cell_methods", "time: area: sum (interval: 15 minutes interval: 3 km)",
		"long_name", "Number of Observations",
		"standard_name", "number_of_observations",
		"units", "1",
	))
	clouds.Add("quality", fields.Quality(nt, g.Lat, g.Lon), attrs(
		"flag_meanings", "good medium bad",
		"flag_values", []uint8{0, 1, 2},
		"long_name", "Quality",
	))
	if err := m.mask.Apply(clouds, map[string]float64{"cfc_dm": math.NaN(), "nobs": 0}); err != nil {
		return nil, err
	}
	return clouds, nil
}

func (m *Maker) radiation() (*Group, error) {
	g := m.grid
	radiation := NewGroup(attrs(
		"title", "Radiation",
		"variable_id", "sdu",
	))
	radiation.Add("sdu", fields.SunshineDuration(len(g.Time), len(g.Lat), len(g.Lon)), attrs(
		"long_name", "Sunshine Duration",
		"standard_name", "duration_of_sunshine",
		"units", "s",
	))
	if err := m.mask.Apply(radiation, map[string]float64{"sdu": math.NaN()}); err != nil {
		return nil, err
	}
	return radiation, nil
}

// globalAttrs builds the CF-1.12 / ACDD-1.3 global attribute set, with
// coverage extents derived from the bounds arrays.
func (m *Maker) globalAttrs() *util.OrderedMap {
	g := m.grid
	lineage, _ := json.Marshal(map[string]string{
		"MSG":          "https://user.eumetsat.int/catalogue/EO:EUM:DAT:MSG:HRSEVIRI",
		"GOES-I/N":     "DOI:10.25921/Z9JQ-K976",
		"GOES-R":       "DOI:10.7289/V5BV7DSR",
		"Himawari-8/9": "https://www.data.jma.go.jp/mscweb/en/himawari89/space_segment/sample_hisd.html",
	})
	var tStart, tEnd string
	if n := len(g.TimeBounds); n > 0 {
		tStart = g.TimeBounds[0][0].UTC().Format(isoFormat)
		tEnd = g.TimeBounds[n-1][1].UTC().Format(isoFormat)
	}
	return attrs(
		"Conventions", "CF-1.12, ACDD-1.3",
		"creator_email", "contact.cmsaf@dwd.de",
		"creator_name", "DE/DWD",
		"creator_url", "http://www.cmsaf.eu/",
		"date_created", m.now().UTC().Format(isoFormat),
		"geospatial_lat_max", floats.Max(g.LatBounds.Elements),
		"geospatial_lat_min", floats.Min(g.LatBounds.Elements),
		"geospatial_lat_resolution", "1 degree",
		"geospatial_lat_units", "degrees_north",
		"geospatial_lon_max", floats.Max(g.LonBounds.Elements),
		"geospatial_lon_min", floats.Min(g.LonBounds.Elements),
		"geospatial_lon_resolution", "1 degree",
		"geospatial_lon_units", "degrees_east",
		"id", "DOI:10.5676/EUM_SAF_CM/GERDA/V001",
		"instrument", "SEVIRI > Spinning Enhanced Visible and Infrared Imager, "+
			"GOES-15 Imager > Geostationary Operational Environmental Satellite 15-Imager, "+
			"ABI > Advanced Baseline Imager, "+
			"AHI > Advanced Himawari Imager",
		"instrument_vocabulary", "GCMD Instruments, Version 21.0",
		"institution", "EUMETSAT/CMSAF",
		"keywords", "CLOUD PROPERTIES > CLOUD FRACTION, ATMOSPHERIC RADIATION > SUNSHINE",
		"keywords_vocabulary", "GCMD Science Keywords, Version 21.0",
		"license", "https://creativecommons.org/licenses/by/4.0/",
		"lineage", string(lineage),
		"platform", "METEOSAT > METEOSAT-11, "+
			"GOES > GOES-15, "+
			"GOES > GOES-16, "+
			"Himawari > Himawari-8",
		"platform_vocabulary", "GCMD Platforms, Version 21.0",
		"product_version", "1.0",
		"project", "Satellite Application Facility on Climate Monitoring (CM SAF)",
		"references", "http://dx.doi.org/10.5676/EUM_SAF_CM/GERDA/V001",
		"source", "satellite",
		"standard_name_vocabulary", "Standard Name Table (v90, 20 March 2025)",
		"summary", "The CM SAF GEoRing DAtaset (GERDA) provides atmospheric "+
			"parameters derived from geostationary satellites. "+
			"It is a climate data record covering the time period 2002-2024. "+
			"Use cases include climate monitoring, climate model evaluation etc.",
		"time_coverage_end", tEnd,
		"time_coverage_resolution", "P1D",
		"time_coverage_start", tStart,
		"title", "CM SAF GEoRing DAtaset (GERDA)",
		"CMSAF_processor", "gerda-1.0.0",
		"CMSAF_repeat_cylces", "METEOSAT-11=96, GOES-15=8, GOES-16=96, Himawari-8=144",
	)
}

// attrs builds an ordered attribute map from key/value pairs, in the style
// of slog arguments.
func attrs(kv ...any) *util.OrderedMap {
	om, _ := util.NewOrderedMap(nil, nil)
	for i := 0; i+1 < len(kv); i += 2 {
		om.Add(kv[i].(string), kv[i+1])
	}
	return om
}
