// Command gerda generates a sample CM SAF GERDA NetCDF file for testing the
// climate-data archive pipeline.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmsaf/gerda/internal/dataset"
	"github.com/cmsaf/gerda/internal/ncfile"
)

var (
	start  = flag.String("start", "2020-01-01", "first day of the time axis (YYYY-MM-DD)")
	end    = flag.String("end", "2020-01-31", "last day of the time axis (YYYY-MM-DD)")
	lonMin = flag.Float64("lonMin", -179.5, "westernmost longitude in degrees east")
	lonMax = flag.Float64("lonMax", 179.5, "easternmost longitude in degrees east")
	latMin = flag.Float64("latMin", -89.5, "southernmost latitude in degrees north")
	latMax = flag.Float64("latMax", 89.5, "northernmost latitude in degrees north")
	resol  = flag.Float64("resol", 1.0, "grid resolution in degrees, applied to both axes")
	voids  = flag.String("void", "4,20", "comma-separated time positions to flag as void")
	out    = flag.String("out", "test.nc", "path of the NetCDF file to write")
)

func main() {
	flag.Parse()
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := parseConfig()
	if err != nil {
		logger.Error("Could not parse arguments", "err", err)
		os.Exit(1)
	}

	maker, err := dataset.NewMaker(cfg)
	if err != nil {
		logger.Error("Could not build the sample grid", "err", err)
		os.Exit(1)
	}
	logger.Info("GERDA sample summary", maker.Summary()...)

	tree, err := maker.Tree()
	if err != nil {
		logger.Error("Could not assemble the data tree", "err", err)
		os.Exit(1)
	}

	if err := ncfile.Write(tree, *out); err != nil {
		logger.Error("Could not write the sample file", "err", err)
		os.Exit(1)
	}
	logger.Info("Wrote sample file", "path", *out)
}

func parseConfig() (dataset.Config, error) {
	var cfg dataset.Config
	var err error
	cfg.Start, err = time.Parse("2006-01-02", *start)
	if err != nil {
		return cfg, fmt.Errorf("start date: %w", err)
	}
	cfg.End, err = time.Parse("2006-01-02", *end)
	if err != nil {
		return cfg, fmt.Errorf("end date: %w", err)
	}
	cfg.LonMin, cfg.LonMax = *lonMin, *lonMax
	cfg.LatMin, cfg.LatMax = *latMin, *latMax
	cfg.Resolution = *resol
	cfg.VoidPositions, err = parseVoids(*voids)
	if err != nil {
		return cfg, fmt.Errorf("void positions: %w", err)
	}
	return cfg, nil
}

func parseVoids(s string) ([]int, error) {
	var positions []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		positions = append(positions, p)
	}
	return positions, nil
}
