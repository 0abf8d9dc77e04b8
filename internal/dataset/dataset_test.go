package dataset

import (
	"math"
	"testing"
	"time"

	"github.com/ctessum/sparse"
	"github.com/stretchr/testify/require"
)

// TestRecordStatus verifies the status codes for the original demo run:
// 31 daily timestamps with voids at positions 4 and 20.
func TestRecordStatus(t *testing.T) {
	mask, err := NewVoidMask([]int{4, 20}, 31)
	require.NoError(t, err)

	status := RecordStatus(31, mask)
	require.Len(t, status, 31)
	for i, s := range status {
		if i == 4 || i == 20 {
			require.Equal(t, uint8(1), s)
		} else {
			require.Equal(t, uint8(0), s)
		}
	}
}

// TestNewVoidMaskRejectsOutOfRange verifies positions outside [0, nt) fail.
func TestNewVoidMaskRejectsOutOfRange(t *testing.T) {
	_, err := NewVoidMask([]int{31}, 31)
	require.Error(t, err)
	_, err = NewVoidMask([]int{-1}, 31)
	require.Error(t, err)
}

// TestVoidMaskApply verifies masked variables carry the fill value at
// exactly the void positions and are unchanged elsewhere.
func TestVoidMaskApply(t *testing.T) {
	field := sparse.ZerosDense(3, 2, 2)
	for i := range field.Elements {
		field.Elements[i] = float64(i + 1)
	}
	counts := sparse.ZerosDense(3, 2, 2)
	for i := range counts.Elements {
		counts.Elements[i] = 7
	}

	g := NewGroup(nil)
	g.Add("cfc_dm", field, nil)
	g.Add("nobs", counts, nil)

	mask, err := NewVoidMask([]int{1}, 3)
	require.NoError(t, err)
	require.NoError(t, mask.Apply(g, map[string]float64{"cfc_dm": math.NaN(), "nobs": 0}))

	for ti := 0; ti < 3; ti++ {
		for j := 0; j < 2; j++ {
			for i := 0; i < 2; i++ {
				if ti == 1 {
					require.True(t, math.IsNaN(field.Get(ti, j, i)))
					require.Equal(t, 0.0, counts.Get(ti, j, i))
				} else {
					require.Equal(t, float64(ti*4+j*2+i+1), field.Get(ti, j, i))
					require.Equal(t, 7.0, counts.Get(ti, j, i))
				}
			}
		}
	}
}

// TestVoidMaskApplyUnknownVariable verifies masking an absent variable fails.
func TestVoidMaskApplyUnknownVariable(t *testing.T) {
	g := NewGroup(nil)
	mask, err := NewVoidMask(nil, 3)
	require.NoError(t, err)
	require.Error(t, mask.Apply(g, map[string]float64{"missing": 0}))
}

func testConfig() Config {
	return Config{
		Start:         time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
		End:           time.Date(2020, 1, 3, 0, 0, 0, 0, time.UTC),
		LonMin:        -1.5,
		LonMax:        1.5,
		LatMin:        -0.5,
		LatMax:        0.5,
		Resolution:    1.0,
		VoidPositions: []int{1},
	}
}

// TestMakerTree verifies the assembled tree: group order, field shapes,
// applied masking and record status.
func TestMakerTree(t *testing.T) {
	maker, err := NewMaker(testConfig())
	require.NoError(t, err)
	tree, err := maker.Tree()
	require.NoError(t, err)

	require.Equal(t, []string{"clouds", "radiation"}, tree.GroupNames())

	status, ok := tree.Root.Var("record_status")
	require.True(t, ok)
	require.Equal(t, []uint8{0, 1, 0}, status.Data)

	clouds, ok := tree.Group("clouds")
	require.True(t, ok)
	for _, name := range []string{"cfc_dm", "nobs", "quality"} {
		v, ok := clouds.Var(name)
		require.True(t, ok)
		field := v.Data.(*sparse.DenseArray)
		require.Equal(t, []int{3, 2, 4}, field.Shape, name)
	}

	cfc, _ := clouds.Var("cfc_dm")
	nobs, _ := clouds.Var("nobs")
	for j := 0; j < 2; j++ {
		for i := 0; i < 4; i++ {
			require.True(t, math.IsNaN(cfc.Data.(*sparse.DenseArray).Get(1, j, i)))
			require.Equal(t, 0.0, nobs.Data.(*sparse.DenseArray).Get(1, j, i))
		}
	}

	radiation, ok := tree.Group("radiation")
	require.True(t, ok)
	sdu, ok := radiation.Var("sdu")
	require.True(t, ok)
	require.Equal(t, []int{3, 2, 4}, sdu.Data.(*sparse.DenseArray).Shape)

	title, _ := radiation.Attrs.Get("title")
	require.Equal(t, "Radiation", title)
	varID, _ := radiation.Attrs.Get("variable_id")
	require.Equal(t, "sdu", varID)
}

// TestMakerGlobalAttrs verifies coverage extents come from the bounds arrays
// and timestamps carry the UTC marker.
func TestMakerGlobalAttrs(t *testing.T) {
	maker, err := NewMaker(testConfig())
	require.NoError(t, err)
	tree, err := maker.Tree()
	require.NoError(t, err)

	attrs := tree.Root.Attrs
	lonMin, _ := attrs.Get("geospatial_lon_min")
	require.Equal(t, -2.0, lonMin)
	lonMax, _ := attrs.Get("geospatial_lon_max")
	require.Equal(t, 2.0, lonMax)
	latMin, _ := attrs.Get("geospatial_lat_min")
	require.Equal(t, -1.0, latMin)

	start, _ := attrs.Get("time_coverage_start")
	require.Equal(t, "2020-01-01T00:00:00Z", start)
	end, _ := attrs.Get("time_coverage_end")
	require.Equal(t, "2020-01-04T00:00:00Z", end)

	conventions, _ := attrs.Get("Conventions")
	require.Equal(t, "CF-1.12, ACDD-1.3", conventions)
}

// TestMakerRejectsBadVoidPositions verifies out-of-range void positions are
// caught at construction.
func TestMakerRejectsBadVoidPositions(t *testing.T) {
	cfg := testConfig()
	cfg.VoidPositions = []int{7}
	_, err := NewMaker(cfg)
	require.Error(t, err)
}

// TestMakerEmptyTimeRange verifies an end before start yields a zero-length
// dataset rather than an error.
func TestMakerEmptyTimeRange(t *testing.T) {
	cfg := testConfig()
	cfg.Start, cfg.End = cfg.End, cfg.Start
	cfg.VoidPositions = nil

	maker, err := NewMaker(cfg)
	require.NoError(t, err)
	tree, err := maker.Tree()
	require.NoError(t, err)

	status, _ := tree.Root.Var("record_status")
	require.Empty(t, status.Data)
	sdu, _ := mustGroup(t, tree, "radiation").Var("sdu")
	require.Equal(t, 0, sdu.Data.(*sparse.DenseArray).Shape[0])
}

func mustGroup(t *testing.T, tree *Tree, name string) *Group {
	t.Helper()
	g, ok := tree.Group(name)
	require.True(t, ok)
	return g
}
