// Package dataset assembles the GERDA sample data tree: a root group with
// coordinates, bounds and record status, plus the clouds and radiation
// sub-groups, all carrying CF/ACDD metadata.
package dataset

import (
	"fmt"

	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/ctessum/sparse"
)

// Variable is a named array plus its attributes. Data is one of
// *sparse.DenseArray (3-D fields, 2-D bounds), []float64 (lon/lat),
// []time.Time, [][2]time.Time (time axis and bounds) or []uint8
// (record status).
type Variable struct {
	Data  any
	Attrs *util.OrderedMap
}

// Group is an ordered collection of variables with group-level attributes.
type Group struct {
	Attrs *util.OrderedMap
	names []string
	vars  map[string]*Variable
}

// NewGroup creates an empty group with the given attributes.
func NewGroup(attrs *util.OrderedMap) *Group {
	return &Group{Attrs: attrs, vars: map[string]*Variable{}}
}

// Add appends a variable to the group, keeping insertion order.
func (g *Group) Add(name string, data any, attrs *util.OrderedMap) {
	if _, ok := g.vars[name]; !ok {
		g.names = append(g.names, name)
	}
	g.vars[name] = &Variable{Data: data, Attrs: attrs}
}

// Names returns the variable names in insertion order.
func (g *Group) Names() []string {
	return g.names
}

// Var returns the named variable.
func (g *Group) Var(name string) (*Variable, bool) {
	v, ok := g.vars[name]
	return v, ok
}

// Tree is the root group plus ordered named sub-groups.
type Tree struct {
	Root   *Group
	names  []string
	groups map[string]*Group
}

// NewTree creates a tree with the given root group.
func NewTree(root *Group) *Tree {
	return &Tree{Root: root, groups: map[string]*Group{}}
}

// AddGroup attaches a named sub-group, keeping insertion order.
func (t *Tree) AddGroup(name string, g *Group) {
	if _, ok := t.groups[name]; !ok {
		t.names = append(t.names, name)
	}
	t.groups[name] = g
}

// GroupNames returns the sub-group names in insertion order.
func (t *Tree) GroupNames() []string {
	return t.names
}

// Group returns the named sub-group.
func (t *Tree) Group(name string) (*Group, bool) {
	g, ok := t.groups[name]
	return g, ok
}

// VoidMask marks time positions whose records must be suppressed.
type VoidMask struct {
	positions map[int]bool
}

// NewVoidMask validates the given zero-based time positions against the time
// axis length and returns the mask. Out-of-range positions are rejected.
func NewVoidMask(positions []int, nt int) (*VoidMask, error) {
	m := &VoidMask{positions: map[int]bool{}}
	for _, p := range positions {
		if p < 0 || p >= nt {
			return nil, fmt.Errorf("void position %d outside time range [0, %d)", p, nt)
		}
		m.positions[p] = true
	}
	return m, nil
}

// Has reports whether the time position is void.
func (m *VoidMask) Has(pos int) bool {
	return m.positions[pos]
}

// Apply overwrites, for each named variable in fills, every value at a void
// time position with that variable's fill value. Values at other positions
// are untouched. The group's variables are mutated in place.
func (m *VoidMask) Apply(g *Group, fills map[string]float64) error {
	for name, fill := range fills {
		v, ok := g.Var(name)
		if !ok {
			return fmt.Errorf("cannot mask %q: no such variable", name)
		}
		field, ok := v.Data.(*sparse.DenseArray)
		if !ok {
			return fmt.Errorf("cannot mask %q: not a gridded field", name)
		}
		nlat, nlon := field.Shape[1], field.Shape[2]
		for t := range m.positions {
			for j := 0; j < nlat; j++ {
				for i := 0; i < nlon; i++ {
					field.Set(fill, t, j, i)
				}
			}
		}
	}
	return nil
}

// RecordStatus returns one status code per time position: 1 (void) for
// positions in the mask, 0 (ok) otherwise. Code 2 (bad_quality) is part of
// the flag vocabulary but is never produced here.
func RecordStatus(nt int, mask *VoidMask) []uint8 {
	status := make([]uint8, nt)
	for i := 0; i < nt; i++ {
		if mask.Has(i) {
			status[i] = 1
		}
	}
	return status
}
