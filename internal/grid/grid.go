package grid

import (
	"fmt"
	"strings"
)

// Unit is the angular unit of a grid's coordinates and shift values.
type Unit int

const (
	// ArcSeconds is the most common unit in published grids. It has the
	// advantage of allowing all cell coordinates to be integers.
	ArcSeconds Unit = iota

	// ArcMinutes is 1/60 of a degree.
	ArcMinutes

	// Degrees is decimal degrees of arc.
	Degrees
)

// PerDegree returns the number of this unit in one degree of arc.
func (u Unit) PerDegree() float64 {
	switch u {
	case ArcSeconds:
		return 3600
	case ArcMinutes:
		return 60
	default:
		return 1
	}
}

// String returns the unit name as it appears in a GS_TYPE record.
func (u Unit) String() string {
	switch u {
	case ArcSeconds:
		return "SECONDS"
	case ArcMinutes:
		return "MINUTES"
	default:
		return "DEGREES"
	}
}

// parseUnit maps a GS_TYPE (or legacy TYPE) value to a Unit. Exactly three
// names are recognized, case-insensitively; anything else is a format error.
func parseUnit(name string) (Unit, error) {
	switch strings.ToUpper(name) {
	case "SECONDS":
		return ArcSeconds, nil
	case "MINUTES":
		return ArcMinutes, nil
	case "DEGREES":
		return Degrees, nil
	}
	return 0, &ErrUnexpectedValue{Key: "GS_TYPE", Value: name}
}

// Precision selects the storage of a grid's shift values. NTv2 cells carry
// 32-bit floats, NTv1 cells carry 64-bit doubles; the variant keeps each
// fidelity in its native backing array.
type Precision int

const (
	// SinglePrecision stores shifts as float32 (NTv2).
	SinglePrecision Precision = iota

	// DoublePrecision stores shifts as float64 (NTv1).
	DoublePrecision
)

// Meta is descriptive information from the overview header, attached to the
// grid returned by a loader. Used for information purpose only.
type Meta struct {
	Version string // Format version string, e.g. "NTv2.0"
	From    string // Source system label
	To      string // Target system label
	Created string // Creation time, if declared
	Updated string // Update time, if declared
}

// Grid is one datum-shift grid: a dense array of (Δlatitude, Δlongitude)
// translations over a regular geographic extent, plus zero or more
// higher-resolution child grids covering sub-extents.
//
// Coordinates are east-positive in the grid's angular unit. Because the file
// format stores longitudes west-positive, X0 is the negation of the raw E_LONG
// value and DX is the negation of the raw longitude increment (so DX < 0).
// Shift values are stored as a ratio of the cell size: the raw translation
// divided by the axis increment. That convention is what makes bilinear
// interpolation in grid-cell space produce correctly signed east-positive
// longitude shifts without touching the raw cell values.
//
// A Grid is immutable after loading and safe for concurrent interpolation.
type Grid struct {
	Name   string
	Parent string

	X0, Y0 float64 // Coordinates of the first cell, east-positive, in Unit
	DX, DY float64 // Cell increments; DX is negative (see above)
	Width  int
	Height int

	Unit      Unit
	Precision Precision

	// Accuracy is the smallest non-zero per-cell accuracy reported by the
	// file, or a default derived from a fixed angular tolerance. Expressed
	// as a ratio of the cell size, like the shift values.
	Accuracy float64

	// Shift values in cell-ratio form, row-major from the grid origin.
	// Index 0 is the latitude layer, index 1 the longitude layer.
	// Exactly one of the two pairs is non-nil, according to Precision.
	// A grid group (union of disjoint roots) has neither.
	data32 [2][]float32
	data64 [2][]float64

	Meta     *Meta // Set on the grid returned by a loader, nil elsewhere
	children []*Grid
}

// SubGrids returns the higher-resolution grids nested under this one.
func (g *Grid) SubGrids() []*Grid {
	return g.children
}

// IsGroup reports whether this grid is a synthetic union of independent
// roots rather than a grid with its own cell data.
func (g *Grid) IsGroup() bool {
	return g.data32[0] == nil && g.data64[0] == nil
}

// Contains reports whether the east-positive point (x, y), in the grid's
// unit, falls inside the grid extent. For a group, inside any member.
func (g *Grid) Contains(x, y float64) bool {
	if g.IsGroup() {
		for _, child := range g.children {
			if child.Contains(x, y) {
				return true
			}
		}
		return false
	}
	gx := (x - g.X0) / g.DX
	gy := (y - g.Y0) / g.DY
	return gx >= 0 && gx <= float64(g.Width-1) && gy >= 0 && gy <= float64(g.Height-1)
}

// ShiftAt returns the bilinear-interpolated (Δlatitude, Δlongitude)
// translation at the east-positive point (x, y), in the grid's unit.
// The second return is false if the point is outside the grid.
func (g *Grid) ShiftAt(x, y float64) (dy, dx float64, ok bool) {
	if g.IsGroup() {
		for _, child := range g.children {
			if child.Contains(x, y) {
				return child.ShiftAt(x, y)
			}
		}
		return 0, 0, false
	}
	if !g.Contains(x, y) {
		return 0, 0, false
	}
	gx := (x - g.X0) / g.DX
	gy := (y - g.Y0) / g.DY
	ix, fx := splitIndex(gx, g.Width)
	iy, fy := splitIndex(gy, g.Height)
	ty := g.bilinear(0, ix, iy, fx, fy)
	tx := g.bilinear(1, ix, iy, fx, fy)
	// Cell-ratio values scale back through the signed increments, which also
	// converts the longitude layer to an east-positive shift.
	return ty * g.DY, tx * g.DX, true
}

// splitIndex splits a fractional grid coordinate into a cell index and an
// offset within that cell, clamping so the interpolation square stays inside
// the grid (points on the last row or column interpolate from the final cell).
func splitIndex(gc float64, size int) (int, float64) {
	i := int(gc)
	if i > size-2 {
		i = size - 2
	}
	if i < 0 {
		i = 0
	}
	return i, gc - float64(i)
}

func (g *Grid) bilinear(layer, ix, iy int, fx, fy float64) float64 {
	v00 := g.sample(layer, ix, iy)
	v10 := g.sample(layer, ix+1, iy)
	v01 := g.sample(layer, ix, iy+1)
	v11 := g.sample(layer, ix+1, iy+1)
	return v00 + fx*(v10-v00) + fy*(v01-v00) + fx*fy*(v00-v10-v01+v11)
}

// sample returns one stored cell-ratio value, clamping indexes to the grid.
func (g *Grid) sample(layer, ix, iy int) float64 {
	if ix >= g.Width {
		ix = g.Width - 1
	}
	if iy >= g.Height {
		iy = g.Height - 1
	}
	i := iy*g.Width + ix
	if g.Precision == DoublePrecision {
		return g.data64[layer][i]
	}
	return float64(g.data32[layer][i])
}

// ShareDataWith replaces this grid's backing arrays with the other grid's
// arrays when their contents are identical, so that equal grids loaded from
// different files reference a single copy. Returns true if data was shared.
func (g *Grid) ShareDataWith(other *Grid) bool {
	if g.Precision != other.Precision || g.Width != other.Width || g.Height != other.Height {
		return false
	}
	if g.Precision == DoublePrecision {
		if !equal64(g.data64[0], other.data64[0]) || !equal64(g.data64[1], other.data64[1]) {
			return false
		}
		g.data64 = other.data64
		return true
	}
	if !equal32(g.data32[0], other.data32[0]) || !equal32(g.data32[1], other.data32[1]) {
		return false
	}
	g.data32 = other.data32
	return true
}

func equal32(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func equal64(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// newGroup wraps several independent root grids into one composite, used when
// a file contains disjoint grids with no common parent.
func newGroup(roots []*Grid) *Grid {
	group := &Grid{
		Name:     "",
		Unit:     roots[0].Unit,
		Accuracy: roots[0].Accuracy,
		children: roots,
	}
	for _, root := range roots[1:] {
		if root.Accuracy < group.Accuracy {
			group.Accuracy = root.Accuracy
		}
	}
	return group
}

// String returns a short description, for diagnostics.
func (g *Grid) String() string {
	if g.IsGroup() {
		return fmt.Sprintf("grid group (%d roots)", len(g.children))
	}
	return fmt.Sprintf("grid %q %dx%d (%s)", g.Name, g.Width, g.Height, g.Unit)
}
