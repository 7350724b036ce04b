package ntv2

import (
	"math"

	"github.com/Geomatys/ntv2/internal/grid"
)

// Grid is a loaded datum-shift grid, or the group of disjoint root grids a
// single file may contain. All coordinates on the public API are decimal
// degrees, east-positive; conversion from the file's native angular unit
// (usually seconds of arc) happens internally.
//
// A Grid is immutable and safe for concurrent use by any number of callers.
type Grid struct {
	g        *grid.Grid
	children []*Grid
	all      []*Grid       // Root wrapper only: every data grid in the tree
	index    *subGridIndex // Root wrapper only, nil when the tree is a single grid
}

// wrapGrid converts an internal grid tree into public wrappers and, on the
// root, builds the spatial index used for finest-sub-grid lookup.
func wrapGrid(root *grid.Grid) *Grid {
	wrapped := wrapNode(root)
	var all []*Grid
	wrapped.walk(func(g *Grid) {
		if !g.g.IsGroup() {
			all = append(all, g)
		}
	})
	wrapped.all = all
	if len(all) > 1 {
		wrapped.index = newSubGridIndex(all)
	}
	return wrapped
}

func wrapNode(g *grid.Grid) *Grid {
	w := &Grid{g: g}
	for _, child := range g.SubGrids() {
		w.children = append(w.children, wrapNode(child))
	}
	return w
}

func (g *Grid) walk(fn func(*Grid)) {
	fn(g)
	for _, child := range g.children {
		child.walk(fn)
	}
}

// Bounds is a geographic bounding box in decimal degrees.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// Contains reports whether the point falls inside the bounding box.
func (b Bounds) Contains(lat, lon float64) bool {
	return lat >= b.MinLat && lat <= b.MaxLat && lon >= b.MinLon && lon <= b.MaxLon
}

// Name returns the sub-grid identifier declared by the file.
// Empty for single-grid files and for groups.
func (g *Grid) Name() string { return g.g.Name }

// IsGroup reports whether this value is a union of disjoint root grids
// rather than one grid with its own cells.
func (g *Grid) IsGroup() bool { return g.g.IsGroup() }

// Size returns the grid dimensions in cells. Zero for groups.
func (g *Grid) Size() (width, height int) { return g.g.Width, g.g.Height }

// Accuracy returns the grid's accuracy estimate, expressed as a ratio of the
// cell size (the same convention as the stored shift values): the smallest
// non-zero per-cell accuracy reported by the file, or a default derived from
// an angular tolerance of about one centimetre at the Earth surface.
func (g *Grid) Accuracy() float64 { return g.g.Accuracy }

// Unit returns the grid's native angular unit name: "SECONDS", "MINUTES"
// or "DEGREES".
func (g *Grid) Unit() string { return g.g.Unit.String() }

// Bounds returns the geographic coverage of this grid in decimal degrees.
// For a group, the union of its members.
func (g *Grid) Bounds() Bounds {
	if g.g.IsGroup() {
		b := g.children[0].Bounds()
		for _, child := range g.children[1:] {
			cb := child.Bounds()
			b.MinLat = math.Min(b.MinLat, cb.MinLat)
			b.MaxLat = math.Max(b.MaxLat, cb.MaxLat)
			b.MinLon = math.Min(b.MinLon, cb.MinLon)
			b.MaxLon = math.Max(b.MaxLon, cb.MaxLon)
		}
		return b
	}
	per := g.g.Unit.PerDegree()
	x1 := g.g.X0
	x2 := g.g.X0 + float64(g.g.Width-1)*g.g.DX
	y1 := g.g.Y0
	y2 := g.g.Y0 + float64(g.g.Height-1)*g.g.DY
	return Bounds{
		MinLat: math.Min(y1, y2) / per,
		MaxLat: math.Max(y1, y2) / per,
		MinLon: math.Min(x1, x2) / per,
		MaxLon: math.Max(x1, x2) / per,
	}
}

// Contains reports whether the point (decimal degrees) is covered.
func (g *Grid) Contains(lat, lon float64) bool {
	per := g.g.Unit.PerDegree()
	return g.g.Contains(lon*per, lat*per)
}

// Shift returns the bilinear-interpolated datum-shift corrections at the
// given position, in decimal degrees. The third return is false when the
// point lies outside the grid.
func (g *Grid) Shift(lat, lon float64) (dLat, dLon float64, ok bool) {
	per := g.g.Unit.PerDegree()
	dy, dx, ok := g.g.ShiftAt(lon*per, lat*per)
	if !ok {
		return 0, 0, false
	}
	return dy / per, dx / per, true
}

// SubGrids returns the higher-resolution grids nested under this one
// (for a group, its independent members).
func (g *Grid) SubGrids() []*Grid { return g.children }

// FinestAt returns the finest-resolution grid in this tree covering the
// given position, or nil if no grid covers it. With a single grid this is
// the grid itself; with nested sub-grids the lookup is served by a spatial
// index over the sub-grid extents.
func (g *Grid) FinestAt(lat, lon float64) *Grid {
	if g.index != nil {
		return g.index.finestAt(lat, lon)
	}
	if !g.g.IsGroup() && g.Contains(lat, lon) {
		return g
	}
	return nil
}

// Version returns the format version string from the overview header
// (for example "NTv2.0"). Only set on the grid returned by a loader.
func (g *Grid) Version() string { return g.meta().Version }

// Source returns the source system label from the overview header.
func (g *Grid) Source() string { return g.meta().From }

// Target returns the target system label from the overview header.
func (g *Grid) Target() string { return g.meta().To }

// Created returns the declared creation time, if any.
func (g *Grid) Created() string { return g.meta().Created }

// Updated returns the declared update time, if any.
func (g *Grid) Updated() string { return g.meta().Updated }

func (g *Grid) meta() grid.Meta {
	if g.g.Meta != nil {
		return *g.g.Meta
	}
	return grid.Meta{}
}
