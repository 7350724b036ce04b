package ntv2

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

// subGridIndex answers point → covering-sub-grid queries in O(log n) using an
// R-tree over the sub-grid extents, instead of walking the whole tree.
type subGridIndex struct {
	rtree *rtreego.Rtree
}

// indexedGrid wraps a grid for R-tree storage.
type indexedGrid struct {
	grid *Grid
	rect rtreego.Rect
}

// Bounds implements the rtreego.Spatial interface.
func (ig *indexedGrid) Bounds() rtreego.Rect {
	return ig.rect
}

// epsilon keeps R-tree rectangles non-degenerate for very small extents.
const epsilon = 1e-9

func newSubGridIndex(grids []*Grid) *subGridIndex {
	rtree := rtreego.NewTree(2, 25, 50)
	for _, g := range grids {
		b := g.Bounds()
		lengths := []float64{
			math.Max(b.MaxLon-b.MinLon, epsilon),
			math.Max(b.MaxLat-b.MinLat, epsilon),
		}
		rect, err := rtreego.NewRect(rtreego.Point{b.MinLon, b.MinLat}, lengths)
		if err != nil {
			continue
		}
		rtree.Insert(&indexedGrid{grid: g, rect: rect})
	}
	return &subGridIndex{rtree: rtree}
}

// finestAt returns the covering grid with the smallest cell size,
// or nil when no grid covers the point.
func (idx *subGridIndex) finestAt(lat, lon float64) *Grid {
	point, err := rtreego.NewRect(rtreego.Point{lon, lat}, []float64{epsilon, epsilon})
	if err != nil {
		return nil
	}
	var finest *Grid
	var finestCell float64
	for _, spatial := range idx.rtree.SearchIntersect(point) {
		candidate := spatial.(*indexedGrid).grid
		if !candidate.Contains(lat, lon) {
			continue
		}
		cell := math.Abs(candidate.g.DY) / candidate.g.Unit.PerDegree()
		if finest == nil || cell < finestCell {
			finest = candidate
			finestCell = cell
		}
	}
	return finest
}
