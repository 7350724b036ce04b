package grid

import "sort"

// registry collects sub-grids as they are read from the file, then resolves
// the parent/child declarations into a rooted tree. Resolution deliberately
// runs only after every sub-grid has been read, so grids may appear in any
// order relative to their parents.
type registry struct {
	grids    map[string]*Grid
	children map[string][]*Grid // Keyed by declared parent name
	parents  []string           // Parent-name insertion order
}

func newRegistry(capacity int) *registry {
	return &registry{
		grids:    make(map[string]*Grid, capacity),
		children: make(map[string][]*Grid),
	}
}

func (r *registry) size() int {
	return len(r.grids)
}

// add registers a grid under its own name and under its declared parent name.
// Two grids declaring the same name is a format error.
func (r *registry) add(g *Grid) error {
	if _, exists := r.grids[g.Name]; exists {
		return &ErrDuplicateGrid{Name: g.Name}
	}
	r.grids[g.Name] = g
	if _, exists := r.children[g.Parent]; !exists {
		r.parents = append(r.parents, g.Parent)
	}
	r.children[g.Parent] = append(r.children[g.Parent], g)
	return nil
}

// assemble resolves parent references and returns the root grid. A grid whose
// declared parent is itself (typically an empty SUB_NAME matching an empty
// PARENT) is promoted to a root rather than attached as its own child. Grids
// whose parent name matches no grid all become roots. If several roots remain
// the result is a group of independent grids; zero roots is a format error.
//
// Parent declarations forming a cycle deeper than the direct self-reference
// (such as A→B→A) leave their grids unreachable from every root; that is
// reported as an error rather than silently dropping the grids.
func (r *registry) assemble(file string) (*Grid, error) {
	var roots []*Grid
	for _, parentName := range r.parents {
		parent := r.grids[parentName]
		subgrids := r.children[parentName]
		if parent == nil {
			roots = append(roots, subgrids...)
			continue
		}
		for i, sub := range subgrids {
			if sub == parent { // Identity check: the grid declared itself as its parent.
				subgrids = append(subgrids[:i], subgrids[i+1:]...)
				roots = append(roots, parent)
				break
			}
		}
		if len(subgrids) > 0 {
			parent.children = subgrids
		}
	}
	if len(roots) == 0 {
		return nil, &ErrNoGrids{File: file}
	}
	if err := r.checkReachable(roots); err != nil {
		return nil, err
	}
	if len(roots) == 1 {
		return roots[0], nil
	}
	return newGroup(roots), nil
}

// checkReachable verifies that every registered grid is reachable from a root.
func (r *registry) checkReachable(roots []*Grid) error {
	reached := make(map[*Grid]struct{}, len(r.grids))
	stack := append([]*Grid(nil), roots...)
	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, seen := reached[g]; seen {
			continue
		}
		reached[g] = struct{}{}
		stack = append(stack, g.children...)
	}
	if len(reached) == len(r.grids) {
		return nil
	}
	var orphans []string
	for name, g := range r.grids {
		if _, ok := reached[g]; !ok {
			orphans = append(orphans, name)
		}
	}
	sort.Strings(orphans)
	return &ErrUnreachableGrids{Names: orphans}
}
