// Inspection tool for NTv2/NTv1 datum-shift grid files
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Geomatys/ntv2/pkg/ntv2"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: gridinfo <file.gsb> [lat lon]")
		os.Exit(1)
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	loader := ntv2.NewLoader(ntv2.Options{Logger: logger})

	filename := os.Args[1]
	root, err := loader.GetOrLoad(context.Background(), filename)
	if err != nil {
		fmt.Printf("ERROR: failed to load %s: %v\n", filename, err)
		os.Exit(1)
	}

	fmt.Printf("=== %s ===\n\n", filename)
	fmt.Printf("Version: %s\n", root.Version())
	fmt.Printf("From:    %s\n", root.Source())
	fmt.Printf("To:      %s\n", root.Target())
	if root.Created() != "" {
		fmt.Printf("Created: %s\n", root.Created())
	}
	if root.Updated() != "" {
		fmt.Printf("Updated: %s\n", root.Updated())
	}
	fmt.Println()

	walkGrid(root, "", 0)

	// Optional probe: interpolate the shift at a position.
	if len(os.Args) >= 4 {
		var lat, lon float64
		if _, err := fmt.Sscanf(os.Args[2]+" "+os.Args[3], "%f %f", &lat, &lon); err != nil {
			fmt.Printf("ERROR: bad coordinates: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
		probe(root, lat, lon)
	}
}

func walkGrid(g *ntv2.Grid, indent string, depth int) {
	if depth > 20 {
		fmt.Printf("%s[MAX DEPTH REACHED]\n", indent)
		return
	}

	b := g.Bounds()
	if g.IsGroup() {
		fmt.Printf("%sGroup of %d disjoint grids:\n", indent, len(g.SubGrids()))
	} else {
		name := g.Name()
		if name == "" {
			name = "(unnamed)"
		}
		w, h := g.Size()
		fmt.Printf("%sGrid %q:\n", indent, name)
		fmt.Printf("%s  Size:     %d x %d cells\n", indent, w, h)
		fmt.Printf("%s  Unit:     %s\n", indent, g.Unit())
		fmt.Printf("%s  Accuracy: %g (cell-size ratio)\n", indent, g.Accuracy())
	}
	fmt.Printf("%s  Extent:   lat %g..%g  lon %g..%g\n", indent, b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)

	for _, sub := range g.SubGrids() {
		walkGrid(sub, indent+"  ", depth+1)
	}
}

func probe(root *ntv2.Grid, lat, lon float64) {
	finest := root.FinestAt(lat, lon)
	if finest == nil {
		fmt.Printf("Point (%g, %g) is outside the grid coverage\n", lat, lon)
		return
	}
	dLat, dLon, ok := finest.Shift(lat, lon)
	if !ok {
		fmt.Printf("Point (%g, %g) is outside the grid coverage\n", lat, lon)
		return
	}
	name := finest.Name()
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Printf("Shift at (%g, %g) from grid %q:\n", lat, lon, name)
	fmt.Printf("  dLat: %.9f deg\n", dLat)
	fmt.Printf("  dLon: %.9f deg\n", dLon)
}
