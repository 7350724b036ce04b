// Package ntv2 loads NTv2 and NTv1 binary datum-shift grid files.
//
// A datum-shift grid is a lookup table of (Δlatitude, Δlongitude) corrections
// between two geodetic reference frames, indexed by position. An NTv2 file
// holds one coarse root grid and optionally many higher-resolution sub-grids
// covering smaller areas; this package exposes the whole tree, bilinear
// interpolation of the corrections, and a point lookup returning the
// finest-resolution sub-grid covering a location.
//
// Loaded grids are immutable, cached process-wide by resolved file path, and
// safe for concurrent use. Grid files can be read from the local filesystem
// or from an S3-compatible object store.
//
// Example:
//
//	loader := ntv2.NewLoader(ntv2.DefaultOptions())
//	root, err := loader.GetOrLoad(ctx, "NTv2_0.gsb")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	dLat, dLon, ok := root.Shift(49.5, -97.1)
package ntv2
