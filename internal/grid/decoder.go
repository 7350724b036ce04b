package grid

import "math"

// angularTolerance is the accuracy assumed when the file reports none:
// about one centimetre at the Earth surface, expressed in degrees of arc
// (one degree of latitude spans sixty nautical miles).
const angularTolerance = 0.01 / (1852.0 * 60)

// readGrid reads the next sub-grid, starting at the current position: its
// header (NTv2 only; NTv1 grids reuse the overview header), then width*height
// data records in file order. The decoded grid is registered under its own
// name and under its declared parent name; resolving the parent/child
// relationships is deferred until every grid has been read.
//
// After the grid is registered, every header entry specific to this sub-grid
// is discarded so the next one starts from the overview-only baseline.
func (l *Loader) readGrid(reg *registry) error {
	if l.isV2 {
		n, _, err := l.getInt(true, "NUM_SREC")
		if err != nil {
			return err
		}
		if err := l.readHeader(int(n), "NUM_SREC"); err != nil {
			return err
		}
	}
	// Extract the geographic extent and cell size. While different units are
	// allowed, in practice grids are published in seconds of arc. Note that
	// longitude values in the file are positive toward west.
	unitName, err := l.getString(true, "GS_TYPE", "TYPE")
	if err != nil {
		return err
	}
	unit, err := parseUnit(unitName)
	if err != nil {
		return err
	}
	ymin, err := l.getFloat("S_LAT")
	if err != nil {
		return err
	}
	ymax, err := l.getFloat("N_LAT")
	if err != nil {
		return err
	}
	xmin, err := l.getFloat("E_LONG") // Sign reversed compared to the usual convention.
	if err != nil {
		return err
	}
	xmax, err := l.getFloat("W_LONG") // Idem.
	if err != nil {
		return err
	}
	dy, err := l.getFloat("LAT_INC", "N_GRID")
	if err != nil {
		return err
	}
	dx, err := l.getFloat("LONG_INC", "W_GRID") // Positive toward west.
	if err != nil {
		return err
	}
	width, err := dimension("LONG_INC", xmin, xmax, dx)
	if err != nil {
		return err
	}
	height, err := dimension("LAT_INC", ymin, ymax, dy)
	if err != nil {
		return err
	}
	if height != 0 && width > math.MaxInt32/height {
		return &ErrGridTooLarge{Width: width, Height: height}
	}
	count := width * height
	if declared, present, err := l.getInt(false, "GS_COUNT"); err != nil {
		return err
	} else if present && int(declared) != count {
		return &ErrUnexpectedValue{Key: "GS_COUNT", Value: declared}
	}
	// Build the grid in east-positive coordinate space: the origin longitude
	// is negated and so is the longitude increment. Shift values are stored
	// divided by their axis increment (the cell-ratio convention required by
	// the interpolation contract), which is also why the longitude shifts do
	// not need their own sign flip: the negated increment restores the sign
	// when interpolated values are scaled back.
	g := &Grid{
		X0: -xmin, Y0: ymin,
		DX: -dx, DY: dy,
		Width: width, Height: height,
		Unit: unit,
	}
	accuracy := math.NaN()
	if l.isV2 {
		g.Precision = SinglePrecision
		ty := make([]float32, count)
		tx := make([]float32, count)
		for i := 0; i < count; i++ {
			if err := l.r.ensure(recordLength); err != nil {
				return err
			}
			ty[i] = float32(float64(l.r.float32()) / dy)
			tx[i] = float32(float64(l.r.float32()) / dx)
			a := math.Min(float64(l.r.float32())/dy, float64(l.r.float32())/dx)
			if a > 0 && !(a >= accuracy) { // '!' also replaces the initial NaN.
				accuracy = a // Smallest non-zero accuracy.
			}
		}
		g.data32 = [2][]float32{ty, tx}
	} else {
		// NTv1: same as NTv2 but in double precision and without accuracy.
		g.Precision = DoublePrecision
		ty := make([]float64, count)
		tx := make([]float64, count)
		for i := 0; i < count; i++ {
			if err := l.r.ensure(recordLength); err != nil {
				return err
			}
			ty[i] = l.r.float64() / dy
			tx[i] = l.r.float64() / dx
		}
		g.data64 = [2][]float64{ty, tx}
	}
	// An accuracy estimate is needed downstream for deciding when to stop
	// iterating during inverse transformations. When the file gave none,
	// derive a default from the angular tolerance.
	if !(accuracy > 0) {
		accuracy = angularTolerance * unit.PerDegree() / math.Max(dx, dy)
	}
	g.Accuracy = accuracy

	named := l.numGrids > 1
	g.Name, err = l.getString(named, "SUB_NAME")
	if err != nil {
		return err
	}
	g.Parent, err = l.getString(named, "PARENT")
	if err != nil {
		return err
	}
	if err := reg.add(g); err != nil {
		return err
	}
	l.header.resetToBaseline()
	return nil
}

// dimension computes a grid axis length from its extent and increment,
// rounded to the nearest cell count.
func dimension(key string, min, max, inc float64) (int, error) {
	n := math.Round((max-min)/inc) + 1
	if !(n >= 1 && n <= math.MaxInt32) {
		return 0, &ErrUnexpectedValue{Key: key, Value: n}
	}
	return int(n), nil
}
