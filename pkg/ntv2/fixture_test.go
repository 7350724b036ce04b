package ntv2

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

// fixture assembles synthetic NTv2 files for loader tests.
type fixture struct {
	buf bytes.Buffer
}

func (f *fixture) record(key string, value []byte) {
	for len(key) < 8 {
		key += " "
	}
	f.buf.WriteString(key[:8])
	f.buf.Write(value)
}

func (f *fixture) str(key, value string) {
	for len(value) < 8 {
		value += " "
	}
	f.record(key, []byte(value[:8]))
}

func (f *fixture) int(key string, v int32) {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint32(raw, uint32(v))
	f.record(key, raw)
}

func (f *fixture) dbl(key string, v float64) {
	raw := make([]byte, 8)
	binary.BigEndian.PutUint64(raw, math.Float64bits(v))
	f.record(key, raw)
}

func (f *fixture) cells(n int, latShift, lonShift float32) {
	for i := 0; i < n; i++ {
		for _, v := range []float32{latShift, lonShift, 0, 0} {
			raw := make([]byte, 4)
			binary.BigEndian.PutUint32(raw, math.Float32bits(v))
			f.buf.Write(raw)
		}
	}
}

func (f *fixture) overview(numFile int32) {
	f.int("NUM_OREC", 11)
	f.int("NUM_SREC", 11)
	f.int("NUM_FILE", numFile)
	f.str("GS_TYPE", "SECONDS")
	f.str("VERSION", "NTv2.0")
	f.str("SYSTEM_F", "NAD27")
	f.str("SYSTEM_T", "NAD83")
	f.dbl("MAJOR_F", 6378206.4)
	f.dbl("MINOR_F", 6356583.8)
	f.dbl("MAJOR_T", 6378137.0)
	f.dbl("MINOR_T", 6356752.314)
}

func (f *fixture) subGrid(name, parent string, slat, nlat, elong, wlong, dlat, dlon float64, latShift, lonShift float32) {
	f.str("SUB_NAME", name)
	f.str("PARENT", parent)
	f.str("CREATED", "20200101")
	f.str("UPDATED", "20210101")
	f.dbl("S_LAT", slat)
	f.dbl("N_LAT", nlat)
	f.dbl("E_LONG", elong)
	f.dbl("W_LONG", wlong)
	f.dbl("LAT_INC", dlat)
	f.dbl("LONG_INC", dlon)
	width := int(math.Round((wlong-elong)/dlon)) + 1
	height := int(math.Round((nlat-slat)/dlat)) + 1
	f.int("GS_COUNT", int32(width*height))
	f.cells(width*height, latShift, lonShift)
}

// writeSingleGrid writes a one-grid NTv2 file covering latitudes 0..3600
// seconds and west-positive longitudes 3600..10800 seconds (1..3 degrees
// west), with uniform shifts of 3.6 seconds north and 7.2 seconds west.
func writeSingleGrid(t *testing.T, dir, name string) string {
	t.Helper()
	var f fixture
	f.overview(1)
	f.subGrid("ROOT", "ROOT", 0, 3600, 3600, 10800, 1800, 3600, 3.6, 7.2)
	return writeFile(t, dir, name, f.buf.Bytes())
}

// writeNestedGrids writes a two-grid file: a coarse root and a finer child
// covering the root's south-east quarter.
func writeNestedGrids(t *testing.T, dir, name string) string {
	t.Helper()
	var f fixture
	f.overview(2)
	f.subGrid("COARSE", "COARSE", 0, 3600, 3600, 10800, 1800, 3600, 1, 1)
	f.subGrid("FINE", "COARSE", 0, 1800, 3600, 7200, 900, 1800, 2, 2)
	return writeFile(t, dir, name, f.buf.Bytes())
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
