package grid

import (
	"bytes"
	"encoding/binary"
	"math"
)

// fileBuilder assembles synthetic NTv2/NTv1 files record by record.
type fileBuilder struct {
	buf   bytes.Buffer
	order binary.ByteOrder
}

func newFileBuilder(order binary.ByteOrder) *fileBuilder {
	return &fileBuilder{order: order}
}

func (b *fileBuilder) key(key string) {
	for len(key) < keyLength {
		key += " "
	}
	b.buf.WriteString(key[:keyLength])
}

// str writes a header record with an 8-byte ASCII value.
func (b *fileBuilder) str(key, value string) {
	b.key(key)
	for len(value) < recordLength-keyLength {
		value += " "
	}
	b.buf.WriteString(value[:recordLength-keyLength])
}

// int writes a header record with a 4-byte integer value and 4 padding bytes.
func (b *fileBuilder) int(key string, value int32) {
	b.key(key)
	var raw [8]byte
	b.order.PutUint32(raw[:4], uint32(value))
	b.buf.Write(raw[:])
}

// dbl writes a header record with an 8-byte double value.
func (b *fileBuilder) dbl(key string, value float64) {
	b.key(key)
	var raw [8]byte
	b.order.PutUint64(raw[:], math.Float64bits(value))
	b.buf.Write(raw[:])
}

// cell4 writes one NTv2 data record: lat shift, lon shift and two accuracies.
func (b *fileBuilder) cell4(latShift, lonShift, latAcc, lonAcc float32) {
	for _, v := range []float32{latShift, lonShift, latAcc, lonAcc} {
		var raw [4]byte
		b.order.PutUint32(raw[:], math.Float32bits(v))
		b.buf.Write(raw[:])
	}
}

// cell2 writes one NTv1 data record: lat shift and lon shift as doubles.
func (b *fileBuilder) cell2(latShift, lonShift float64) {
	for _, v := range []float64{latShift, lonShift} {
		var raw [8]byte
		b.order.PutUint64(raw[:], math.Float64bits(v))
		b.buf.Write(raw[:])
	}
}

func (b *fileBuilder) reader() *bytes.Reader {
	return bytes.NewReader(b.buf.Bytes())
}

// overviewV2 writes the standard 11-record NTv2 overview header.
func (b *fileBuilder) overviewV2(numFile int32) {
	b.int("NUM_OREC", 11)
	b.int("NUM_SREC", 11)
	b.int("NUM_FILE", numFile)
	b.str("GS_TYPE", "SECONDS")
	b.str("VERSION", "NTv2.0")
	b.str("SYSTEM_F", "NAD27")
	b.str("SYSTEM_T", "NAD83")
	b.dbl("MAJOR_F", 6378206.4)
	b.dbl("MINOR_F", 6356583.8)
	b.dbl("MAJOR_T", 6378137.0)
	b.dbl("MINOR_T", 6356752.314)
}

// subHeader writes an 11-record sub-grid header for a 3x3 grid covering
// latitudes 0..60 seconds and west-positive longitudes 3600..10800 seconds.
func (b *fileBuilder) subHeader(name, parent string) {
	b.str("SUB_NAME", name)
	b.str("PARENT", parent)
	b.str("CREATED", "20200101")
	b.str("UPDATED", "20210101")
	b.dbl("S_LAT", 0)
	b.dbl("N_LAT", 60)
	b.dbl("E_LONG", 3600)
	b.dbl("W_LONG", 10800)
	b.dbl("LAT_INC", 30)
	b.dbl("LONG_INC", 3600)
	b.int("GS_COUNT", 9)
}

// uniformCells writes nine NTv2 data records with identical values.
func (b *fileBuilder) uniformCells(latShift, lonShift, acc float32) {
	for i := 0; i < 9; i++ {
		b.cell4(latShift, lonShift, acc, acc)
	}
}
