package grid

import (
	"io"
	"strings"

	"go.uber.org/zap"
)

// Loader reads one NTv2 or NTv1 file. Instances exist only at loading time
// and are owned by a single goroutine; the shared cross-process state (the
// grid cache) lives in the public package.
type Loader struct {
	r      *recordReader
	file   string
	types  *TypeTable
	header *headerScope

	// isV2 is true when reading an NTv2 file, false for NTv1.
	isV2 bool

	// numGrids is the number of sub-grids expected in the file.
	numGrids int

	created, updated string
	unknown          []string
}

// NewLoader creates a loader over the given byte stream and parses the
// overview header immediately, without reading any grid. The version hint
// (1 or 2) selects the default overview record count, but information found
// in the file overrides the hint.
//
// The file argument is used only for error reporting.
func NewLoader(src io.Reader, file string, versionHint int, types *TypeTable) (*Loader, error) {
	if types == nil {
		types = DefaultTypes()
	}
	l := &Loader{
		r:      newRecordReader(src, 4096),
		file:   file,
		types:  types,
		header: newHeaderScope(),
	}
	// The first integer-typed overview field (HEADER or NUM_OREC) drives the
	// endianness detection; it sits just after the 8-byte key of the first record.
	if err := l.r.detectOrder(keyLength); err != nil {
		return nil, err
	}
	// The overview header is normally the first 11 records of the NTv2
	// vocabulary (12 for NTv1, whose HEADER record self-corrects the count).
	defaultCount := 11
	if versionHint < 2 {
		defaultCount = 12
	}
	if err := l.readHeader(defaultCount, "NUM_OREC"); err != nil {
		return nil, err
	}
	// The version record is a string like "NTv2.0". It was introduced in
	// version 2, so its absence suggests NTv1; in that case the hint should
	// have been 1 already and we leave it unchanged.
	version := versionHint
	vs, _ := l.header.get("VERSION").(string)
	for _, c := range vs {
		if c >= '0' && c <= '9' {
			version = int(c - '0')
			break
		}
	}
	// Sub-grids are an NTv2 feature. For an expected NTv2 file the NUM_FILE
	// record is mandatory; for NTv1 it should be absent, but we still look in
	// case a missing VERSION record misled us.
	v := l.header.get("NUM_FILE")
	if v == nil {
		if vs != "" && version >= 2 {
			return nil, &ErrMissingField{File: l.file, Key: "NUM_FILE"}
		}
		l.numGrids = 1
	} else {
		n, ok := v.(int32)
		if !ok || n < 1 {
			return nil, &ErrUnexpectedValue{Key: "NUM_FILE", Value: v}
		}
		l.isV2 = true
		l.numGrids = int(n)
	}
	l.header.snapshotBaseline()
	return l, nil
}

// readHeader reads a sequence of fixed-length key/value records. The header
// may be the overview header (record count given by HEADER or NUM_OREC) or a
// sub-grid header (count given by NUM_SREC).
//
// numRecords is only a default: as soon as the countKey record (or the legacy
// HEADER record) is decoded, the remaining iteration count is overwritten with
// the freshly read value, since the record declaring how many header records
// follow is itself one of those records and may disagree with the default.
func (l *Loader) readHeader(numRecords int, countKey string) error {
	for i := 0; i < numRecords; i++ {
		if err := l.r.ensure(recordLength); err != nil {
			return err
		}
		key := strings.ReplaceAll(strings.ToUpper(l.r.ascii(keyLength)), " ", "_")
		dt, known := l.types.Lookup(key)
		var value interface{}
		if !known {
			// Tolerated vendor extension: keep the key with no value and
			// report the whole list once after the load completes.
			l.r.skip(recordLength - keyLength)
			l.noteUnknown(key)
		} else {
			switch dt {
			case TypeString:
				value = l.r.ascii(recordLength - keyLength)
			case TypeDouble:
				value = l.r.float64()
			case TypeInteger:
				n := l.r.int32()
				l.r.skip(4) // The record format pads integers to 8 bytes.
				if key == countKey || key == "HEADER" {
					numRecords = int(n)
				}
				value = n
			}
		}
		if err := l.header.set(key, value); err != nil {
			return err
		}
	}
	if l.created == "" {
		l.created, _ = l.getString(false, "CREATED")
	}
	if l.updated == "" {
		l.updated, _ = l.getString(false, "UPDATED")
	}
	return nil
}

func (l *Loader) noteUnknown(key string) {
	for _, k := range l.unknown {
		if k == key {
			return
		}
	}
	l.unknown = append(l.unknown, key)
}

// ReadAll reads every grid in the file and returns the assembled root.
func (l *Loader) ReadAll() (*Grid, error) {
	reg := newRegistry(l.numGrids)
	for reg.size() < l.numGrids {
		if err := l.readGrid(reg); err != nil {
			return nil, err
		}
	}
	root, err := reg.assemble(l.file)
	if err != nil {
		return nil, err
	}
	version, _ := l.header.get("VERSION").(string)
	from, _ := l.getString(false, "SYSTEM_F", "DATUM_F", "FROM")
	to, _ := l.getString(false, "SYSTEM_T", "DATUM_T", "TO")
	root.Meta = &Meta{
		Version: version,
		From:    from,
		To:      to,
		Created: l.created,
		Updated: l.updated,
	}
	return root, nil
}

// getString returns the first string value found under the given keys.
// The alternatives support schema evolution: the current name first, then an
// alternate, then the oldest legacy NTv1 name.
func (l *Loader) getString(mandatory bool, keys ...string) (string, error) {
	for _, key := range keys {
		if v := l.header.get(key); v != nil {
			s, ok := v.(string)
			if !ok {
				return "", &ErrUnexpectedValue{Key: key, Value: v}
			}
			return s, nil
		}
	}
	if mandatory {
		return "", &ErrMissingField{File: l.file, Key: keys[0]}
	}
	return "", nil
}

// getFloat returns the first double value found under the given keys,
// failing if all are absent.
func (l *Loader) getFloat(keys ...string) (float64, error) {
	for _, key := range keys {
		if v := l.header.get(key); v != nil {
			f, ok := v.(float64)
			if !ok {
				return 0, &ErrUnexpectedValue{Key: key, Value: v}
			}
			return f, nil
		}
	}
	return 0, &ErrMissingField{File: l.file, Key: keys[0]}
}

// getInt returns the first integer value found under the given keys.
// The second return reports whether a value was present.
func (l *Loader) getInt(mandatory bool, keys ...string) (int32, bool, error) {
	for _, key := range keys {
		if v := l.header.get(key); v != nil {
			n, ok := v.(int32)
			if !ok {
				return 0, false, &ErrUnexpectedValue{Key: key, Value: v}
			}
			return n, true, nil
		}
	}
	if mandatory {
		return 0, false, &ErrMissingField{File: l.file, Key: keys[0]}
	}
	return 0, false, nil
}

// Report emits the warnings collected during a successful load, plus a
// provenance line about the grid in use. Called once, never per record.
func (l *Loader) Report(log *zap.Logger) {
	if log == nil {
		return
	}
	from, _ := l.getString(false, "SYSTEM_F", "DATUM_F", "FROM")
	to, _ := l.getString(false, "SYSTEM_T", "DATUM_T", "TO")
	log.Debug("using datum shift grid",
		zap.String("file", l.file),
		zap.String("source", orUnknown(from)),
		zap.String("target", orUnknown(to)),
		zap.String("created", orUnknown(l.created)),
		zap.String("updated", orUnknown(l.updated)))
	if len(l.unknown) > 0 {
		log.Warn("unrecognized keywords in grid file",
			zap.String("file", l.file),
			zap.Strings("keywords", l.unknown))
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "?"
	}
	return s
}
