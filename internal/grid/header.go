package grid

// DataType describes the value type of a header record. Each record identified
// by a key contains a value of a type hard-coded by the NTv2 specification;
// the type is not encoded in the file itself.
type DataType int

const (
	// TypeString is a trailing 8-byte ASCII value.
	TypeString DataType = iota

	// TypeInteger is a 4-byte signed integer followed by 4 padding bytes.
	TypeInteger

	// TypeDouble is an 8-byte IEEE double.
	TypeDouble
)

// TypeTable is the known keyword vocabulary: a mapping from header key to the
// expected value type. The table is immutable once constructed and safe for
// concurrent use by any number of loaders.
type TypeTable struct {
	types map[string]DataType
}

// NewTypeTable creates a table from the given key/type pairs.
// The map is copied, so later mutation of the argument has no effect.
func NewTypeTable(types map[string]DataType) *TypeTable {
	copied := make(map[string]DataType, len(types))
	for k, v := range types {
		copied[k] = v
	}
	return &TypeTable{types: copied}
}

// Extend returns a new table with the given entries added to (or replacing)
// this table's entries. The receiver is left untouched.
func (t *TypeTable) Extend(extra map[string]DataType) *TypeTable {
	merged := make(map[string]DataType, len(t.types)+len(extra))
	for k, v := range t.types {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return &TypeTable{types: merged}
}

// Lookup returns the declared type of the given key.
func (t *TypeTable) Lookup(key string) (DataType, bool) {
	dt, ok := t.types[key]
	return dt, ok
}

// defaultTypes is the standard NTv2 vocabulary plus the legacy NTv1 record
// names. The first 11 entries (ignoring the NTv1 aliases) are typically found
// in the overview header, the remaining entries in the sub-grid headers.
//
// NTv1 also has two last unnamed records of type double ("Semi_Major_Axis_From"
// and "Semi_Major_Axis_To"); those records are ignored.
var defaultTypes = NewTypeTable(map[string]DataType{
	"HEADER":   TypeInteger, // NTv1: number of header records (replaced by NUM_OREC)
	"NUM_OREC": TypeInteger, // Number of records in the overview header - usually 11
	"NUM_SREC": TypeInteger, // Number of records in the header of sub-grids - usually 11
	"NUM_FILE": TypeInteger, // Number of sub-grids
	"TYPE":     TypeString,  // NTv1: grid shift data type (replaced by GS_TYPE)
	"GS_TYPE":  TypeString,  // Units: "SECONDS", "MINUTES" or "DEGREES"
	"VERSION":  TypeString,  // Grid version
	"FROM":     TypeString,  // NTv1: source CRS (replaced by SYSTEM_F)
	"TO":       TypeString,  // NTv1: target CRS (replaced by SYSTEM_T)
	"SYSTEM_F": TypeString,  // Source CRS
	"SYSTEM_T": TypeString,  // Target CRS
	"DATUM_F":  TypeString,  // Source datum (sometimes replaces SYSTEM_F)
	"DATUM_T":  TypeString,  // Target datum (sometimes replaces SYSTEM_T)
	"MAJOR_F":  TypeDouble,  // Semi-major axis of source ellipsoid (in metres)
	"MINOR_F":  TypeDouble,  // Semi-minor axis of source ellipsoid (in metres)
	"MAJOR_T":  TypeDouble,  // Semi-major axis of target ellipsoid (in metres)
	"MINOR_T":  TypeDouble,  // Semi-minor axis of target ellipsoid (in metres)
	"SUB_NAME": TypeString,  // Sub-grid identifier
	"PARENT":   TypeString,  // Parent grid
	"CREATED":  TypeString,  // Creation time
	"UPDATED":  TypeString,  // Update time
	"S_LAT":    TypeDouble,  // Southmost latitude
	"N_LAT":    TypeDouble,  // Northmost latitude
	"E_LONG":   TypeDouble,  // Eastmost longitude - west is positive, east is negative
	"W_LONG":   TypeDouble,  // Westmost longitude - west is positive, east is negative
	"N_GRID":   TypeDouble,  // NTv1: latitude grid interval (replaced by LAT_INC)
	"W_GRID":   TypeDouble,  // NTv1: longitude grid interval (replaced by LONG_INC)
	"LAT_INC":  TypeDouble,  // Increment on the latitude axis
	"LONG_INC": TypeDouble,  // Increment on the longitude axis - positive toward west
	"GS_COUNT": TypeInteger, // Number of data records following
})

// DefaultTypes returns the standard NTv2/NTv1 keyword vocabulary.
func DefaultTypes() *TypeTable {
	return defaultTypes
}

// headerScope holds the decoded header values: the union of the overview
// header and the sub-grid header in process of being read. Values are string,
// int32 or float64. Unrecognized keys are kept with a nil value so they can be
// reported once after the load completes.
//
// The scope is a mutable scratch structure reused across sub-grid reads within
// a single loader; it is never shared across goroutines. After each sub-grid,
// resetToBaseline discards every key that was not part of the overview header,
// so the next sub-grid starts from a clean overview-only state.
type headerScope struct {
	values   map[string]interface{}
	order    []string            // Insertion order, for deterministic reporting
	baseline map[string]struct{} // Keys declared by the overview header
}

func newHeaderScope() *headerScope {
	return &headerScope{values: make(map[string]interface{})}
}

// set stores a decoded value. Re-inserting a key with an identical value is a
// no-op; re-inserting with a different value is a format error.
func (h *headerScope) set(key string, value interface{}) error {
	old, exists := h.values[key]
	if exists && old != nil && old != value {
		return &ErrKeyCollision{Key: key}
	}
	if !exists {
		h.order = append(h.order, key)
	}
	h.values[key] = value
	return nil
}

// get returns the value for the given key, or nil if absent or unrecognized.
func (h *headerScope) get(key string) interface{} {
	return h.values[key]
}

// snapshotBaseline records the current key set as the overview baseline.
// Called once, after the overview header has been read.
func (h *headerScope) snapshotBaseline() {
	h.baseline = make(map[string]struct{}, len(h.values))
	for key := range h.values {
		h.baseline[key] = struct{}{}
	}
}

// resetToBaseline discards every key not present in the overview baseline.
func (h *headerScope) resetToBaseline() {
	kept := h.order[:0]
	for _, key := range h.order {
		if _, ok := h.baseline[key]; ok {
			kept = append(kept, key)
		} else {
			delete(h.values, key)
		}
	}
	h.order = kept
}
