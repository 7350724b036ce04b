package ntv2

import "go.uber.org/zap"

// FieldType is the value type of a header record keyword.
type FieldType int

const (
	// StringField is an 8-byte ASCII value.
	StringField FieldType = iota

	// IntegerField is a 4-byte integer value followed by 4 padding bytes.
	IntegerField

	// DoubleField is an 8-byte IEEE double value.
	DoubleField
)

// Options configures a Loader.
type Options struct {
	// Source opens grid files by path.
	// Default: a FileSource resolving against the working directory.
	Source Source

	// Keywords declares additional header keywords beyond the standard
	// NTv2/NTv1 vocabulary, or overrides the type of standard ones. Records
	// with declared keywords are decoded instead of being reported as
	// unrecognized. Default: none.
	Keywords map[string]FieldType

	// Logger receives the post-load report: a debug line with the grid
	// provenance and a warning listing any unrecognized header keywords.
	// Default: a no-op logger.
	Logger *zap.Logger

	// VersionHint is the expected format version (1 or 2) for files whose
	// headers do not state it. Information found in the file overrides the
	// hint. Default: 2.
	VersionHint int
}

// DefaultOptions returns options suitable for reading NTv2 files from the
// local filesystem.
func DefaultOptions() Options {
	return Options{
		Source:      &FileSource{},
		Logger:      zap.NewNop(),
		VersionHint: 2,
	}
}

func (o Options) withDefaults() Options {
	if o.Source == nil {
		o.Source = &FileSource{}
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.VersionHint == 0 {
		o.VersionHint = 2
	}
	return o
}
