// Package parser implements the set of fixed-length binary record
// parsers: one layout per two-byte record kind tag, roughly 38 for the
// central-racing feed plus 3 regional-only kinds, built on top of
// fieldcodec's total field extractors. A parser never performs I/O;
// it only turns a RecordBuffer into one or more ParsedRecords.
package parser

import "github.com/raceingest/core/fieldcodec"

// Feed selects which vendor session type and table-name suffix apply.
type Feed int

const (
	Central Feed = iota
	Regional
)

func (f Feed) String() string {
	if f == Regional {
		return "regional"
	}
	return "central"
}

// Codec identifies which fieldcodec primitive decodes a FieldSpec.
type Codec int

const (
	CodecInt Codec = iota
	CodecReal
	CodecText
	CodecDate
)

// FieldSpec is one declared (name, offset, length, codec) entry of a
// parser's static layout table, per spec §4.2.
type FieldSpec struct {
	Name   string
	Offset int
	Length int
	Codec  Codec
	Scale  int // only meaningful for CodecReal
}

// SubRecordSpec describes a composite field that repeats a fixed-length
// sub-layout a declared number of times (spec §4.1 "Sub-record"). Each
// repeat produces one additional ParsedRecord sharing the kind's header
// fields, rather than N values folded into one record — this is what
// gives odds tables their per-combination row cardinality (spec §4.3).
type SubRecordSpec struct {
	FirstOffset int // byte offset of the first occurrence
	ItemLength  int // length in bytes of one occurrence
	Repeat      int // declared repeat count
	Fields      []FieldSpec
	KeyField    string // name of the item's key field; Parse does not consult it and emits every declared occurrence
}

// KindLayout is one parser's static declaration: its fixed record
// length and its ordered field layout.
type KindLayout struct {
	Kind        string
	Description string
	Length      int
	Fields      []FieldSpec
	SubRecord   *SubRecordSpec

	CentralApplicable  bool
	RegionalApplicable bool
	RegionalOnly       bool
	HasRealTime        bool
}

// normalizedFields returns Fields with duplicate names resolved by
// numeric suffixing, per spec §4.2 ("may rename duplicated source
// field names by appending a numeric suffix so all output keys in the
// resulting record are unique").
func (k KindLayout) normalizedFields() []FieldSpec {
	seen := map[string]int{}
	out := make([]FieldSpec, len(k.Fields))
	for i, f := range k.Fields {
		seen[f.Name]++
		if n := seen[f.Name]; n > 1 {
			f.Name = suffixed(f.Name, n)
		}
		out[i] = f
	}
	return out
}

func suffixed(name string, n int) string {
	return name + "_" + itoa(n)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// ErrorKind is the taxonomy of parser-level failures (spec §4.2).
type ErrorKind int

const (
	ErrUnknownKind ErrorKind = iota
	ErrBufferTooShort
	ErrFieldConversionFailed
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownKind:
		return "unknown_kind"
	case ErrBufferTooShort:
		return "buffer_too_short"
	case ErrFieldConversionFailed:
		return "field_conversion_failed"
	default:
		return "unknown"
	}
}

// ParseError is returned by Registry.Parse for the three documented
// failure classes.
type ParseError struct {
	Kind    ErrorKind
	Tag     string
	Message string
}

func (e *ParseError) Error() string { return e.Kind.String() + " (" + e.Tag + "): " + e.Message }

// ParsedRecord is the typed-field output of one parser invocation
// (spec §3, ParsedRecord). It carries no table name; the destination
// table is resolved by the schema router, a layer above this package.
type ParsedRecord struct {
	Kind     string
	Feed     Feed
	Fields   map[string]fieldcodec.Value
	Warnings []fieldcodec.Warning
}
