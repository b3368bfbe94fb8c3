// Package fieldcodec implements the fixed-length field extractors
// shared by every record parser: ASCII integers (with optional
// implicit decimal scale), ASCII dates, and Shift-JIS text with a
// byte-preserving fallback decoder. Every primitive is total: given a
// buffer at least as long as offset+length, it always returns a
// value, never an error — malformed bytes degrade to null or to a
// passthrough decode rather than aborting the record.
package fieldcodec

import (
	"bytes"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Value is the typed result of decoding one field. Exactly one of the
// typed accessors is meaningful unless Null is true.
type Value struct {
	Null bool
	Kind Kind
	Int  int64
	Real float64
	Text string
}

// Kind enumerates the logical type a Value carries.
type Kind int

const (
	KindInt Kind = iota
	KindReal
	KindText
)

// NullValue builds a null Value of the given kind, used when a field's
// bytes are empty or entirely blank.
func NullValue(k Kind) Value { return Value{Null: true, Kind: k} }

// slice returns buf[offset:offset+length], or an empty slice (not an
// error) if the buffer is too short for this one field — FieldCodec
// primitives are total over any declared length; the parser that owns
// the buffer is responsible for the whole-record BufferTooShort check.
func slice(buf []byte, offset, length int) []byte {
	if offset < 0 || offset >= len(buf) {
		return nil
	}
	end := offset + length
	if end > len(buf) {
		end = len(buf)
	}
	return buf[offset:end]
}

// isBlank reports whether b is empty or all ASCII spaces — the only
// byte patterns the spec treats as "no value". An all-zero field
// (e.g. "0000") is a valid, non-null integer 0, not blank.
func isBlank(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	for _, c := range b {
		if c != ' ' {
			return false
		}
	}
	return true
}

// Warning is a record-level, non-fatal note produced while decoding a
// field (e.g. a non-digit byte inside a declared numeric field). It
// never causes the record to be rejected.
type Warning struct {
	Field   string
	Message string
}

// ASCIIInt decodes an ASCII numeric field (digits with optional
// leading spaces/zeros, optional leading '-') into an integer. Blank
// fields yield a null Value. Non-digit bytes (other than a leading
// sign or surrounding spaces) yield a null Value plus a Warning;
// the caller is responsible for attaching the field name to it.
func ASCIIInt(buf []byte, offset, length int) (Value, *Warning) {
	raw := slice(buf, offset, length)
	if isBlank(raw) {
		return NullValue(KindInt), nil
	}
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return NullValue(KindInt), nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return NullValue(KindInt), &Warning{Message: "non-digit bytes in ASCII integer field: " + strconv.Quote(s)}
	}
	return Value{Kind: KindInt, Int: n}, nil
}

// ASCIIReal decodes an ASCII numeric field the same way as ASCIIInt,
// then divides by 10^scale to undo the vendor's implicit fixed-point
// encoding (odds stored x10, times stored x10, and so on).
func ASCIIReal(buf []byte, offset, length, scale int) (Value, *Warning) {
	iv, warn := ASCIIInt(buf, offset, length)
	if iv.Null {
		return NullValue(KindReal), warn
	}
	divisor := pow10(scale)
	return Value{Kind: KindReal, Real: float64(iv.Int) / divisor}, warn
}

func pow10(n int) float64 {
	d := 1.0
	for i := 0; i < n; i++ {
		d *= 10
	}
	if n < 0 {
		d = 1.0
		for i := 0; i < -n; i++ {
			d /= 10
		}
	}
	return d
}

// dateLayouts maps a field byte-length to the ASCII date/time layout
// the vendor uses for that width.
var dateLayouts = map[int]string{
	8:  "20060102",
	14: "20060102150405",
}

// ASCIIDateTime decodes an all-digits date or datetime field (widths 8
// or 14, YYYYMMDD / YYYYMMDDhhmmss) to UTC. A blank field is null; an
// unparseable one yields null plus a Warning rather than failing the
// record.
func ASCIIDateTime(buf []byte, offset, length int) (time.Time, bool, *Warning) {
	raw := slice(buf, offset, length)
	if isBlank(raw) {
		return time.Time{}, true, nil
	}
	layout, ok := dateLayouts[length]
	if !ok {
		return time.Time{}, true, &Warning{Message: "unsupported date field width"}
	}
	t, err := time.ParseInLocation(layout, string(raw), time.UTC)
	if err != nil {
		return time.Time{}, true, &Warning{Message: "unparseable date field: " + strconv.Quote(string(raw))}
	}
	return t, false, nil
}

// shiftJISDecoder is the shared standard decoder. Text decodes a whole
// field with it in one call; a field containing any sequence the
// decoder cannot map is decoded by fallbackDecode as a whole instead.
var shiftJISDecoder = japanese.ShiftJIS.NewDecoder()

// Text decodes a Shift-JIS byte field to a UTF-8 Go string, trims
// trailing ASCII spaces (the vendor's padding convention), and falls
// back to a byte-preserving single-byte decode for any sequence the
// Shift-JIS decoder rejects, so no record is ever lost to an encoding
// error.
func Text(buf []byte, offset, length int) string {
	raw := slice(buf, offset, length)
	raw = trimTrailingSpaces(raw)
	if len(raw) == 0 {
		return ""
	}
	out, _, err := transform.Bytes(shiftJISDecoder, raw)
	// The decoder substitutes U+FFFD for invalid sequences instead of
	// returning an error, so a replacement rune marks a rejected field.
	if err == nil && !bytes.ContainsRune(out, utf8.RuneError) {
		return string(out)
	}
	return fallbackDecode(raw)
}

func trimTrailingSpaces(b []byte) []byte {
	end := len(b)
	for end > 0 && b[end-1] == ' ' {
		end--
	}
	return b[:end]
}

// fallbackDecode decodes byte-by-byte, treating each byte as its own
// Latin-1 code point. This is not a correct Shift-JIS decode of the
// original text, but it is deterministic and byte-preserving for the
// ASCII subsequence of the input, which is the only round-trip
// guarantee the spec requires of the fallback path (spec §8 property 7).
func fallbackDecode(raw []byte) string {
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, b := range raw {
		sb.WriteRune(rune(b))
	}
	return sb.String()
}

// SubRecordCount returns the repeat count for a sub-record field: the
// declaring parser's constant, unchanged, whatever the buffer length.
// A short trailing sub-record never causes an index panic; the caller
// still gets exactly `declared` sub-maps, with the tail ones reading
// from a (possibly truncated) slice that itself degrades to nulls.
func SubRecordCount(declared int) int { return declared }
