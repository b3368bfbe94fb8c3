package parser

import "github.com/raceingest/core/fieldcodec"

// Registry maps a two-byte record-kind tag, scoped by feed, to its
// KindLayout and drives the actual decode.
type Registry struct {
	central  map[string]KindLayout
	regional map[string]KindLayout
}

// NewRegistry builds a Registry from the static catalogue declared in
// catalogue.go. It is the only constructor; there is no way to
// register a layout at runtime, matching the spec's "static table"
// requirement for parser declarations.
func NewRegistry() *Registry {
	r := &Registry{
		central:  map[string]KindLayout{},
		regional: map[string]KindLayout{},
	}
	for _, k := range Catalogue {
		if k.CentralApplicable {
			r.central[k.Kind] = k
		}
		if k.RegionalApplicable || k.RegionalOnly {
			r.regional[k.Kind] = k
		}
	}
	return r
}

// Layout returns the KindLayout the registry would use to parse tag
// under feed, or false if the tag is not recognised for that feed.
func (r *Registry) Layout(feed Feed, tag string) (KindLayout, bool) {
	table := r.central
	if feed == Regional {
		table = r.regional
	}
	k, ok := table[tag]
	return k, ok
}

// Kinds returns every kind tag the registry recognises for feed, for
// callers that need to enumerate the catalogue (e.g. the schema
// package building the table catalogue).
func (r *Registry) Kinds(feed Feed) []KindLayout {
	table := r.central
	if feed == Regional {
		table = r.regional
	}
	out := make([]KindLayout, 0, len(table))
	for _, k := range table {
		out = append(out, k)
	}
	return out
}

// Parse decodes one RecordBuffer into one or more ParsedRecords (more
// than one only for sub-record kinds, where each repeat occurrence
// becomes its own record so each gets its own destination row). The
// first two bytes of buf are the record-kind tag; extraction is total
// for any buffer at least as long as the layout's declared length.
func (r *Registry) Parse(feed Feed, buf []byte) ([]ParsedRecord, error) {
	if len(buf) < 2 {
		return nil, &ParseError{Kind: ErrBufferTooShort, Tag: "", Message: "buffer shorter than the 2-byte kind tag"}
	}
	tag := string(buf[0:2])
	layout, ok := r.Layout(feed, tag)
	if !ok {
		return nil, &ParseError{Kind: ErrUnknownKind, Tag: tag, Message: "no parser registered for this feed"}
	}
	if len(buf) < layout.Length {
		return nil, &ParseError{Kind: ErrBufferTooShort, Tag: tag, Message: "buffer shorter than the declared fixed length"}
	}

	header, warnings := decodeFields(buf, layout.normalizedFields())

	if layout.SubRecord == nil {
		return []ParsedRecord{{
			Kind:     tag,
			Feed:     feed,
			Fields:   header,
			Warnings: warnings,
		}}, nil
	}

	sub := layout.SubRecord
	records := make([]ParsedRecord, 0, sub.Repeat)
	for i := 0; i < sub.Repeat; i++ {
		itemOffset := sub.FirstOffset + i*sub.ItemLength
		itemFields, itemWarnings := decodeFields(buf, offsetFields(sub.Fields, itemOffset))

		fields := make(map[string]fieldcodec.Value, len(header)+len(itemFields))
		for k, v := range header {
			fields[k] = v
		}
		for k, v := range itemFields {
			fields[k] = v
		}

		allWarnings := append(append([]fieldcodec.Warning{}, warnings...), itemWarnings...)
		records = append(records, ParsedRecord{
			Kind:     tag,
			Feed:     feed,
			Fields:   fields,
			Warnings: allWarnings,
		})
	}
	return records, nil
}

// offsetFields rebases a SubRecordSpec's item-relative field offsets
// to absolute buffer offsets for occurrence i.
func offsetFields(fields []FieldSpec, base int) []FieldSpec {
	out := make([]FieldSpec, len(fields))
	for i, f := range fields {
		f.Offset = base + f.Offset
		out[i] = f
	}
	return out
}

// decodeFields is total: every declared field yields a Value (possibly
// null), and any per-field conversion problem is collected as a
// Warning rather than aborting decode of the rest of the record.
func decodeFields(buf []byte, fields []FieldSpec) (map[string]fieldcodec.Value, []fieldcodec.Warning) {
	out := make(map[string]fieldcodec.Value, len(fields))
	var warnings []fieldcodec.Warning
	for _, f := range fields {
		var v fieldcodec.Value
		var warn *fieldcodec.Warning
		switch f.Codec {
		case CodecInt:
			v, warn = fieldcodec.ASCIIInt(buf, f.Offset, f.Length)
		case CodecReal:
			v, warn = fieldcodec.ASCIIReal(buf, f.Offset, f.Length, f.Scale)
		case CodecText:
			v = fieldcodec.Value{Kind: fieldcodec.KindText, Text: fieldcodec.Text(buf, f.Offset, f.Length)}
		case CodecDate:
			t, null, w := fieldcodec.ASCIIDateTime(buf, f.Offset, f.Length)
			warn = w
			if null {
				v = fieldcodec.NullValue(fieldcodec.KindText)
			} else {
				v = fieldcodec.Value{Kind: fieldcodec.KindText, Text: t.Format("2006-01-02T15:04:05Z")}
			}
		}
		if warn != nil {
			warn.Field = f.Name
			warnings = append(warnings, *warn)
		}
		out[f.Name] = v
	}
	return out, warnings
}
