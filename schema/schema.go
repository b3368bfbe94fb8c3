// Package schema is the static table catalogue: one TableDef per
// destination table, derived from the parser package's KindLayout
// data plus an independently declared primary key. The catalogue is
// built and validated once in init(); every lookup afterwards is a
// pure map read over immutable data, in the style of the teacher's
// chain-data table list.
package schema

import (
	"fmt"
	"sort"

	"github.com/raceingest/core/parser"
)

// Column is one destination-table column, carrying enough of the
// originating FieldSpec to let a Writer driver build a CREATE TABLE
// or bind a value by name.
type Column struct {
	Name  string
	Codec parser.Codec
}

// TableDef is one destination table's full column list and primary
// key. Every TableDef must declare at least one primary-key column;
// this is enforced at init() rather than left as a per-row runtime
// check, so a catalogue mistake fails at process start (spec §9: the
// undeclared-PK question is resolved in favor of fail-fast at boot).
type TableDef struct {
	Name     string
	Kind     string
	Feed     parser.Feed
	RealTime bool
	Columns  []Column
	PK       []string
}

func (t TableDef) column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// realtimeColumns is the declared subset of an accumulated table's
// columns that also appears in its real-time counterpart. Declaring
// this per kind keeps the accumulated/real-time relationship a
// structural subset rather than two independently-maintained field
// lists that could silently diverge (spec §9 open question on
// accumulated vs. real-time column conflicts: resolved by construction
// here, so the conflict cannot arise).
var realtimeColumns = map[string][]string{
	"RA": {"race_id", "race_date", "race_number", "post_time"},
	"SE": {"race_id", "horse_number", "horse_id", "finish_position", "odds_win", "popularity"},
	"JG": {"race_id", "horse_number", "new_jockey_id", "new_weight_carried_kg"},
	"CS": {"race_id", "corner_number", "lead_horse_number"},
	"CC": {"race_id", "corner_number", "passage_order"},
	"TM": {"race_id", "split_index", "split_time_s"},
	"HY": {"race_id", "horse_number", "abnormality_code"},
	"CO": {"race_id", "course_condition_code"},
}

// explicitPKs declares the primary-key columns of every table this
// module knows about, keyed by kind tag. Odds kinds key on the
// combination they carry (each sub-record occurrence is a separate
// row per combination), master kinds key on their natural id, and
// everything else keys on race_id plus whatever sub-entity identifier
// distinguishes rows within a race.
var explicitPKs = map[string][]string{
	"RA": {"race_id"},
	"SE": {"race_id", "horse_number"},
	"HR": {"race_id", "bet_type", "combination"},
	"H1": {"race_id", "combination"},
	"H2": {"race_id", "combination"},
	"H3": {"race_id", "combination"},
	"H4": {"race_id", "combination"},
	"H5": {"race_id", "combination"},
	"H6": {"race_id", "combination"},
	"UM": {"horse_id"},
	"KS": {"jockey_id"},
	"CH": {"trainer_id"},
	"BN": {"owner_id"},
	"BR": {"breeder_id"},
	"HN": {"horse_id"},
	"YS": {"year", "track_code", "meet_number", "day_number"},
	"WE": {"race_id"},
	"WH": {"horse_id", "training_date"},
	"JG": {"race_id", "horse_number"},
	"TK": {"race_id", "horse_id"},
	"CS": {"race_id", "corner_number"},
	"CC": {"race_id", "corner_number"},
	"RC": {"race_id"},
	"HC": {"race_id", "horse_number"},
	"SK": {"horse_id", "sale_date"},
	"CK": {"race_id"},
	"TM": {"race_id", "split_index"},
	"AV": {"race_id", "distance_m"},
	"JC": {"jockey_id", "year"},
	"TC": {"trainer_id", "year"},
	"BT": {"horse_id"},
	"MT": {"dam_id", "sire_id", "mating_year"},
	"CB": {"horse_id"},
	"ZC": {"horse_id", "status_date"},
	"HY": {"race_id", "horse_number"},
	"OW": {"horse_id", "overseas_race_date"},
	"RO": {"track_code", "distance_m"},
	"CO": {"race_id"},
	"H9": {"race_id", "bet_type", "combination"},
	"S9": {"race_id", "horse_number"},
	"C9": {"track_code"},
}

// Catalogue is the full set of destination tables: one NL_<KIND> per
// accumulated central kind, RT_<KIND> for every kind with a real-time
// feed, and the regional equivalents suffixed _REG, per
// SPEC_FULL.md §3.1's naming scheme.
var Catalogue = map[string]TableDef{}

// byKind indexes Catalogue's accumulated-table entries by feed and
// kind tag. Route builds table names directly and does not consult it.
var byKind = map[parser.Feed]map[string]string{
	parser.Central:  {},
	parser.Regional: {},
}

func init() {
	reg := parser.NewRegistry()
	for _, k := range reg.Kinds(parser.Central) {
		addKind(k, parser.Central)
	}
	for _, k := range reg.Kinds(parser.Regional) {
		addKind(k, parser.Regional)
	}
	validate()
}

func addKind(k parser.KindLayout, feed parser.Feed) {
	cols := columnsOf(k)
	name := tableName(k.Kind, feed, false)
	def := TableDef{
		Name:    name,
		Kind:    k.Kind,
		Feed:    feed,
		Columns: cols,
		PK:      explicitPKs[k.Kind],
	}
	Catalogue[name] = def
	byKind[feed][k.Kind] = name

	if k.HasRealTime {
		rtNames, ok := realtimeColumns[k.Kind]
		if !ok {
			rtNames = namesOf(cols)
		}
		var rtCols []Column
		for _, n := range rtNames {
			if c, ok := def.column(n); ok {
				rtCols = append(rtCols, c)
			}
		}
		rtName := tableName(k.Kind, feed, true)
		Catalogue[rtName] = TableDef{
			Name:     rtName,
			Kind:     k.Kind,
			Feed:     feed,
			RealTime: true,
			Columns:  rtCols,
			PK:       explicitPKs[k.Kind],
		}
	}
}

func columnsOf(k parser.KindLayout) []Column {
	fields := k.Fields
	cols := make([]Column, 0, len(fields)+4)
	seen := map[string]bool{}
	add := func(name string, codec parser.Codec) {
		if seen[name] {
			return
		}
		seen[name] = true
		cols = append(cols, Column{Name: name, Codec: codec})
	}
	for _, f := range fields {
		add(f.Name, f.Codec)
	}
	if k.SubRecord != nil {
		for _, f := range k.SubRecord.Fields {
			add(f.Name, f.Codec)
		}
	}
	return cols
}

func namesOf(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

func tableName(kind string, feed parser.Feed, realtime bool) string {
	prefix := "NL_"
	if realtime {
		prefix = "RT_"
	}
	name := prefix + kind
	if feed == parser.Regional {
		name += "_REG"
	}
	return name
}

// validate panics if any declared table lacks a primary key. It runs
// once from init(), so a catalogue error is a boot-time failure, never
// a mid-run surprise.
func validate() {
	var missing []string
	for name, def := range Catalogue {
		if len(def.PK) == 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		panic(fmt.Sprintf("schema: table(s) missing a declared primary key: %v", missing))
	}
}

// Route resolves the destination table name for one parsed record,
// given which feed it came from and whether it arrived over the
// real-time or historical/accumulated channel. kind is the two-byte
// tag parser.ParsedRecord.Kind carries.
func Route(feed parser.Feed, kind string, realtime bool) (string, bool) {
	name := tableName(kind, feed, realtime)
	if _, ok := Catalogue[name]; !ok {
		return "", false
	}
	return name, true
}

// Lookup returns the TableDef for a resolved table name.
func Lookup(table string) (TableDef, bool) {
	def, ok := Catalogue[table]
	return def, ok
}

// Tables returns every declared table name, sorted, for callers that
// need to enumerate the catalogue (DDL bootstrap, diagnostics).
func Tables() []string {
	out := make([]string, 0, len(Catalogue))
	for name := range Catalogue {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
