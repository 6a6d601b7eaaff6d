// Copyright 2025 The Bulkwriter Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or
// implied. See the License for the specific language governing
// permissions and limitations under the License.

// Package mutation defines the row-mutation data model the key encoder
// consumes: a Write carries a table, a kind, and the set of column
// values being written; a Delete carries a table and a key set. Both
// are produced by a pipeline external to this repository; this package
// only defines the shape.
package mutation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"
)

// Kind distinguishes the flavor of a Write mutation; the Delete value
// marks a delete mutation instead.
type Kind int

// Kind values.
const (
	Insert Kind = iota
	Update
	Replace
	InsertOrUpdate
	Delete
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "Insert"
	case Update:
		return "Update"
	case Replace:
		return "Replace"
	case InsertOrUpdate:
		return "InsertOrUpdate"
	case Delete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// ValueKind tags the variant held by a Value.
type ValueKind int

// ValueKind values. Null and Unset are never valid for a schema column
// type; every other kind corresponds 1:1 with a schema.ColumnType.
const (
	KindNull ValueKind = iota
	KindUnset
	KindBool
	KindInt64
	KindFloat64
	KindString
	KindBytes
	KindDate
	KindTimestamp
	KindNumeric
	KindPgNumeric
	KindJSON
)

func (k ValueKind) String() string {
	switch k {
	case KindNull:
		return "NULL"
	case KindUnset:
		return "UNSET"
	case KindBool:
		return "BOOL"
	case KindInt64:
		return "INT64"
	case KindFloat64:
		return "FLOAT64"
	case KindString:
		return "STRING"
	case KindBytes:
		return "BYTES"
	case KindDate:
		return "DATE"
	case KindTimestamp:
		return "TIMESTAMP"
	case KindNumeric:
		return "NUMERIC"
	case KindPgNumeric:
		return "PG_NUMERIC"
	case KindJSON:
		return "JSON"
	default:
		return "UNKNOWN"
	}
}

// Value is a dynamically typed scalar, or one of the two sentinels Null
// (an explicit SQL NULL) and Unset (a write mutation that simply never
// mentioned this column). The two are always distinguishable: IsNull
// and IsUnset are never both true.
type Value struct {
	Kind ValueKind

	boolVal  bool
	int64Val int64
	f64Val   float64
	strVal   string // String and Json
	bytesVal []byte
	dateDays int32
	tsSec    int64
	tsNanos  int64
	dec      *apd.Decimal // Numeric and PgNumeric
}

// Null returns the Null sentinel value.
func Null() Value { return Value{Kind: KindNull} }

// Unset returns the Unset sentinel value.
func Unset() Value { return Value{Kind: KindUnset} }

// Bool returns a present BOOL value.
func Bool(v bool) Value { return Value{Kind: KindBool, boolVal: v} }

// Int64 returns a present INT64 value.
func Int64(v int64) Value { return Value{Kind: KindInt64, int64Val: v} }

// Float64 returns a present FLOAT64 value.
func Float64(v float64) Value { return Value{Kind: KindFloat64, f64Val: v} }

// String returns a present STRING value.
func String(v string) Value { return Value{Kind: KindString, strVal: v} }

// Bytes returns a present BYTES value. The slice is retained, not
// copied; callers should not mutate it afterward.
func Bytes(v []byte) Value { return Value{Kind: KindBytes, bytesVal: v} }

// Date returns a present DATE value expressed as days since
// 1970-01-01.
func Date(days int32) Value { return Value{Kind: KindDate, dateDays: days} }

// Timestamp returns a present TIMESTAMP value expressed as seconds and
// nanoseconds since the Unix epoch.
func Timestamp(seconds, nanos int64) Value {
	return Value{Kind: KindTimestamp, tsSec: seconds, tsNanos: nanos}
}

// Numeric returns a present NUMERIC value.
func Numeric(d *apd.Decimal) Value { return Value{Kind: KindNumeric, dec: d} }

// PgNumeric returns a present PG_NUMERIC value.
func PgNumeric(d *apd.Decimal) Value { return Value{Kind: KindPgNumeric, dec: d} }

// JSON returns a present JSON value holding raw, uncanonicalized JSON
// text.
func JSON(text string) Value { return Value{Kind: KindJSON, strVal: text} }

// IsNull reports whether v is the Null sentinel.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// IsUnset reports whether v is the Unset sentinel.
func (v Value) IsUnset() bool { return v.Kind == KindUnset }

// BoolValue returns the underlying bool. It is only meaningful when
// Kind == KindBool.
func (v Value) BoolValue() bool { return v.boolVal }

// Int64Value returns the underlying int64. It is only meaningful when
// Kind == KindInt64.
func (v Value) Int64Value() int64 { return v.int64Val }

// Float64Value returns the underlying float64. It is only meaningful
// when Kind == KindFloat64.
func (v Value) Float64Value() float64 { return v.f64Val }

// StringValue returns the underlying text. It is only meaningful when
// Kind == KindString or KindJSON.
func (v Value) StringValue() string { return v.strVal }

// BytesValue returns the underlying bytes. It is only meaningful when
// Kind == KindBytes.
func (v Value) BytesValue() []byte { return v.bytesVal }

// DateDays returns the underlying day count. It is only meaningful
// when Kind == KindDate.
func (v Value) DateDays() int32 { return v.dateDays }

// TimestampParts returns the underlying (seconds, nanos) pair. It is
// only meaningful when Kind == KindTimestamp.
func (v Value) TimestampParts() (int64, int64) { return v.tsSec, v.tsNanos }

// DecimalValue returns the underlying decimal. It is only meaningful
// when Kind == KindNumeric or KindPgNumeric.
func (v Value) DecimalValue() *apd.Decimal { return v.dec }

func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return "NULL"
	case KindUnset:
		return "UNSET"
	case KindBool:
		return fmt.Sprintf("%v", v.boolVal)
	case KindInt64:
		return fmt.Sprintf("%d", v.int64Val)
	case KindFloat64:
		return fmt.Sprintf("%v", v.f64Val)
	case KindString, KindJSON:
		return v.strVal
	case KindBytes:
		return fmt.Sprintf("%x", v.bytesVal)
	case KindDate:
		return fmt.Sprintf("date:%d", v.dateDays)
	case KindTimestamp:
		return fmt.Sprintf("ts:%d.%09d", v.tsSec, v.tsNanos)
	case KindNumeric, KindPgNumeric:
		if v.dec == nil {
			return "<nil decimal>"
		}
		return v.dec.String()
	default:
		return "?"
	}
}

// Key is an ordered sequence of typed scalar values, one per key part
// of a table, in the table's declared key order.
type Key []Value

// KeySetKind distinguishes which variant of KeySet is populated.
type KeySetKind int

// KeySetKind values.
const (
	KeySetAll KeySetKind = iota
	KeySetPoints
	KeySetRanges
)

// KeyRange is a contiguous range of keys, used only to recognize a
// delete as a non-point delete; its endpoints do not affect the key
// encoding of a known table (they appear only in Mutation.String's
// text, which the unknown-table encoding includes).
type KeyRange struct {
	Start, End Key
}

// KeySet is the set of keys a Delete mutation targets.
type KeySet struct {
	Kind   KeySetKind
	Points []Key
	Ranges []KeyRange
}

// AllKeys returns the KeySet matching every row of a table.
func AllKeys() KeySet { return KeySet{Kind: KeySetAll} }

// PointKeys returns a KeySet naming exactly the given keys.
func PointKeys(keys ...Key) KeySet { return KeySet{Kind: KeySetPoints, Points: keys} }

// RangeKeys returns a KeySet naming the given ranges.
func RangeKeys(ranges ...KeyRange) KeySet { return KeySet{Kind: KeySetRanges, Ranges: ranges} }

// Mutation is a row-level write intent or a delete referencing a key
// set. Kind == Delete identifies a delete; any other Kind identifies a
// write, in which case ColumnValues holds the columns the mutation
// supplies (a key column absent from the map is Unset, not Null).
type Mutation struct {
	Table        string
	Kind         Kind
	ColumnValues map[string]Value
	KeySet       KeySet
}

// Write returns a write mutation of the given kind.
func Write(table string, kind Kind, columnValues map[string]Value) Mutation {
	return Mutation{Table: table, Kind: kind, ColumnValues: columnValues}
}

// DeleteMutation returns a delete mutation targeting keys.
func DeleteMutation(table string, keys KeySet) Mutation {
	return Mutation{Table: table, Kind: Delete, KeySet: keys}
}

// String renders a stable, canonical text form of m. It is used only
// as a tiebreaker when sorting mutations against a table unknown to
// the schema; it carries no ordering contract of its own.
func (m Mutation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s(%s)", m.Kind, m.Table)
	if m.Kind == Delete {
		fmt.Fprintf(&b, "keyset=%v", m.KeySet)
		return b.String()
	}
	names := make([]string, 0, len(m.ColumnValues))
	for name := range m.ColumnValues {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&b, " %s=%s", name, m.ColumnValues[name])
	}
	return b.String()
}
