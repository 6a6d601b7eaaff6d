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

// Package schema holds the in-memory representation of the tables,
// columns and declared key order that the mutation key encoder needs.
// A Schema is built once with Builder and is immutable and safe for
// concurrent reads thereafter.
package schema

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Dialect selects the SQL surface a Schema describes. It affects type
// spelling and, in the keyenc package, NULL ordering.
type Dialect int

// Dialect values.
const (
	GoogleStandardSql Dialect = iota
	PostgreSql
)

func (d Dialect) String() string {
	switch d {
	case PostgreSql:
		return "PostgreSql"
	default:
		return "GoogleStandardSql"
	}
}

// ColumnType is the logical type of a column, independent of the
// dialect-specific spelling used to declare it.
type ColumnType int

// ColumnType values.
const (
	Bool ColumnType = iota
	Int64
	Float64
	String
	Bytes
	Date
	Timestamp
	Numeric
	PgNumeric
	Json
)

func (t ColumnType) String() string {
	switch t {
	case Bool:
		return "BOOL"
	case Int64:
		return "INT64"
	case Float64:
		return "FLOAT64"
	case String:
		return "STRING"
	case Bytes:
		return "BYTES"
	case Date:
		return "DATE"
	case Timestamp:
		return "TIMESTAMP"
	case Numeric:
		return "NUMERIC"
	case PgNumeric:
		return "PG_NUMERIC"
	case Json:
		return "JSON"
	default:
		return "UNKNOWN"
	}
}

// Column is an immutable description of one column of a Table.
type Column struct {
	Name string
	Type ColumnType
}

// KeyPart is one column of a table's declared primary key, together
// with its sort direction.
type KeyPart struct {
	Column     string
	Descending bool
}

// Table is the set of columns and the ordered key parts of one table.
// Every KeyPart.Column is guaranteed to name a column in Columns.
type Table struct {
	Name     string
	Columns  map[string]Column
	KeyParts []KeyPart
}

// Schema is an immutable collection of Tables, plus a deterministic
// table-name ordering index used to group encoded keys by table.
type Schema struct {
	dialect Dialect
	tables  map[string]*Table
	index   map[string]int
}

// Dialect returns the dialect this schema was built with.
func (s *Schema) Dialect() Dialect {
	return s.dialect
}

// Table returns the named table and whether it is known to the schema.
func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// TableIndex returns the table's position in the name-sorted ordering
// index, and whether the table is known to the schema.
func (s *Schema) TableIndex(name string) (int, bool) {
	i, ok := s.index[name]
	return i, ok
}

// Sentinel errors identifying the SchemaError kinds from spec section
// 7. Wrap these with errors.Wrapf for context; callers should compare
// with errors.Is against these sentinels, not against error text.
var (
	ErrUnknownKeyColumn  = errors.New("schema: key part references a column that was never declared")
	ErrDuplicateColumn   = errors.New("schema: column declared more than once")
	ErrUnknownTypeString = errors.New("schema: unrecognized column type spelling")
)

// Builder assembles a Schema from AddColumn/AddKeyPart calls, mirroring
// the order a schema-acquisition layer (external to this package) would
// replay DDL metadata in.
type Builder struct {
	dialect Dialect
	tables  map[string]*tableBuilder
}

type tableBuilder struct {
	name     string
	columns  map[string]Column
	keyParts []KeyPart
}

// NewBuilder returns a Builder for the given dialect. The zero Dialect
// value is GoogleStandardSql, matching the spec's documented default.
func NewBuilder(dialect Dialect) *Builder {
	return &Builder{
		dialect: dialect,
		tables:  make(map[string]*tableBuilder),
	}
}

func (b *Builder) table(name string) *tableBuilder {
	t, ok := b.tables[name]
	if !ok {
		t = &tableBuilder{name: name, columns: make(map[string]Column)}
		b.tables[name] = t
	}
	return t
}

// AddColumn declares a column on table with the given dialect-specific
// type spelling (case-insensitive, with any parenthesized length or
// precision suffix ignored). It returns ErrDuplicateColumn if the
// column was already declared, or ErrUnknownTypeString if typeString
// does not match a known spelling for the builder's dialect.
func (b *Builder) AddColumn(table, column, typeString string) error {
	colType, err := parseTypeString(b.dialect, typeString)
	if err != nil {
		return err
	}
	t := b.table(table)
	if _, exists := t.columns[column]; exists {
		return errors.Wrapf(ErrDuplicateColumn, "table %q column %q", table, column)
	}
	t.columns[column] = Column{Name: column, Type: colType}
	return nil
}

// AddKeyPart declares that column is the next part of table's primary
// key, in the given sort direction. Whether column was actually
// declared via AddColumn is checked at Build time, so AddColumn and
// AddKeyPart calls for a table may be interleaved in either order.
func (b *Builder) AddKeyPart(table, column string, descending bool) {
	t := b.table(table)
	t.keyParts = append(t.keyParts, KeyPart{Column: column, Descending: descending})
}

// Build validates and freezes the declared tables into an immutable
// Schema, also computing the table-name ordering index (tables sorted
// by name, each assigned its 0-based position).
func (b *Builder) Build() (*Schema, error) {
	tables := make(map[string]*Table, len(b.tables))
	names := make([]string, 0, len(b.tables))
	for name, tb := range b.tables {
		for _, kp := range tb.keyParts {
			if _, ok := tb.columns[kp.Column]; !ok {
				return nil, errors.Wrapf(ErrUnknownKeyColumn, "table %q key part %q", name, kp.Column)
			}
		}
		tables[name] = &Table{
			Name:     tb.name,
			Columns:  tb.columns,
			KeyParts: append([]KeyPart(nil), tb.keyParts...),
		}
		names = append(names, name)
	}
	sort.Strings(names)
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
	}
	return &Schema{dialect: b.dialect, tables: tables, index: index}, nil
}

// parseTypeString matches a dialect-specific type spelling
// case-insensitively against the logical ColumnType it denotes,
// ignoring any parenthesized length/precision suffix.
func parseTypeString(dialect Dialect, typeString string) (ColumnType, error) {
	s := strings.ToLower(strings.TrimSpace(typeString))
	if i := strings.IndexByte(s, '('); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	var table map[string]ColumnType
	if dialect == PostgreSql {
		table = postgresTypeSpellings
	} else {
		table = googleSqlTypeSpellings
	}
	if t, ok := table[s]; ok {
		return t, nil
	}
	return 0, errors.Wrapf(ErrUnknownTypeString, "dialect %v type %q", dialect, typeString)
}

var googleSqlTypeSpellings = map[string]ColumnType{
	"bool":      Bool,
	"int64":     Int64,
	"float64":   Float64,
	"string":    String,
	"bytes":     Bytes,
	"date":      Date,
	"timestamp": Timestamp,
	"numeric":   Numeric,
	"json":      Json,
}

var postgresTypeSpellings = map[string]ColumnType{
	"boolean":                  Bool,
	"bigint":                   Int64,
	"int8":                     Int64,
	"double precision":         Float64,
	"float8":                   Float64,
	"character varying":        String,
	"varchar":                  String,
	"text":                     String,
	"bytea":                    Bytes,
	"date":                     Date,
	"timestamp with time zone": Timestamp,
	"timestamptz":              Timestamp,
	"numeric":                  PgNumeric,
	"jsonb":                    Json,
}
