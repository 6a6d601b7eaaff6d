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

// Package keyenc implements the mutation key encoder: the façade that
// turns a mutation.Mutation into the opaque, order-preserving byte
// string a bulk-write pipeline partitions and sorts writes by.
package keyenc

import (
	"github.com/cockroachdb/errors"

	"github.com/bulkwriter/keyenc/encoding"
	"github.com/bulkwriter/keyenc/mutation"
	"github.com/bulkwriter/keyenc/schema"
)

// unknownTablePrefix groups every mutation against a table the schema
// doesn't know about after every known table's ordering index (which
// never reaches this value for any realistic schema).
var unknownTablePrefix = [4]byte{0xff, 0xff, 0xff, 0xff}

// MutationKeyEncoder encodes mutations against a fixed, immutable
// schema. It is stateless aside from an UnknownTableRegistry reference
// and is safe to share across goroutines; each EncodeTableNameAndKey
// call allocates its own output buffer.
type MutationKeyEncoder struct {
	schema   *schema.Schema
	registry *UnknownTableRegistry
}

// New returns an encoder for schema that reports unknown tables to the
// process-wide default registry.
func New(sch *schema.Schema) *MutationKeyEncoder {
	return NewWithRegistry(sch, defaultRegistry)
}

// NewWithRegistry returns an encoder for schema that reports unknown
// tables to reg instead of the process-wide default. Tests that want
// isolated counters should use this with a freshly constructed
// registry rather than resetting the shared default.
func NewWithRegistry(sch *schema.Schema, reg *UnknownTableRegistry) *MutationKeyEncoder {
	return &MutationKeyEncoder{schema: sch, registry: reg}
}

// EncodeTableNameAndKey encodes m into its opaque sort key. It is pure
// and deterministic: the same mutation against the same schema always
// produces the same bytes, from any encoder instance.
func (e *MutationKeyEncoder) EncodeTableNameAndKey(m mutation.Mutation) ([]byte, error) {
	w := encoding.NewWriter()

	tbl, ok := e.schema.Table(m.Table)
	if !ok {
		e.registry.IncrementAndGet(m.Table)
		w.WriteByte(unknownTablePrefix[0])
		w.WriteByte(unknownTablePrefix[1])
		w.WriteByte(unknownTablePrefix[2])
		w.WriteByte(unknownTablePrefix[3])
		w.WriteString(m.Table, encoding.Ascending)
		w.WriteString(m.String(), encoding.Ascending)
		return w.Bytes(), nil
	}

	idx, _ := e.schema.TableIndex(m.Table)
	w.WriteUint32(uint32(idx))

	if m.Kind == mutation.Delete {
		return e.encodeDelete(w, tbl, m)
	}
	return e.encodeWrite(w, tbl, m)
}

func (e *MutationKeyEncoder) encodeDelete(w *encoding.Writer, tbl *schema.Table, m mutation.Mutation) ([]byte, error) {
	if m.KeySet.Kind != mutation.KeySetPoints {
		// Non-point deletes (All, or any Range) group before every point
		// delete and every write on the same table; nothing further to
		// encode once the table prefix is written.
		return w.Bytes(), nil
	}
	if len(m.KeySet.Points) == 0 {
		return nil, errors.Wrapf(ErrUnsupported, "table %q: point delete with no keys", tbl.Name)
	}
	if len(m.KeySet.Points) > 1 {
		return nil, errors.Wrapf(ErrUnsupported, "table %q: multi-point delete is not supported", tbl.Name)
	}
	key := m.KeySet.Points[0]
	if len(key) != len(tbl.KeyParts) {
		return nil, errors.Wrapf(ErrTypeMismatch, "table %q: point key has %d values, want %d", tbl.Name, len(key), len(tbl.KeyParts))
	}
	for i, kp := range tbl.KeyParts {
		col := tbl.Columns[kp.Column]
		if err := encodeScalarColumn(w, col, e.schema.Dialect(), key[i], kp.Descending); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}

func (e *MutationKeyEncoder) encodeWrite(w *encoding.Writer, tbl *schema.Table, m mutation.Mutation) ([]byte, error) {
	for _, kp := range tbl.KeyParts {
		col := tbl.Columns[kp.Column]
		val, present := m.ColumnValues[kp.Column]
		if !present {
			val = mutation.Unset()
		}
		if err := encodeScalarColumn(w, col, e.schema.Dialect(), val, kp.Descending); err != nil {
			return nil, err
		}
	}
	return w.Bytes(), nil
}
