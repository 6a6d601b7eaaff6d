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

package keyenc

import (
	"github.com/cockroachdb/apd/v3"
	"github.com/cockroachdb/errors"

	"github.com/bulkwriter/keyenc/encoding"
	"github.com/bulkwriter/keyenc/mutation"
	"github.com/bulkwriter/keyenc/schema"
)

// Sentinel errors identifying the EncodeError kinds from spec section
// 7.
var (
	ErrTypeMismatch = errors.New("keyenc: mutation value type incompatible with declared column type")
	ErrUnsupported  = errors.New("keyenc: encode operation not supported")
)

// unsetTag is the presence byte written in place of a null tag for an
// Unset value: the maximum possible tag value, so that (absent any
// column direction) Unset sorts after every present and every null
// value.
const unsetTag byte = 0xff

// nullTag computes the one-byte presence marker for dialect: the two
// dialects disagree about whether NULL sorts before or after present
// values, so the tag bit is swapped between them.
func nullTag(dialect schema.Dialect, isNull bool) byte {
	nullFirst := dialect != schema.PostgreSql
	switch {
	case isNull && nullFirst:
		return 0x00
	case isNull:
		return 0x01
	case nullFirst:
		return 0x01
	default:
		return 0x00
	}
}

// encodeScalarColumn writes one key part's full encoding: a presence
// tag (Unset, Null, or present) followed by the value bytes when
// present, with the whole region complemented together when descending
// is true. This is what keeps the tag bit part of the same prefix-free,
// direction-reversible unit as the value it precedes.
func encodeScalarColumn(w *encoding.Writer, col schema.Column, dialect schema.Dialect, val mutation.Value, descending bool) error {
	start := w.Len()
	switch {
	case val.IsUnset():
		w.WriteByte(unsetTag)
	case val.IsNull():
		w.WriteByte(nullTag(dialect, true))
	default:
		w.WriteByte(nullTag(dialect, false))
		if err := encodeScalarValue(w, col, val); err != nil {
			return err
		}
	}
	if descending {
		w.ComplementFrom(start)
	}
	return nil
}

// encodeScalarValue writes val's ascending encoding for col.Type,
// validating that val's kind matches the declared column type. The
// direction of the surrounding key part is handled by the caller via
// ComplementFrom, so every primitive here is written Ascending.
func encodeScalarValue(w *encoding.Writer, col schema.Column, val mutation.Value) error {
	switch col.Type {
	case schema.Bool:
		if val.Kind != mutation.KindBool {
			return typeMismatch(col, val)
		}
		w.WriteBool(val.BoolValue(), encoding.Ascending)
	case schema.Int64:
		if val.Kind != mutation.KindInt64 {
			return typeMismatch(col, val)
		}
		w.WriteInt64(val.Int64Value(), encoding.Ascending)
	case schema.Float64:
		if val.Kind != mutation.KindFloat64 {
			return typeMismatch(col, val)
		}
		w.WriteFloat64(val.Float64Value(), encoding.Ascending)
	case schema.String:
		if val.Kind != mutation.KindString {
			return typeMismatch(col, val)
		}
		w.WriteString(val.StringValue(), encoding.Ascending)
	case schema.Bytes:
		if val.Kind != mutation.KindBytes {
			return typeMismatch(col, val)
		}
		w.WriteBytes(val.BytesValue(), encoding.Ascending)
	case schema.Date:
		if val.Kind != mutation.KindDate {
			return typeMismatch(col, val)
		}
		w.WriteInt32(val.DateDays(), encoding.Ascending)
	case schema.Timestamp:
		if val.Kind != mutation.KindTimestamp {
			return typeMismatch(col, val)
		}
		sec, nanos := val.TimestampParts()
		w.WriteTimestamp(sec, nanos, encoding.Ascending)
	case schema.Numeric:
		if val.Kind != mutation.KindNumeric {
			return typeMismatch(col, val)
		}
		return encodeDecimal(w, val.DecimalValue())
	case schema.PgNumeric:
		if val.Kind != mutation.KindPgNumeric {
			return typeMismatch(col, val)
		}
		return encodeDecimal(w, val.DecimalValue())
	case schema.Json:
		if val.Kind != mutation.KindJSON {
			return typeMismatch(col, val)
		}
		w.WriteString(val.StringValue(), encoding.Ascending)
	default:
		return errors.Newf("keyenc: column %q has unrecognized type %v", col.Name, col.Type)
	}
	return nil
}

func typeMismatch(col schema.Column, val mutation.Value) error {
	return errors.Wrapf(ErrTypeMismatch, "column %q declared %v, value is %v", col.Name, col.Type, val.Kind)
}

// encodeDecimal normalizes dec into the (negative, zero, exponent,
// digits) form WriteNumeric expects and writes it.
func encodeDecimal(w *encoding.Writer, dec *apd.Decimal) error {
	if dec == nil {
		return errors.Wrap(ErrTypeMismatch, "keyenc: present numeric value has a nil decimal")
	}
	negative, zero, adjExp, digits := normalizeDecimal(dec)
	w.WriteNumeric(negative, zero, adjExp, digits, encoding.Ascending)
	return nil
}

// normalizeDecimal canonicalizes dec's coefficient and exponent so that
// equal decimal values always produce the same digit string, and
// derives adjExp such that the value equals ±0.<digits> * 10^adjExp.
func normalizeDecimal(dec *apd.Decimal) (negative, zero bool, adjExp int32, digits []byte) {
	if dec.Coeff.Sign() == 0 {
		return false, true, 0, nil
	}
	digitStr := dec.Coeff.String()
	exp := dec.Exponent
	for len(digitStr) > 1 && digitStr[len(digitStr)-1] == '0' {
		digitStr = digitStr[:len(digitStr)-1]
		exp++
	}
	adjExp = exp + int32(len(digitStr))
	return dec.Negative, false, adjExp, []byte(digitStr)
}
