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

package encoding

import (
	"bytes"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodeBool(v bool, dir Direction) []byte {
	w := NewWriter()
	w.WriteBool(v, dir)
	return append([]byte(nil), w.Bytes()...)
}

func encodeInt64(v int64, dir Direction) []byte {
	w := NewWriter()
	w.WriteInt64(v, dir)
	return append([]byte(nil), w.Bytes()...)
}

func encodeFloat64(v float64, dir Direction) []byte {
	w := NewWriter()
	w.WriteFloat64(v, dir)
	return append([]byte(nil), w.Bytes()...)
}

func encodeString(v string, dir Direction) []byte {
	w := NewWriter()
	w.WriteString(v, dir)
	return append([]byte(nil), w.Bytes()...)
}

func TestBoolOrdering(t *testing.T) {
	require.True(t, bytes.Compare(encodeBool(false, Ascending), encodeBool(true, Ascending)) < 0)
	require.True(t, bytes.Compare(encodeBool(false, Descending), encodeBool(true, Descending)) > 0)
}

func TestInt64OrderingAndPrefixFree(t *testing.T) {
	values := []int64{math.MinInt64, -1 << 40, -1, 0, 1, 1 << 40, math.MaxInt64}
	for i := 0; i < len(values)-1; i++ {
		a, b := encodeInt64(values[i], Ascending), encodeInt64(values[i+1], Ascending)
		require.True(t, bytes.Compare(a, b) < 0, "expected %d < %d", values[i], values[i+1])
		da, db := encodeInt64(values[i], Descending), encodeInt64(values[i+1], Descending)
		require.True(t, bytes.Compare(da, db) > 0, "expected descending(%d) > descending(%d)", values[i], values[i+1])
	}
	// Fixed width: no encoding can be a prefix of another.
	for _, v := range values {
		require.Len(t, encodeInt64(v, Ascending), 8)
	}
}

func TestFloat64Ordering(t *testing.T) {
	values := []float64{
		math.Inf(-1), -1e300, -1.0, 0.0, 1.0, 1e300, math.Inf(1), math.NaN(),
	}
	for i := 0; i < len(values)-1; i++ {
		a, b := encodeFloat64(values[i], Ascending), encodeFloat64(values[i+1], Ascending)
		require.True(t, bytes.Compare(a, b) < 0,
			"expected %v < %v, got % x vs % x", values[i], values[i+1], a, b)
	}
}

func TestFloat64NegativeZeroEqualsPositiveZero(t *testing.T) {
	require.Equal(t, encodeFloat64(0.0, Ascending), encodeFloat64(math.Copysign(0, -1), Ascending))
	require.Equal(t, encodeFloat64(0.0, Descending), encodeFloat64(math.Copysign(0, -1), Descending))
}

func TestFloat64NaNCanonical(t *testing.T) {
	nan1 := math.Float64frombits(0x7FF8000000000001)
	nan2 := math.Float64frombits(0xFFF800000000BEEF)
	require.Equal(t, encodeFloat64(nan1, Ascending), encodeFloat64(nan2, Ascending))
}

func TestStringOrderingAndEscaping(t *testing.T) {
	values := []string{"", "a", "aa", "ab", "b", "b\x00", "b\x00a", "bc"}
	for i := 0; i < len(values)-1; i++ {
		a, b := encodeString(values[i], Ascending), encodeString(values[i+1], Ascending)
		require.True(t, bytes.Compare(a, b) < 0, "expected %q < %q", values[i], values[i+1])
	}
	// No encoded value contains an unescaped 0x00: every literal 0x00 byte
	// is immediately followed by 0xFF (escape) or 0x01 (terminator, and
	// only at the very end).
	enc := encodeString("a\x00b\x00", Ascending)
	for i := 0; i < len(enc)-1; i++ {
		if enc[i] == 0x00 {
			require.Contains(t, []byte{0x01, 0xff}, enc[i+1])
		}
	}
}

func TestPrefixFreeStrings(t *testing.T) {
	shorter := encodeString("b", Ascending)
	longer := encodeString("bc", Ascending)
	require.False(t, bytes.HasPrefix(longer, shorter))
	require.True(t, bytes.Compare(shorter, longer) < 0)
}

func TestDescendingReversesAscending(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	var asc, desc [][]byte
	for i := 0; i < 50; i++ {
		v := rnd.Int63()
		asc = append(asc, encodeInt64(v, Ascending))
		desc = append(desc, encodeInt64(v, Descending))
	}
	ascSorted := append([][]byte(nil), asc...)
	sort.Slice(ascSorted, func(i, j int) bool { return bytes.Compare(ascSorted[i], ascSorted[j]) < 0 })
	descSorted := append([][]byte(nil), desc...)
	sort.Slice(descSorted, func(i, j int) bool { return bytes.Compare(descSorted[i], descSorted[j]) < 0 })

	// The descending order is the exact reverse of the ascending order
	// for the same underlying values.
	n := len(asc)
	idxOf := func(all [][]byte, target []byte) int {
		for i, v := range all {
			if bytes.Equal(v, target) {
				return i
			}
		}
		return -1
	}
	for i := 0; i < n; i++ {
		a := idxOf(ascSorted, asc[i])
		d := idxOf(descSorted, desc[i])
		require.Equal(t, n-1-a, d)
	}
}

func TestComplementFromRoundTrips(t *testing.T) {
	w := NewWriter()
	start := w.Len()
	w.WriteByte(0x01)
	w.WriteInt64Asc(42)
	w.ComplementFrom(start)
	w.ComplementFrom(start)
	want := NewWriter()
	want.WriteByte(0x01)
	want.WriteInt64Asc(42)
	require.Equal(t, want.Bytes(), w.Bytes())
}
