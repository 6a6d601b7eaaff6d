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

package schema

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestBuildOrdersTablesByName(t *testing.T) {
	b := NewBuilder(GoogleStandardSql)
	require.NoError(t, b.AddColumn("zzz", "key", "INT64"))
	b.AddKeyPart("zzz", "key", false)
	require.NoError(t, b.AddColumn("aaa", "key", "INT64"))
	b.AddKeyPart("aaa", "key", false)

	s, err := b.Build()
	require.NoError(t, err)

	aaaIdx, ok := s.TableIndex("aaa")
	require.True(t, ok)
	zzzIdx, ok := s.TableIndex("zzz")
	require.True(t, ok)
	require.Equal(t, 0, aaaIdx)
	require.Equal(t, 1, zzzIdx)
}

func TestAddKeyPartUnknownColumnFailsAtBuild(t *testing.T) {
	b := NewBuilder(GoogleStandardSql)
	require.NoError(t, b.AddColumn("t", "key", "INT64"))
	b.AddKeyPart("t", "missing", false)

	_, err := b.Build()
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownKeyColumn))
}

func TestDuplicateColumnFails(t *testing.T) {
	b := NewBuilder(GoogleStandardSql)
	require.NoError(t, b.AddColumn("t", "key", "INT64"))
	err := b.AddColumn("t", "key", "STRING")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDuplicateColumn))
}

func TestUnknownTypeStringFails(t *testing.T) {
	b := NewBuilder(GoogleStandardSql)
	err := b.AddColumn("t", "key", "NOT_A_TYPE")
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnknownTypeString))
}

func TestTypeSpellingsAreCaseInsensitiveAndIgnoreLength(t *testing.T) {
	b := NewBuilder(GoogleStandardSql)
	require.NoError(t, b.AddColumn("t", "s", "string(MAX)"))
	require.NoError(t, b.AddColumn("t", "n", "Int64"))

	pg := NewBuilder(PostgreSql)
	require.NoError(t, pg.AddColumn("t", "s", "CHARACTER VARYING(255)"))
	require.NoError(t, pg.AddColumn("t", "n", "BIGINT"))
	require.NoError(t, pg.AddColumn("t", "d", "numeric"))

	s, err := b.Build()
	require.NoError(t, err)
	tbl, ok := s.Table("t")
	require.True(t, ok)
	require.Equal(t, String, tbl.Columns["s"].Type)
	require.Equal(t, Int64, tbl.Columns["n"].Type)

	pgSchema, err := pg.Build()
	require.NoError(t, err)
	pgTbl, _ := pgSchema.Table("t")
	require.Equal(t, PgNumeric, pgTbl.Columns["d"].Type)
}

func TestUnknownTableNotInSchema(t *testing.T) {
	b := NewBuilder(GoogleStandardSql)
	require.NoError(t, b.AddColumn("t", "key", "INT64"))
	b.AddKeyPart("t", "key", false)
	s, err := b.Build()
	require.NoError(t, err)

	_, ok := s.Table("other")
	require.False(t, ok)
}
