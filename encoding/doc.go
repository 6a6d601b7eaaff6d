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

// Package encoding implements order-preserving, self-delimiting byte
// encodings for a small set of scalar types. Concatenating the output of
// several Write calls produces a byte string whose unsigned lexicographic
// order equals the tuple order of the encoded values, under a declared
// ascending or descending direction per value. No encoded value is a
// prefix of another value of the same type, so callers never need an
// external length field to make concatenations comparable.
package encoding
