// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package field

import (
	"github.com/valyala/bytebufferpool"

	"github.com/packetd/rmqcore/wire"
)

// Pair is one name/value entry of a Table.
type Pair struct {
	Name  string
	Value Value
}

// Table is an AMQP field table: an ordered list of name/value pairs.
// Duplicate names are legal on the wire; Get returns the first match, as
// the original C implementation this protocol was distilled from does.
type Table []Pair

// Get returns the value of the first pair named name.
func (t Table) Get(name string) (Value, bool) {
	for _, p := range t {
		if p.Name == name {
			return p.Value, true
		}
	}
	return Value{}, false
}

// Set appends a new pair. It does not replace an existing pair with the
// same name; callers that want replace-semantics should filter first.
func (t *Table) Set(name string, v Value) {
	*t = append(*t, Pair{Name: name, Value: v})
}

// Array is an AMQP field array: an ordered, unnamed list of values.
type Array []Value

// DecodeTable decodes every pair in b, the raw content of a field-table
// long-string, stopping only when b is fully consumed. A pair whose
// declared length would run past the end of b is Malformed, not
// ErrNeedMore: b is already known to be exactly content_size bytes long,
// supplied by the long-string length prefix the caller already validated.
func DecodeTable(b []byte) (Table, error) {
	var t Table
	for len(b) > 0 {
		name, n, err := wire.ReadShortString(b)
		if err != nil {
			return nil, newError("malformed table: field name: %v", err)
		}
		b = b[n:]

		v, n, err := Decode(b)
		if err != nil {
			return nil, newError("malformed table: field %q: %v", name, err)
		}
		b = b[n:]

		t = append(t, Pair{Name: name, Value: v})
	}
	return t, nil
}

// EncodeTable appends every pair of t to buf, name then tagged value.
func EncodeTable(buf *bytebufferpool.ByteBuffer, t Table) error {
	for _, p := range t {
		if err := wire.WriteShortString(buf, p.Name); err != nil {
			return err
		}
		if err := Encode(buf, p.Value); err != nil {
			return err
		}
	}
	return nil
}

// DecodeArray decodes every element in b, the raw content of a
// field-array long-string.
func DecodeArray(b []byte) (Array, error) {
	var a Array
	for len(b) > 0 {
		v, n, err := Decode(b)
		if err != nil {
			return nil, newError("malformed array: element %d: %v", len(a), err)
		}
		b = b[n:]
		a = append(a, v)
	}
	return a, nil
}

// EncodeArray appends every tagged value of a to buf.
func EncodeArray(buf *bytebufferpool.ByteBuffer, a Array) error {
	for _, v := range a {
		if err := Encode(buf, v); err != nil {
			return err
		}
	}
	return nil
}
