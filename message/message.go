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

package message

// Message is a message body paired with its content properties. Owned
// reports whether Data is a buffer this Message exclusively controls
// (safe to mutate or retain past the call that produced it) as opposed to
// one borrowed from a reused read buffer.
//
// Go's garbage collector makes the owned/borrowed distinction purely
// informational here (there is no explicit free to skip), but it still
// matters to callers: a delivery handed to a subscriber callback must
// never alias a transport's reusable read buffer, so the delivery
// reassembler always produces an owned Message.
type Message struct {
	Properties Properties
	Data       []byte
	owned      bool
}

// NewOwned wraps data, taking ownership without copying it. Use this when
// data is already a buffer nothing else will mutate or reuse.
func NewOwned(props Properties, data []byte) Message {
	return Message{Properties: props, Data: data, owned: true}
}

// NewCopy copies data into a freshly allocated buffer before wrapping it.
// Use this when data may be overwritten or reused by its caller after
// this call returns (e.g. it points into a transport's read buffer).
func NewCopy(props Properties, data []byte) Message {
	cp := make([]byte, len(data))
	copy(cp, data)
	return Message{Properties: props, Data: cp, owned: true}
}

// NewBorrowed wraps data without copying and without claiming ownership.
// The caller must not retain the returned Message past the lifetime of
// data.
func NewBorrowed(props Properties, data []byte) Message {
	return Message{Properties: props, Data: data, owned: false}
}

// Owned reports whether Data belongs exclusively to this Message.
func (m Message) Owned() bool {
	return m.owned
}
