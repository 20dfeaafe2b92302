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

package frame

import (
	"github.com/valyala/bytebufferpool"

	"github.com/packetd/rmqcore/wire"
)

// DecodeMethod splits a TypeMethod frame's payload into its class/method
// id pair and the remaining (still tagged-free, domain-typed) argument
// bytes.
func DecodeMethod(payload []byte) (classID, methodID uint16, args []byte, err error) {
	classID, n1, err := wire.ReadUint16(payload)
	if err != nil {
		return 0, 0, nil, err
	}
	methodID, n2, err := wire.ReadUint16(payload[n1:])
	if err != nil {
		return 0, 0, nil, err
	}
	return classID, methodID, payload[n1+n2:], nil
}

// EncodeMethod composes a TypeMethod frame payload.
func EncodeMethod(classID, methodID uint16, args []byte) []byte {
	buf := &bytebufferpool.ByteBuffer{}
	wire.WriteUint16(buf, classID)
	wire.WriteUint16(buf, methodID)
	_, _ = buf.Write(args)
	return buf.B
}

// HeaderPayload is a decoded TypeHeader frame payload: the content class,
// declared body size, the 16-bit property presence mask, and the raw
// property value bytes still to be decoded by the message package.
type HeaderPayload struct {
	ClassID  uint16
	BodySize uint64
	Flags    uint16
	PropData []byte
}

// DecodeHeader decodes a TypeHeader frame payload. The 2-byte "weight"
// field between class id and body size is always zero in AMQP 0-9-1; it
// is read and discarded, and its value is not checked.
func DecodeHeader(payload []byte) (HeaderPayload, error) {
	classID, n, err := wire.ReadUint16(payload)
	if err != nil {
		return HeaderPayload{}, err
	}
	payload = payload[n:]

	_, n, err = wire.ReadUint16(payload) // weight, reserved
	if err != nil {
		return HeaderPayload{}, err
	}
	payload = payload[n:]

	bodySize, n, err := wire.ReadUint64(payload)
	if err != nil {
		return HeaderPayload{}, err
	}
	payload = payload[n:]

	flags, n, err := wire.ReadUint16(payload)
	if err != nil {
		return HeaderPayload{}, err
	}
	payload = payload[n:]

	return HeaderPayload{ClassID: classID, BodySize: bodySize, Flags: flags, PropData: payload}, nil
}

// EncodeHeader composes a TypeHeader frame payload.
func EncodeHeader(classID uint16, bodySize uint64, flags uint16, propData []byte) []byte {
	buf := &bytebufferpool.ByteBuffer{}
	wire.WriteUint16(buf, classID)
	wire.WriteUint16(buf, 0) // weight
	wire.WriteUint64(buf, bodySize)
	wire.WriteUint16(buf, flags)
	_, _ = buf.Write(propData)
	return buf.B
}
