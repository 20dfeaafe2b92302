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

// Package frame implements AMQP 0-9-1 frame-level codec: the 7-byte
// header, raw payload, and trailing 0xCE end marker, plus the method- and
// content-header frame payload shapes layered on top of it. Grounded on
// protocol/pamqp/decoder.go's decodeHeader and the frame-type constants
// and ASCII-art frame diagrams in protocol/pamqp/channel.go.
package frame

import (
	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/packetd/rmqcore/wire"
)

// Frame type octet values.
const (
	TypeMethod    uint8 = 1
	TypeHeader    uint8 = 2
	TypeBody      uint8 = 3
	TypeHeartbeat uint8 = 8
)

// End is the single byte that must terminate every frame.
const End byte = 0xCE

const (
	headerLen = 7 // type(1) + channel(2) + size(4)
	endLen    = 1
)

// ErrNeedMore indicates b does not yet hold a complete frame.
var ErrNeedMore = wire.ErrNeedMore

// ErrMalformed indicates b holds a complete frame whose trailing byte is
// not End; unlike ErrNeedMore this is never fixed by reading more bytes.
var ErrMalformed = errors.New("frame: missing end marker")

// Frame is one decoded AMQP frame: header fields plus the raw bytes
// between the header and the end marker (the method/header/body payload,
// still to be decoded by the caller according to Type).
type Frame struct {
	Type    uint8
	Channel uint16
	Payload []byte
}

// Read decodes the first complete frame in b, returning it along with the
// number of bytes consumed. If b holds fewer than a full frame, it
// returns ErrNeedMore and the caller should retry once more data has
// arrived; the returned n is 0 in that case and b must be preserved
// unmodified for the retry.
func Read(b []byte) (*Frame, int, error) {
	if len(b) < headerLen {
		return nil, 0, ErrNeedMore
	}
	typ := b[0]
	channel, _, _ := wire.ReadUint16(b[1:3])
	size, _, _ := wire.ReadUint32(b[3:7])

	total := headerLen + int(size) + endLen
	if len(b) < total {
		return nil, 0, ErrNeedMore
	}
	if b[total-1] != End {
		return nil, 0, ErrMalformed
	}

	payload := make([]byte, size)
	copy(payload, b[headerLen:headerLen+int(size)])

	return &Frame{Type: typ, Channel: channel, Payload: payload}, total, nil
}

// Write appends a complete frame (header, payload, end marker) to buf.
func Write(buf *bytebufferpool.ByteBuffer, typ uint8, channel uint16, payload []byte) {
	_ = buf.WriteByte(typ)
	wire.WriteUint16(buf, channel)
	wire.WriteUint32(buf, uint32(len(payload)))
	_, _ = buf.Write(payload)
	_ = buf.WriteByte(End)
}
