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

// Package message implements the AMQP 0-9-1 basic content properties
// (the content-header frame's property list) and the message body that
// travels with them. Grounded on
// protocol/pamqp/channel.go:decodeFrameContentHeader, generalized from
// "read body_size, skip the rest" to decoding and encoding every
// property.
package message

import (
	"github.com/pkg/errors"
	"github.com/valyala/bytebufferpool"

	"github.com/packetd/rmqcore/field"
	"github.com/packetd/rmqcore/wire"
)

// Property presence bits, high to low. Thirteen properties occupy bits
// 15..3; see DESIGN.md for why this implementation settles on 13 rather
// than the spec's literal "14 properties" wording.
const (
	flagContentType     uint16 = 1 << 15
	flagContentEncoding uint16 = 1 << 14
	flagHeaders         uint16 = 1 << 13
	flagDeliveryMode    uint16 = 1 << 12
	flagPriority        uint16 = 1 << 11
	flagCorrelationID   uint16 = 1 << 10
	flagReplyTo         uint16 = 1 << 9
	flagExpiration      uint16 = 1 << 8
	flagMessageID       uint16 = 1 << 7
	flagTimestamp       uint16 = 1 << 6
	flagType            uint16 = 1 << 5
	flagUserID          uint16 = 1 << 4
	flagAppID           uint16 = 1 << 3
	flagReservedCluster uint16 = 1 << 2
	flagReservedMask    uint16 = 0x0003 // bits 1..0: continuation + spare
)

// ErrPropertyContinuation is returned when the low 2 reserved bits of the
// property flag word are set. A second flag word is never valid here: 14
// bit positions (15..2) cover every property this class defines, so there
// is nothing a continuation word could carry.
var ErrPropertyContinuation = errors.New("message: property flag continuation bit set")

// ErrInvalidPriority is returned when a priority value outside 0..9 is
// set, per spec.md's invariant on the priority property.
var ErrInvalidPriority = errors.New("message: priority must be 0..9")

func newError(format string, args ...any) error {
	return errors.Errorf("message: "+format, args...)
}

// Properties holds the AMQP 0-9-1 basic content properties. Each field is
// a pointer so nil unambiguously means "not present"; Headers follows the
// same convention (a present-but-empty table is a non-nil Table of length
// zero).
type Properties struct {
	ContentType     *string
	ContentEncoding *string
	Headers         *field.Table
	DeliveryMode    *uint8
	Priority        *uint8
	CorrelationID   *string
	ReplyTo         *string
	Expiration      *string
	MessageID       *string
	Timestamp       *uint64
	Type            *string
	UserID          *string
	AppID           *string
}

func strp(s string) *string   { return &s }
func u8p(v uint8) *uint8      { return &v }
func u64p(v uint64) *uint64   { return &v }

func (p *Properties) SetContentType(v string) *Properties     { p.ContentType = strp(v); return p }
func (p *Properties) SetContentEncoding(v string) *Properties { p.ContentEncoding = strp(v); return p }
func (p *Properties) SetHeaders(v field.Table) *Properties    { p.Headers = &v; return p }
func (p *Properties) SetCorrelationID(v string) *Properties   { p.CorrelationID = strp(v); return p }
func (p *Properties) SetReplyTo(v string) *Properties         { p.ReplyTo = strp(v); return p }
func (p *Properties) SetExpiration(v string) *Properties      { p.Expiration = strp(v); return p }
func (p *Properties) SetMessageID(v string) *Properties       { p.MessageID = strp(v); return p }
func (p *Properties) SetTimestamp(v uint64) *Properties       { p.Timestamp = u64p(v); return p }
func (p *Properties) SetType(v string) *Properties            { p.Type = strp(v); return p }
func (p *Properties) SetUserID(v string) *Properties          { p.UserID = strp(v); return p }
func (p *Properties) SetAppID(v string) *Properties           { p.AppID = strp(v); return p }

// SetDeliveryMode sets the delivery-mode property. 1 is non-persistent, 2
// is persistent, matching the AMQP 0-9-1 convention.
func (p *Properties) SetDeliveryMode(v uint8) *Properties { p.DeliveryMode = u8p(v); return p }

// SetPriority sets the priority property. It returns ErrInvalidPriority
// and leaves p unchanged if v is outside 0..9.
func (p *Properties) SetPriority(v uint8) (*Properties, error) {
	if v > 9 {
		return p, ErrInvalidPriority
	}
	p.Priority = u8p(v)
	return p, nil
}

// DecodeProperties decodes the property section of a content-header
// frame. propData must be exactly the bytes following the flag word (the
// caller already split those off via frame.DecodeHeader).
func DecodeProperties(flags uint16, propData []byte) (Properties, error) {
	if flags&flagReservedMask != 0 {
		return Properties{}, ErrPropertyContinuation
	}

	var p Properties
	b := propData

	readShortString := func() (string, error) {
		s, n, err := wire.ReadShortString(b)
		if err != nil {
			return "", err
		}
		b = b[n:]
		return s, nil
	}

	if flags&flagContentType != 0 {
		s, err := readShortString()
		if err != nil {
			return Properties{}, newError("content-type: %v", err)
		}
		p.ContentType = &s
	}
	if flags&flagContentEncoding != 0 {
		s, err := readShortString()
		if err != nil {
			return Properties{}, newError("content-encoding: %v", err)
		}
		p.ContentEncoding = &s
	}
	if flags&flagHeaders != 0 {
		raw, n, err := wire.ReadLongString(b)
		if err != nil {
			return Properties{}, newError("headers: %v", err)
		}
		b = b[n:]
		t, err := field.DecodeTable(raw)
		if err != nil {
			return Properties{}, newError("headers: %v", err)
		}
		p.Headers = &t
	}
	if flags&flagDeliveryMode != 0 {
		v, n, err := wire.ReadUint8(b)
		if err != nil {
			return Properties{}, newError("delivery-mode: %v", err)
		}
		b = b[n:]
		p.DeliveryMode = &v
	}
	if flags&flagPriority != 0 {
		v, n, err := wire.ReadUint8(b)
		if err != nil {
			return Properties{}, newError("priority: %v", err)
		}
		b = b[n:]
		if v > 9 {
			return Properties{}, ErrInvalidPriority
		}
		p.Priority = &v
	}
	if flags&flagCorrelationID != 0 {
		s, err := readShortString()
		if err != nil {
			return Properties{}, newError("correlation-id: %v", err)
		}
		p.CorrelationID = &s
	}
	if flags&flagReplyTo != 0 {
		s, err := readShortString()
		if err != nil {
			return Properties{}, newError("reply-to: %v", err)
		}
		p.ReplyTo = &s
	}
	if flags&flagExpiration != 0 {
		s, err := readShortString()
		if err != nil {
			return Properties{}, newError("expiration: %v", err)
		}
		p.Expiration = &s
	}
	if flags&flagMessageID != 0 {
		s, err := readShortString()
		if err != nil {
			return Properties{}, newError("message-id: %v", err)
		}
		p.MessageID = &s
	}
	if flags&flagTimestamp != 0 {
		v, n, err := wire.ReadUint64(b)
		if err != nil {
			return Properties{}, newError("timestamp: %v", err)
		}
		b = b[n:]
		p.Timestamp = &v
	}
	if flags&flagType != 0 {
		s, err := readShortString()
		if err != nil {
			return Properties{}, newError("type: %v", err)
		}
		p.Type = &s
	}
	if flags&flagUserID != 0 {
		s, err := readShortString()
		if err != nil {
			return Properties{}, newError("user-id: %v", err)
		}
		p.UserID = &s
	}
	if flags&flagAppID != 0 {
		s, err := readShortString()
		if err != nil {
			return Properties{}, newError("app-id: %v", err)
		}
		p.AppID = &s
	}
	if flags&flagReservedCluster != 0 {
		// Deprecated cluster-id property: skip its bytes, don't surface it.
		_, err := readShortString()
		if err != nil {
			return Properties{}, newError("reserved cluster-id: %v", err)
		}
	}

	return p, nil
}

// EncodeProperties appends the present properties of p to buf in
// declared order and returns the flag word to place in the content-header
// frame.
func EncodeProperties(buf *bytebufferpool.ByteBuffer, p Properties) (uint16, error) {
	var flags uint16

	if p.ContentType != nil {
		flags |= flagContentType
		if err := wire.WriteShortString(buf, *p.ContentType); err != nil {
			return 0, err
		}
	}
	if p.ContentEncoding != nil {
		flags |= flagContentEncoding
		if err := wire.WriteShortString(buf, *p.ContentEncoding); err != nil {
			return 0, err
		}
	}
	if p.Headers != nil {
		flags |= flagHeaders
		inner := &bytebufferpool.ByteBuffer{}
		if err := field.EncodeTable(inner, *p.Headers); err != nil {
			return 0, err
		}
		wire.WriteLongString(buf, inner.B)
	}
	if p.DeliveryMode != nil {
		flags |= flagDeliveryMode
		wire.WriteUint8(buf, *p.DeliveryMode)
	}
	if p.Priority != nil {
		if *p.Priority > 9 {
			return 0, ErrInvalidPriority
		}
		flags |= flagPriority
		wire.WriteUint8(buf, *p.Priority)
	}
	if p.CorrelationID != nil {
		flags |= flagCorrelationID
		if err := wire.WriteShortString(buf, *p.CorrelationID); err != nil {
			return 0, err
		}
	}
	if p.ReplyTo != nil {
		flags |= flagReplyTo
		if err := wire.WriteShortString(buf, *p.ReplyTo); err != nil {
			return 0, err
		}
	}
	if p.Expiration != nil {
		flags |= flagExpiration
		if err := wire.WriteShortString(buf, *p.Expiration); err != nil {
			return 0, err
		}
	}
	if p.MessageID != nil {
		flags |= flagMessageID
		if err := wire.WriteShortString(buf, *p.MessageID); err != nil {
			return 0, err
		}
	}
	if p.Timestamp != nil {
		flags |= flagTimestamp
		wire.WriteUint64(buf, *p.Timestamp)
	}
	if p.Type != nil {
		flags |= flagType
		if err := wire.WriteShortString(buf, *p.Type); err != nil {
			return 0, err
		}
	}
	if p.UserID != nil {
		flags |= flagUserID
		if err := wire.WriteShortString(buf, *p.UserID); err != nil {
			return 0, err
		}
	}
	if p.AppID != nil {
		flags |= flagAppID
		if err := wire.WriteShortString(buf, *p.AppID); err != nil {
			return 0, err
		}
	}

	return flags, nil
}
