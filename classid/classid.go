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

// Package classid holds the AMQP 0-9-1 class and method id constants this
// client sends or recognizes. Reused from protocol/pamqp/classmethod.go's
// classMethods table, trimmed to the methods a client library actually
// drives (no content-header-only or server-internal methods).
package classid

const (
	Connection uint16 = 10
	Channel    uint16 = 20
	Exchange   uint16 = 40
	Queue      uint16 = 50
	Basic      uint16 = 60
	Tx         uint16 = 90
)

const (
	ConnectionStart   uint16 = 10
	ConnectionStartOk uint16 = 11
	ConnectionTune    uint16 = 30
	ConnectionTuneOk  uint16 = 31
	ConnectionOpen    uint16 = 40
	ConnectionOpenOk  uint16 = 41
	ConnectionClose   uint16 = 50
	ConnectionCloseOk uint16 = 51
)

const (
	ChannelOpen   uint16 = 10
	ChannelOpenOk uint16 = 11
	ChannelClose  uint16 = 40
	ChannelCloseOk uint16 = 41
)

const (
	ExchangeDeclare   uint16 = 10
	ExchangeDeclareOk uint16 = 11
	ExchangeDelete    uint16 = 20
	ExchangeDeleteOk  uint16 = 21
)

const (
	QueueDeclare   uint16 = 10
	QueueDeclareOk uint16 = 11
	QueueBind      uint16 = 20
	QueueBindOk    uint16 = 21
	QueueUnbind    uint16 = 50
	QueueUnbindOk  uint16 = 51
	QueueDelete    uint16 = 40
	QueueDeleteOk  uint16 = 41
)

const (
	BasicConsume   uint16 = 20
	BasicConsumeOk uint16 = 21
	BasicCancel    uint16 = 30
	BasicCancelOk  uint16 = 31
	BasicPublish   uint16 = 40
	BasicReturn    uint16 = 50
	BasicDeliver   uint16 = 60
	BasicAck       uint16 = 80
	BasicReject    uint16 = 90
)
