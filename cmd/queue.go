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

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/packetd/rmqcore/client"
)

var (
	queuePassive    bool
	queueDurable    bool
	queueExclusive  bool
	queueAutoDelete bool
	queueIfUnused   bool
	queueIfEmpty    bool
	queueArgs       []string
)

var declareQueueCmd = &cobra.Command{
	Use:   "declare-queue <name>",
	Short: "Declare a queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		table, err := parseArgTable(queueArgs)
		if err != nil {
			return err
		}
		return withClient(func(c *client.Client) error {
			return c.DeclareQueue(name, client.QueueOptions{
				Passive:    queuePassive,
				Durable:    queueDurable,
				Exclusive:  queueExclusive,
				AutoDelete: queueAutoDelete,
				Args:       table,
			})
		})
	},
}

var deleteQueueCmd = &cobra.Command{
	Use:   "delete-queue <name>",
	Short: "Delete a queue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		return withClient(func(c *client.Client) error {
			return c.DeleteQueue(name, client.QueueOptions{
				IfUnused: queueIfUnused,
				IfEmpty:  queueIfEmpty,
			})
		})
	},
}

func init() {
	declareQueueCmd.Flags().BoolVar(&queuePassive, "passive", false, "only check the queue exists, do not create it")
	declareQueueCmd.Flags().BoolVar(&queueDurable, "durable", false, "survive broker restarts")
	declareQueueCmd.Flags().BoolVar(&queueExclusive, "exclusive", false, "restrict to this connection")
	declareQueueCmd.Flags().BoolVar(&queueAutoDelete, "auto-delete", false, "delete when the last consumer unsubscribes")
	declareQueueCmd.Flags().StringArrayVar(&queueArgs, "arg", nil, "extra declaration argument as key=value (repeatable)")

	deleteQueueCmd.Flags().BoolVar(&queueIfUnused, "if-unused", false, "only delete if the queue has no consumers")
	deleteQueueCmd.Flags().BoolVar(&queueIfEmpty, "if-empty", false, "only delete if the queue has no messages")
}
