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
	bindingRoutingKey string
	bindingArgs       []string
)

var bindQueueCmd = &cobra.Command{
	Use:   "bind-queue <queue> <exchange>",
	Short: "Bind a queue to an exchange",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		queue, exchange := args[0], args[1]
		table, err := parseArgTable(bindingArgs)
		if err != nil {
			return err
		}
		return withClient(func(c *client.Client) error {
			return c.BindQueue(queue, exchange, bindingRoutingKey, table)
		})
	},
}

var unbindQueueCmd = &cobra.Command{
	Use:   "unbind-queue <queue> <exchange>",
	Short: "Remove a queue-to-exchange binding",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		queue, exchange := args[0], args[1]
		table, err := parseArgTable(bindingArgs)
		if err != nil {
			return err
		}
		return withClient(func(c *client.Client) error {
			return c.UnbindQueue(queue, exchange, bindingRoutingKey, table)
		})
	},
}

func init() {
	bindQueueCmd.Flags().StringVar(&bindingRoutingKey, "routing-key", "", "binding routing key")
	bindQueueCmd.Flags().StringArrayVar(&bindingArgs, "arg", nil, "extra binding argument as key=value (repeatable)")
	unbindQueueCmd.Flags().StringVar(&bindingRoutingKey, "routing-key", "", "binding routing key")
	unbindQueueCmd.Flags().StringArrayVar(&bindingArgs, "arg", nil, "extra binding argument as key=value (repeatable)")
}
