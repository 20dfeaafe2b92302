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
	exchangeType       string
	exchangePassive    bool
	exchangeDurable    bool
	exchangeAutoDelete bool
	exchangeInternal   bool
	exchangeIfUnused   bool
	exchangeArgs       []string
)

var declareExchangeCmd = &cobra.Command{
	Use:   "declare-exchange <name>",
	Short: "Declare an exchange",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		table, err := parseArgTable(exchangeArgs)
		if err != nil {
			return err
		}
		return withClient(func(c *client.Client) error {
			return c.DeclareExchange(name, client.ExchangeOptions{
				Type:       exchangeType,
				Passive:    exchangePassive,
				Durable:    exchangeDurable,
				AutoDelete: exchangeAutoDelete,
				Internal:   exchangeInternal,
				Args:       table,
			})
		})
	},
}

var deleteExchangeCmd = &cobra.Command{
	Use:   "delete-exchange <name>",
	Short: "Delete an exchange",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		return withClient(func(c *client.Client) error {
			return c.DeleteExchange(name, exchangeIfUnused)
		})
	},
}

func init() {
	declareExchangeCmd.Flags().StringVar(&exchangeType, "type", "direct", "exchange type (direct, fanout, topic, headers)")
	declareExchangeCmd.Flags().BoolVar(&exchangePassive, "passive", false, "only check the exchange exists, do not create it")
	declareExchangeCmd.Flags().BoolVar(&exchangeDurable, "durable", false, "survive broker restarts")
	declareExchangeCmd.Flags().BoolVar(&exchangeAutoDelete, "auto-delete", false, "delete when no longer bound to anything")
	declareExchangeCmd.Flags().BoolVar(&exchangeInternal, "internal", false, "disallow direct publishing")
	declareExchangeCmd.Flags().StringArrayVar(&exchangeArgs, "arg", nil, "extra declaration argument as key=value (repeatable)")

	deleteExchangeCmd.Flags().BoolVar(&exchangeIfUnused, "if-unused", false, "only delete if the exchange has no bindings")
}
