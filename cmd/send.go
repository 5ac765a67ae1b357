/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/defsky/uterm/proto"
)

// sendCmd represents the send command
var sendCmd = &cobra.Command{
	Use:   "send <text>...",
	Short: "push display output to a running endpoint",
	Long:  `send a PUSH_DISPLAY packet with the given text and wait for the acknowledgement`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		text := strings.Join(args, " ")
		if _, err := exchange(proto.CM_PUSH_DISPLAY, []byte(text), false); err != nil {
			fmt.Println(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	addClientFlags(sendCmd)
}
