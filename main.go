package main

import "github.com/defsky/uterm/cmd"

func main() {
	cmd.Execute()
}
