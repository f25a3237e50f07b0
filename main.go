package main

import "github.com/tradeyard/eventgate/cmd"

func main() {
	cmd.Execute()
}
