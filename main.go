package main

import "github.com/ghalbir/trading-client/cmd"

func main() {
	cmd.Execute()
}
