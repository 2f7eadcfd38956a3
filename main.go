package main

import "github.com/witnessmenow/bridge-traffic-display/cmd"

func main() {
	cmd.Execute()
}
