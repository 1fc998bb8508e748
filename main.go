package main

import "github.com/shajanthanx/life-v2-sub002/cmd"

func main() {
	cmd.Execute()
}
