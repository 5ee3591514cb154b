package main

import "github.com/a3tools/a3sync/cmd"

func main() {
	cmd.Execute()
}
