package main

import "broll/cmd/broll/cmd"

func main() {
	cmd.Execute()
}
