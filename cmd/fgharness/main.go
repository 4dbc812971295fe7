package main

import "fgharness/cmd"

func main() {
	cmd.Execute()
}
