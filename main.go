package main

import "github.com/notargets/meshview/cmd"

func main() {
	cmd.Execute()
}
