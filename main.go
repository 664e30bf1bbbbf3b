package main

import "github.com/jfmyers9/collagefm/cmd"

func main() {
	cmd.Execute()
}
