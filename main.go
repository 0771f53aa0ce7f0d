package main

import (
	"jdlmedia/cmd"
)

func main() {
	cmd.Execute()
}
