package main

import (
	"InferenceHarness/pkg/commands"
)

func main() {
	commands.Execute()
}
