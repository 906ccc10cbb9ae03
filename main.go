package main

import "github.com/agentic-research/familiar-registry/cmd"

func main() {
	cmd.Execute()
}
