package main

import "github.com/inamate/diagrams/cmd/diagramc/commands"

func main() {
	commands.Execute()
}
