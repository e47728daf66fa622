package main

import (
	"github.com/dockerlens/dockerlens/cmd/dockerlens/commands"
)

func main() {
	commands.Execute()
}
