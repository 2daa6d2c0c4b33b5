package main

import (
	"os"

	"switchd/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
