package main

import (
	"os"

	"gearhead/cmd/cli"
)

func main() {
	os.Exit(cli.Execute())
}
