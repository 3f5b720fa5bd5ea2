package main

import (
	"os"

	"github.com/ciftools/linguist/cli"
)

func main() {
	os.Exit(cli.Execute())
}
