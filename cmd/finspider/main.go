package main

import (
	"os"

	"github.com/use-agent/finspider/cli"
)

func main() {
	os.Exit(cli.Execute())
}
