package main

import (
	"os"

	"github.com/dshills/forgereview/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
