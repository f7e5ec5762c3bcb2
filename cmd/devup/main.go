package main

import (
	"os"

	"github.com/shopercenter/devup/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
