package main

import (
	"os"

	"github.com/kailas-cloud/docsearch/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
