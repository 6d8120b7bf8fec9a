package main

import (
	"os"

	"github.com/Bangulli/cytomine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
