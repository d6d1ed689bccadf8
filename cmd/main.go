package main

import (
	"os"

	"github.com/DevPanchal02/dental-edge-sub000/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
