package main

import (
	"os"

	"github.com/VitaminP8/blogapp/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
