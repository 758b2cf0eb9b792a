package main

import (
	"context"
	"os"

	"github.com/verimod/verimod/internal/cli"
)

func main() {
	err := cli.NewRootCommand().ExecuteContext(context.Background())
	if err != nil {
		os.Exit(1)
	}
}
