package main

import (
	"os"

	"github.com/signon-tools/go-jwt-signer/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
