package main

import (
	"os"

	"github.com/bianoble/bucketpub/cmd/bucketpub/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
