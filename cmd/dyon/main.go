package main

import (
	"fmt"
	"os"

	"github.com/lucklove/dyon/cmd/dyon/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
