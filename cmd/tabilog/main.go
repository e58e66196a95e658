package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/tabilog/internal/app"
)

func main() {
	if err := app.Run(os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
