// Package main is the gsplat command line tool for inspecting and converting
// Gaussian splat files.
package main

import (
	"fmt"
	"os"
)

func main() {
	app := newApp(os.Stdout, os.Stderr)
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "gsplat:", err)
		os.Exit(1)
	}
}
