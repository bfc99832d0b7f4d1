package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/dotkeep/pkg/style"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		errorStyle := style.Get("Error")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
