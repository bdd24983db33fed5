package main

import (
	"fmt"
	"os"

	"github.com/tinovyatkin/vcoder/cmd/vcoder/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
