package main

import (
	"fmt"
	"os"

	"media2text/cmd/m2t/cmd"
	"media2text/internal/config"
)

func main() {
	if _, err := config.LoadEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration warning: %v\n", err)
	}

	cmd.Execute()
}
