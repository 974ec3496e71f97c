package main

import (
	"fmt"
	"os"

	"github.com/teachme/platform-api/app"
)

func main() {
	// setup and run app
	if err := app.SetupAndRunServer(); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}
