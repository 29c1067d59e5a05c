package main

import (
	"fmt"
	"os"

	"github.com/sahilchouksey/devcamper-api/app"
)

func main() {
	// setup and run app
	if err := app.SetupAndRunServer(); err != nil {
		fmt.Fprintf(os.Stderr, "devcamper-api: %v\n", err)
		os.Exit(1)
	}
}
