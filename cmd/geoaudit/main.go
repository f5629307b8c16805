package main

import (
	"os"

	"github.com/geotech-hub/geoaudit/internal/adapters/driving/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
