package main

import (
	"os"

	"github.com/mmynk/tabsplit/pkg/logging"
)

func main() {
	logging.Setup()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
