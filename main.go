package main

import (
	"os"

	"board/service"
)

var exit = os.Exit

func main() {
	RealMain()
}

// RealMain runs the command line and exits non-zero on failure.
func RealMain() {
	if err := service.NewRootCommand().Execute(); err != nil {
		exit(1)
		return
	}
	exit(0)
}
