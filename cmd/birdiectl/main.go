package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/birdiecloud/birdie-gateway-go/internal/devcli"
	"github.com/birdiecloud/birdie-gateway-go/internal/devcli/commands"
)

// Entry point for the gateway CLI: birdiectl.
func main() {
	if len(os.Args) < 2 {
		devcli.PrintGlobalUsage("birdiectl")
		os.Exit(2)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "help", "-h", "--help":
		devcli.PrintGlobalUsage("birdiectl")
		return

	case "services":
		if err := commands.RunServices(args); err != nil {
			fail(err)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		devcli.PrintGlobalUsage("birdiectl")
		os.Exit(2)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	if errors.Is(err, commands.ErrUsage) {
		os.Exit(2)
	}
	os.Exit(1)
}
