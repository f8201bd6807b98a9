package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	command := os.Args[1]

	// Dispatch to subcommand
	switch command {
	case "prune":
		runPrune(ctx, os.Args[2:])
	case "apps":
		runApps(ctx, os.Args[2:])
	case "releases":
		runReleases(ctx, os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`distprune - Release retention for app distribution projects

Usage:
  distprune <command> [options]

Commands:
  prune     Delete stale releases beyond the retention policy
  apps      List the apps of a project
  releases  Show an app's releases with their retention verdict

Use "distprune <command> --help" for more information about a command.`)
}
