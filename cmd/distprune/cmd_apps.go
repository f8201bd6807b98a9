package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/buildpantry/distprune/internal/domain-adapters/gateways"
	"github.com/buildpantry/distprune/internal/external-adapters/googleauth"
)

func runApps(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("apps", flag.ExitOnError)
	var (
		project    = fs.String("project", "", "Project ID (required)")
		keyFile    = fs.String("key-file", "", "Path to a service account key file")
		keyJSON    = fs.String("key-json", "", "Inline service account key JSON")
		configFile = fs.String("config", "", "Path to a YAML config file")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: distprune apps --project <id> [options]

List the apps of a project, in the order the service returns them. This
is the order prune processes them in.

Options:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		os.Exit(1)
	}

	cfg, err := resolveSettings(rawSettings{
		project:    *project,
		minCount:   flagUnset,
		maxDays:    flagUnset,
		keyFile:    *keyFile,
		keyJSON:    *keyJSON,
		configPath: *configFile,
	})
	if err != nil {
		fail(err)
	}

	tokens, err := googleauth.NewTokenSource(cfg.source)
	if err != nil {
		fail(err)
	}
	gateway := gateways.NewHTTPDistributionGateway(tokens)

	apps, err := gateway.ListApps(ctx, cfg.project)
	if err != nil {
		fail(err)
	}

	if len(apps) == 0 {
		fmt.Printf("No apps found in project %s\n", cfg.project)
		return
	}

	fmt.Printf("📱 %d app(s) in project %s:\n", len(apps), cfg.project)
	for _, app := range apps {
		label := app.DisplayName
		if label == "" {
			label = app.AppID
		}
		fmt.Printf("  - %s (%s", label, app.AppID)
		if app.Platform != "" {
			fmt.Printf(", %s", app.Platform)
		}
		fmt.Println(")")
	}
}
