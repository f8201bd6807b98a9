package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/buildpantry/distprune/internal/domain/entities"
	"github.com/buildpantry/distprune/internal/domain/services"
)

func runReleases(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("releases", flag.ExitOnError)
	var (
		project    = fs.String("project", "", "Project ID (required)")
		app        = fs.String("app", "", "App ID (required)")
		minCount   = fs.Int("min-count", flagUnset, "Newest releases always kept regardless of age (default 5)")
		maxDays    = fs.Int("max-days", flagUnset, "Age in days beyond which releases become stale (default 30)")
		keyFile    = fs.String("key-file", "", "Path to a service account key file")
		keyJSON    = fs.String("key-json", "", "Inline service account key JSON")
		configFile = fs.String("config", "", "Path to a YAML config file")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: distprune releases --project <id> --app <id> [options]

Show an app's full release inventory, newest first, annotated with the
verdict the retention policy would give each release. Nothing is deleted.

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
		app:        *app,
		minCount:   *minCount,
		maxDays:    *maxDays,
		keyFile:    *keyFile,
		keyJSON:    *keyJSON,
		configPath: *configFile,
	})
	if err != nil {
		fail(err)
	}
	if cfg.app == "" {
		fail(entities.NewConfigError("app is required (--app flag or config file)"))
	}

	orch, err := newOrchestrator(cfg)
	if err != nil {
		fail(err)
	}

	appName := fmt.Sprintf("projects/%s/apps/%s", cfg.project, cfg.app)
	releases, err := orch.CollectReleases(ctx, appName)
	if err != nil {
		fail(err)
	}

	if len(releases) == 0 {
		fmt.Printf("No releases found for app %s\n", cfg.app)
		return
	}

	plan := services.NewRetentionService().Plan(releases, cfg.policy, time.Now())

	fmt.Printf("📦 %d release(s) for app %s (keep newest %d, max age %d days):\n\n",
		len(releases), cfg.app, cfg.policy.MinKeep, cfg.policy.MaxAgeDays)

	fmt.Printf("✅ Keeping %d:\n", len(plan.Keep))
	for _, release := range plan.Keep {
		printRelease(release)
	}

	fmt.Printf("\n🗑️  Would delete %d:\n", len(plan.Delete))
	for _, release := range plan.Delete {
		printRelease(release)
	}
}

func printRelease(release entities.Release) {
	version := release.DisplayVersion
	if release.BuildVersion != "" {
		version += " (" + release.BuildVersion + ")"
	}
	fmt.Printf("  %s  %s  %s\n", release.CreateTime.Format(time.RFC3339), version, release.Name)
}
