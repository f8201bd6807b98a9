package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/buildpantry/distprune/internal/domain/entities"
)

func runPrune(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("prune", flag.ExitOnError)
	var (
		project    = fs.String("project", "", "Project ID (required)")
		app        = fs.String("app", "", "App ID (default: prune all apps in the project)")
		minCount   = fs.Int("min-count", flagUnset, "Newest releases always kept regardless of age (default 5)")
		maxDays    = fs.Int("max-days", flagUnset, "Age in days beyond which releases become stale (default 30)")
		keyFile    = fs.String("key-file", "", "Path to a service account key file")
		keyJSON    = fs.String("key-json", "", "Inline service account key JSON")
		configFile = fs.String("config", "", "Path to a YAML config file")
		reportFile = fs.String("report", "", "Write JSON run report to file")
	)

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Usage: distprune prune --project <id> [options]

Delete stale releases while always keeping the newest ones. A release is
deleted only when it is both beyond the --min-count newest and older than
--max-days.

Examples:
  distprune prune --project my-project
  distprune prune --project my-project --app 1:1234:android:abcd
  distprune prune --project my-project --min-count 10 --max-days 14
  distprune prune --config distprune.yml --report report.json

Options:
`)
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, `
Credentials:
  Provide --key-file or --key-json, or rely on ambient default
  credentials (GOOGLE_APPLICATION_CREDENTIALS).

Exit codes:
  0  every app pruned cleanly
  1  a listing or delete chunk failed somewhere in the run
  2  invalid configuration (nothing was attempted)
`)
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

	orch, err := newOrchestrator(cfg)
	if err != nil {
		fail(err)
	}

	fmt.Printf("🧹 Pruning project %s (keep newest %d, max age %d days)\n",
		cfg.project, cfg.policy.MinKeep, cfg.policy.MaxAgeDays)

	var report *entities.PruneReport
	if cfg.app != "" {
		report, err = orch.PruneSingleApp(ctx, cfg.project, cfg.app, cfg.policy)
	} else {
		report, err = orch.PruneProject(ctx, cfg.project, cfg.policy)
	}
	if err != nil {
		fail(err)
	}

	printReport(report)

	if *reportFile != "" {
		if err := writeReport(report, *reportFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to write report file: %v\n", err)
		}
	}

	if !report.Clean() {
		os.Exit(1)
	}
}

func printReport(report *entities.PruneReport) {
	for _, result := range report.Results {
		label := result.App.AppID
		if label == "" {
			label = result.App.Name
		}

		switch {
		case result.Error != "":
			fmt.Printf("  ❌ %s: %s\n", label, result.Error)
		case !result.Outcome.Clean():
			failedNames := 0
			for _, chunk := range result.Outcome.FailedChunks {
				failedNames += len(chunk.Names)
			}
			fmt.Printf("  ⚠️  %s: deleted %d, %d failed across %d chunk(s)\n",
				label, result.Outcome.Deleted, failedNames, len(result.Outcome.FailedChunks))
		default:
			fmt.Printf("  ✅ %s: examined %d, kept %d, deleted %d\n",
				label, result.Examined, result.Kept, result.Outcome.Deleted)
		}
	}

	fmt.Printf("\n📊 Run %s: %d app(s), %d release(s) deleted\n",
		report.RunID, len(report.Results), report.TotalDeleted())
	if !report.Clean() {
		fmt.Println("⚠️  Run finished with failures")
	}
}

func writeReport(report *entities.PruneReport, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}
