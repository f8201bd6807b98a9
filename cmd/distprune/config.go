package main

import (
	"errors"
	"os"

	gatewayAdapters "github.com/buildpantry/distprune/internal/domain-adapters/gateways"
	orchestrators "github.com/buildpantry/distprune/internal/domain-orchestrators"
	"github.com/buildpantry/distprune/internal/domain/entities"
	"github.com/buildpantry/distprune/internal/domain/interfaces"
	"github.com/buildpantry/distprune/internal/external-adapters/googleauth"
	"github.com/buildpantry/distprune/internal/external-adapters/yaml"
)

// flagUnset is the sentinel default for numeric flags, so an explicit
// zero can be told apart from "not given".
const flagUnset = -1

// settings is the fully resolved runtime configuration of a command:
// flags override the optional config file, which overrides defaults.
type settings struct {
	project string
	app     string
	policy  entities.RetentionPolicy
	source  googleauth.CredentialSource
}

type rawSettings struct {
	project    string
	app        string
	minCount   int
	maxDays    int
	keyFile    string
	keyJSON    string
	configPath string
}

// resolveSettings merges flags, the optional YAML config file, and
// defaults, then validates the result. Every violation is a
// configuration error reported before any remote call.
func resolveSettings(raw rawSettings) (*settings, error) {
	var file *yaml.FileConfig
	if raw.configPath != "" {
		loaded, err := yaml.LoadConfigFile(raw.configPath)
		if err != nil {
			return nil, entities.NewConfigError(err.Error())
		}
		file = loaded
	} else {
		file = &yaml.FileConfig{}
	}

	cfg := &settings{
		project: raw.project,
		app:     raw.app,
		policy:  entities.DefaultRetentionPolicy(),
	}

	if cfg.project == "" {
		cfg.project = file.Project
	}
	if cfg.app == "" {
		cfg.app = file.App
	}

	switch {
	case raw.minCount != flagUnset:
		cfg.policy.MinKeep = raw.minCount
	case file.MinCount != nil:
		cfg.policy.MinKeep = *file.MinCount
	}
	switch {
	case raw.maxDays != flagUnset:
		cfg.policy.MaxAgeDays = raw.maxDays
	case file.MaxDays != nil:
		cfg.policy.MaxAgeDays = *file.MaxDays
	}

	keyFile := raw.keyFile
	if keyFile == "" {
		keyFile = file.KeyFile
	}
	keyJSON := raw.keyJSON
	if keyJSON == "" {
		keyJSON = file.KeyJSON
	}

	if cfg.project == "" {
		return nil, entities.NewConfigError("project is required (--project flag or config file)")
	}
	if err := cfg.policy.Validate(); err != nil {
		return nil, err
	}
	if keyFile != "" && keyJSON != "" {
		return nil, entities.NewConfigError("key-file and key-json are mutually exclusive")
	}

	switch {
	case keyJSON != "":
		cfg.source = googleauth.FromKeyJSON(keyJSON)
	case keyFile != "":
		cfg.source = googleauth.FromKeyFile(keyFile)
	default:
		cfg.source = googleauth.Ambient()
	}

	return cfg, nil
}

// newOrchestrator wires the resolved settings into a ready pipeline:
// credentials resolve once here, before any remote call.
func newOrchestrator(cfg *settings) (*orchestrators.PruneOrchestrator, error) {
	tokens, err := googleauth.NewTokenSource(cfg.source)
	if err != nil {
		return nil, err
	}
	gateway := gatewayAdapters.NewHTTPDistributionGateway(tokens)
	return orchestrators.NewPruneOrchestrator(gateway, &interfaces.StderrLogger{}), nil
}

// fail prints the error and exits: configuration errors exit with 2 so
// operators can tell them apart from mid-run remote failures (exit 1).
func fail(err error) {
	os.Stderr.WriteString("Error: " + err.Error() + "\n")
	var configErr *entities.ConfigError
	if errors.As(err, &configErr) {
		os.Exit(2)
	}
	os.Exit(1)
}
