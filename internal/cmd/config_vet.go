package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/osgify/cli/internal/config"
	oerrors "github.com/osgify/cli/internal/errors"
	"github.com/osgify/cli/internal/output"
)

// NewConfigVetCmd creates the config vet command.
func NewConfigVetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vet [build-file]",
		Short: "Validate configuration and a build file",
		Long: `Validate the osgify user configuration and a build file.

Checks performed:
  1. The user config file, when present, parses
  2. The build file exists
  3. The build file matches the schema (fields, types, strategies)
  4. Versions, platforms and feature IDs are well-formed

The config path is resolved using precedence:
  --config flag > OSGIFY_CONFIG env > ~/.osgify/config.yaml

Examples:
  # Validate ./osgify.yaml
  osgify config vet

  # Validate a specific build file
  osgify config vet ci/osgify.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConfigVet,
	}

	return cmd
}

func runConfigVet(cmd *cobra.Command, args []string) error {
	configPath := GetConfigPath()
	if configPath == "" {
		resolved, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{})
		if err != nil {
			return oerrors.Wrap(oerrors.ErrNotFound, "could not resolve config path")
		}
		configPath = resolved.ConfigPath
	}

	// Check 1: user config parses when present
	exists, err := config.ConfigFileExists(configPath)
	if err != nil {
		return err
	}
	if exists {
		if _, err := config.NewLoader().Load(configPath); err != nil {
			return &oerrors.DetailError{
				Type:     "validation failed",
				Message:  err.Error(),
				Location: configPath,
				Hint:     "Run 'osgify config init --force' to regenerate the configuration",
				Cause:    oerrors.ErrValidation,
			}
		}
		output.Println(output.FormatVetCheck("Config file parsed", configPath))
	} else {
		output.Println(output.FormatVetCheck("Config file absent", "using defaults"))
	}

	// Check 2: build file exists
	buildPath := config.DefaultBuildFile
	if len(args) > 0 {
		buildPath = args[0]
	}
	if _, err := os.Stat(buildPath); os.IsNotExist(err) {
		return oerrors.NewNotFoundError("build file not found", buildPath, "Pass the build file path as argument")
	}

	// Check 3 & 4: schema and value checks
	validator, err := config.NewValidator()
	if err != nil {
		return err
	}
	if err := validator.ValidateFile(buildPath); err != nil {
		return err
	}
	output.Println(output.FormatVetCheck("Build file valid", buildPath))

	bf, err := config.LoadBuildFile(buildPath)
	if err != nil {
		return err
	}
	output.Println(output.FormatVetCheck("Artifacts declared", fmt.Sprintf("%d", len(bf.Artifacts))))
	output.Println(output.FormatVetCheck("Features declared", fmt.Sprintf("%d", len(bf.Features))))

	return nil
}
