// Package cmd provides CLI command implementations.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/osgify/cli/internal/config"
	"github.com/osgify/cli/internal/output"
)

var (
	// Global flags
	configFlag     string
	verboseFlag    bool
	timestampsFlag bool

	// Loaded during PersistentPreRunE. Never nil after initialization.
	userConfig *config.Config
	configPath config.ResolveConfigPathResult
)

// NewRootCmd creates the root command for the osgify CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "osgify",
		Short: "Turn plain jars into OSGi bundles",
		Long: `osgify wraps plain Java archives into OSGi bundles and groups them into
features.

It provides commands to:
  - Build every artifact declared in an osgify.yaml build file
  - Wrap a single jar with ad-hoc bnd instructions
  - Inspect the native and running platform
  - Compare the reports of two builds`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initializeGlobals(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to config file (env: OSGIFY_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&timestampsFlag, "timestamps", true, "Show timestamps in log output")

	rootCmd.AddCommand(NewBuildCmd())
	rootCmd.AddCommand(NewWrapCmd())
	rootCmd.AddCommand(NewPlatformCmd())
	rootCmd.AddCommand(NewReportCmd())
	rootCmd.AddCommand(NewConfigCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

// initializeGlobals sets up logging and loads the user configuration.
func initializeGlobals(cmd *cobra.Command) error {
	resolved, err := config.ResolveConfigPath(config.ResolveConfigPathOptions{
		FlagValue: configFlag,
	})
	if err != nil {
		return err
	}
	configPath = resolved

	loaded, err := config.NewLoader().LoadWithDefaults(resolved.ConfigPath)
	if err != nil {
		output.Debug("config load error", "error", err)
		// Don't fail here - commands still work on defaults
		loaded = config.DefaultConfig()
	}
	userConfig = loaded

	// Timestamps: flag (if explicitly set) > config > default (nil = true)
	logCfg := output.LogConfig{
		Verbose: verboseFlag,
	}
	if cmd.Flags().Changed("timestamps") {
		logCfg.Timestamps = output.BoolPtr(timestampsFlag)
	} else if userConfig.Log.Timestamps != nil {
		logCfg.Timestamps = userConfig.Log.Timestamps
	}
	output.SetupLogging(logCfg)

	output.Debug("initializing CLI",
		"config", resolved.ConfigPath,
		"source", resolved.Source,
		"output", userConfig.Output,
		"qualifier", userConfig.Qualifier.Strategy,
	)

	return nil
}

// GetUserConfig returns the loaded user configuration.
func GetUserConfig() *config.Config {
	if userConfig == nil {
		return config.DefaultConfig()
	}
	return userConfig
}

// GetConfigPath returns the resolved config file path.
func GetConfigPath() string {
	if configPath.ConfigPath != "" {
		return configPath.ConfigPath
	}
	return configFlag
}
