package cmd

import (
	"github.com/spf13/cobra"

	"github.com/osgify/cli/internal/config"
)

// BuildFlags holds the synthesis flags shared by build and wrap.
type BuildFlags struct {
	OutputDir       string
	Workers         int
	RemoveSignature bool
	TolerateErrors  bool
	Store           bool
	Qualifier       string
	QualifierPrefix string
}

// AddTo registers the flags on cmd.
func (f *BuildFlags) AddTo(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.OutputDir, "output", "o", "",
		"Output directory for bundles (env: OSGIFY_OUTPUT)")
	cmd.Flags().IntVar(&f.Workers, "workers", 0,
		"Maximum parallel syntheses (default: one per CPU)")
	cmd.Flags().BoolVar(&f.RemoveSignature, "remove-signature", false,
		"Strip jar signatures before wrapping")
	cmd.Flags().BoolVar(&f.TolerateErrors, "tolerate-errors", false,
		"Report analyzer errors as warnings instead of failing")
	cmd.Flags().BoolVar(&f.Store, "store", false,
		"Write bundle entries without compression")
	cmd.Flags().StringVar(&f.Qualifier, "qualifier", "",
		"Qualifier strategy: contentHash or counter (env: OSGIFY_QUALIFIER_STRATEGY)")
	cmd.Flags().StringVar(&f.QualifierPrefix, "qualifier-prefix", "",
		"Prefix for generated qualifiers")
}

// Apply overlays explicitly set flags onto bf and resolves the output
// directory. Boolean flags only ever switch a behavior on.
func (f *BuildFlags) Apply(cmd *cobra.Command, bf *config.BuildFile) {
	cfg := GetUserConfig()

	output := config.ResolveString(config.ResolveOptions{
		Key:         "output",
		FlagValue:   f.OutputDir,
		EnvVar:      "OSGIFY_OUTPUT",
		BuildValue:  bf.Output,
		ConfigValue: cfg.Output,
		Default:     config.DefaultOutput,
	})
	strategy := config.ResolveString(config.ResolveOptions{
		Key:         "qualifier.strategy",
		FlagValue:   f.Qualifier,
		EnvVar:      "OSGIFY_QUALIFIER_STRATEGY",
		BuildValue:  bf.Qualifier.Strategy,
		ConfigValue: cfg.Qualifier.Strategy,
		Default:     config.StrategyContentHash,
	})
	config.LogResolvedValues([]config.ResolvedValue{output, strategy})

	// Flag values resolve against the working directory, file values
	// against the build file.
	if output.Source == config.SourceFlag || output.Source == config.SourceEnv {
		bf.Output = absPath(output.Value.(string))
	} else {
		bf.Output = output.Value.(string)
	}
	bf.Qualifier.Strategy = strategy.Value.(string)

	if f.QualifierPrefix != "" {
		bf.Qualifier.Prefix = f.QualifierPrefix
	}
	if cmd.Flags().Changed("workers") {
		bf.Workers = f.Workers
	}
	if f.RemoveSignature {
		bf.RemoveSignature = true
	}
	if f.TolerateErrors {
		bf.TolerateErrors = true
	}
	if f.Store {
		bf.Uncompressed = true
	}
}
