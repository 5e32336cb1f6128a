package cmd

import (
	"github.com/spf13/cobra"

	"github.com/serifhq/bcel-go/cmd/fit"
	priorscmd "github.com/serifhq/bcel-go/cmd/priors"
	"github.com/serifhq/bcel-go/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bcel",
		Short: "Bayesian changepoint effect estimation CLI",
		Long: `bcel fits piecewise-linear dose-response models with unknown
thresholds, combining personal observations with literature priors.`,
	}

	rootCmd.PersistentFlags().BoolVar(&settings.Debug, "debug", settings.Debug, "Enable debug logging")

	rootCmd.AddCommand(
		fit.Command(settings),
		priorscmd.Command(settings),
	)
	return rootCmd
}
