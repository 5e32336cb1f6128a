// Package fit implements the batch fitting subcommand.
package fit

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/serifhq/bcel-go/internal/conf"
	"github.com/serifhq/bcel-go/internal/logging"
	"github.com/serifhq/bcel-go/internal/observability"
	"github.com/serifhq/bcel-go/internal/priors"
	"github.com/serifhq/bcel-go/internal/runner"
)

// Command creates the fit command for running a batch of requests.
func Command(settings *conf.Settings) *cobra.Command {
	var inputPath string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit changepoint models for a batch of relationships",
		Long: `Reads a JSON array of fit requests, estimates each relationship's
posterior, and writes the assessments as JSON.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir != "" {
				settings.Output.Directory = outputDir
			}
			return runFit(cmd, settings, inputPath)
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Path to requests JSON file")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for assessments")
	cmd.Flags().StringVar(&settings.Fit.Method, "method", settings.Fit.Method, "Fit method: grid, laplace or mcmc")
	cmd.Flags().Uint64Var(&settings.Fit.Seed, "seed", settings.Fit.Seed, "Base random seed")
	cmd.Flags().IntVar(&settings.Fit.MaxWorkers, "workers", settings.Fit.MaxWorkers, "Concurrent fits, 0 means all cores")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runFit(cmd *cobra.Command, settings *conf.Settings, inputPath string) error {
	log := logging.ForService("fit")

	requests, err := runner.LoadRequests(inputPath)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		return fmt.Errorf("no requests in %s", inputPath)
	}

	catalog, err := priors.NewCatalog(settings.Priors.OverlayPath)
	if err != nil {
		return err
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return err
	}

	r, err := runner.New(catalog, settings, metrics)
	if err != nil {
		return err
	}

	log.Info("starting batch", "requests", len(requests), "method", settings.Fit.Method)
	results := r.Run(cmd.Context(), requests)

	failed := 0
	for i := range results {
		if results[i].Error != "" {
			failed++
		}
	}

	out := runner.NewRunOutput(settings.Main.Name, results)
	path, err := out.Write(settings.Output.Directory, settings.Output.Pretty)
	if err != nil {
		return err
	}

	log.Info("batch complete", "fitted", len(results)-failed, "failed", failed, "output", path)
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d assessments (%d failed) to %s\n",
		len(results)-failed, failed, path)
	return nil
}
