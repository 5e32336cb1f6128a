// Package priors implements the prior catalog inspection subcommands.
package priors

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/serifhq/bcel-go/internal/conf"
	"github.com/serifhq/bcel-go/internal/priors"
)

// Command creates the priors command with list and show subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "priors",
		Short: "Inspect the population prior catalog",
	}
	cmd.AddCommand(listCommand(settings), showCommand(settings))
	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all relationships with priors",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := priors.NewCatalog(settings.Priors.OverlayPath)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RELATIONSHIP\tCURVE\tTIER\tSOURCE")
			for _, key := range catalog.Keys() {
				spec, err := catalog.Get(key)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", key, spec.CurveType, spec.EvidenceTier, spec.Source)
			}
			return w.Flush()
		},
	}
}

func showCommand(settings *conf.Settings) *cobra.Command {
	var windowDays int
	var agg string
	var doseUnit string

	cmd := &cobra.Command{
		Use:   "show [relationship]",
		Short: "Show one prior, optionally rescaled to a dose window",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := priors.NewCatalog(settings.Priors.OverlayPath)
			if err != nil {
				return err
			}
			spec, err := catalog.Get(args[0])
			if err != nil {
				return err
			}
			if windowDays > 0 {
				spec = priors.Rescale(spec, windowDays, agg, doseUnit)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "relationship:  %s\n", priors.NormalizeKey(args[0]))
			fmt.Fprintf(out, "theta:         %.2f ± %.2f %s\n", spec.ThetaMu, spec.ThetaSigma, spec.ThetaUnit)
			fmt.Fprintf(out, "beta below:    %.3f ± %.3f %s (%s)\n", spec.BetaBelowMu, spec.BetaBelowSigma, spec.EffectUnit, spec.PerUnit)
			fmt.Fprintf(out, "beta above:    %.3f ± %.3f %s (%s)\n", spec.BetaAboveMu, spec.BetaAboveSigma, spec.EffectUnit, spec.PerUnit)
			fmt.Fprintf(out, "curve hint:    %s\n", spec.CurveType)
			fmt.Fprintf(out, "evidence tier: %d\n", spec.EvidenceTier)
			fmt.Fprintf(out, "source:        %s\n", spec.Source)
			return nil
		},
	}

	cmd.Flags().IntVar(&windowDays, "window", 0, "Dose window in days to rescale the prior to")
	cmd.Flags().StringVar(&agg, "agg", "sum", "Dose aggregation: sum, mean or max")
	cmd.Flags().StringVar(&doseUnit, "unit", "", "Dose unit, e.g. min when a weekly-hours prior meets minute doses")
	return cmd
}
