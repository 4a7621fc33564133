package main

import (
	"github.com/spf13/cobra"

	"github.com/sells-group/site-engine/internal/engine"
	"github.com/sells-group/site-engine/internal/model"
	"github.com/sells-group/site-engine/internal/profile"
)

var (
	signalsProfile  string
	signalsIndustry string
	signalsNow      string
)

var signalsCmd = &cobra.Command{
	Use:   "signals",
	Short: "Resolve hours, age, service area and climate for a profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		e, err := initEngine(cfg, "cli")
		if err != nil {
			return err
		}
		p, err := profile.LoadFile(signalsProfile)
		if err != nil {
			return err
		}
		now, err := parseNow(signalsNow)
		if err != nil {
			return err
		}

		industry, err := resolveIndustry(e, p, signalsIndustry)
		if err != nil {
			return err
		}
		sig, err := e.Signals(p, industry, now)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), sig)
	},
}

func init() {
	signalsCmd.Flags().StringVar(&signalsProfile, "profile", "", "path to a business profile JSON file (required)")
	signalsCmd.Flags().StringVar(&signalsIndustry, "industry", "", "industry override (default: profile category)")
	signalsCmd.Flags().StringVar(&signalsNow, "now", "", "evaluate at this RFC 3339 instant (default: current time)")
	_ = signalsCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(signalsCmd)
}

// resolveIndustry canonicalizes an explicit industry, falling back to the
// profile category.
func resolveIndustry(e *engine.Engine, p model.BusinessProfile, explicit string) (string, error) {
	ds, err := e.Cache().Get()
	if err != nil {
		return "", err
	}
	return engine.ResolveIndustry(p, model.BusinessAttributes{Industry: explicit}, ds), nil
}
