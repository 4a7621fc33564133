package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/site-engine/internal/engine"
	"github.com/sells-group/site-engine/internal/model"
	"github.com/sells-group/site-engine/internal/profile"
)

var (
	generateProfile    string
	generateAttributes string
	generateNow        string
	generateSave       bool
	generateOutput     string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Select a template and section variants for a profile",
	Example: `  site-engine generate --profile plumber.json
  site-engine generate --profile plumber.json --attributes answers.json --save
  site-engine generate --profile plumber.json --output generation.json`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		e, err := initEngine(cfg, "cli")
		if err != nil {
			return err
		}
		req, err := buildRequest(generateProfile, generateAttributes, generateNow)
		if err != nil {
			return err
		}

		gen, err := e.Generate(req)
		if err != nil {
			return err
		}

		if generateSave {
			st, err := initStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.SaveGeneration(ctx, gen); err != nil {
				return eris.Wrap(err, "generate: save")
			}
			zap.L().Info("generation saved", zap.String("id", gen.ID))
		}

		if generateOutput == "" {
			return printJSON(cmd.OutOrStdout(), gen)
		}
		f, err := os.Create(generateOutput)
		if err != nil {
			return eris.Wrap(err, "generate: create output")
		}
		defer f.Close() //nolint:errcheck
		return printJSON(f, gen)
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateProfile, "profile", "", "path to a business profile JSON file (required)")
	generateCmd.Flags().StringVar(&generateAttributes, "attributes", "", "path to a business attributes JSON file")
	generateCmd.Flags().StringVar(&generateNow, "now", "", "evaluate at this RFC 3339 instant (default: current time)")
	generateCmd.Flags().BoolVar(&generateSave, "save", false, "persist the generation to the configured store")
	generateCmd.Flags().StringVar(&generateOutput, "output", "", "write JSON to file (default: stdout)")
	_ = generateCmd.MarkFlagRequired("profile")
	rootCmd.AddCommand(generateCmd)
}

// buildRequest loads the profile and optional attributes into a request.
func buildRequest(profilePath, attributesPath, nowFlag string) (engine.Request, error) {
	p, err := profile.LoadFile(profilePath)
	if err != nil {
		return engine.Request{}, err
	}
	attrs, err := loadAttributes(attributesPath)
	if err != nil {
		return engine.Request{}, err
	}
	now, err := parseNow(nowFlag)
	if err != nil {
		return engine.Request{}, err
	}
	return engine.Request{Profile: p, Attributes: attrs, Now: now}, nil
}

func loadAttributes(path string) (model.BusinessAttributes, error) {
	if path == "" {
		return model.BusinessAttributes{}, nil
	}
	return profile.LoadAttributesFile(path)
}
