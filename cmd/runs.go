package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/site-engine/internal/model"
	"github.com/sells-group/site-engine/internal/store"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect persisted generations",
	Long:  "Commands for listing, viewing, and deleting saved generations.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved generations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("cli"); err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		business, _ := cmd.Flags().GetString("business")
		industry, _ := cmd.Flags().GetString("industry")
		templateID, _ := cmd.Flags().GetString("template")
		limit, _ := cmd.Flags().GetInt("limit")
		offset, _ := cmd.Flags().GetInt("offset")

		gens, err := st.ListGenerations(ctx, store.GenerationFilter{
			BusinessID: business,
			Industry:   industry,
			TemplateID: templateID,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(gens) == 0 {
			fmt.Fprintln(os.Stderr, "No generations found.")
			return nil
		}

		formatGenerationsList(cmd.OutOrStdout(), gens)
		return nil
	},
}

// -- runs show --

var runsShowCmd = &cobra.Command{
	Use:   "show <generation-id>",
	Short: "Show full details of a generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("cli"); err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		gen, err := st.GetGeneration(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "runs show")
		}
		return printJSON(cmd.OutOrStdout(), gen)
	},
}

// -- runs delete --

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <generation-id>",
	Short: "Delete a saved generation",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("cli"); err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.DeleteGeneration(ctx, args[0]); err != nil {
			return eris.Wrap(err, "runs delete")
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate generation statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("cli"); err != nil {
			return err
		}

		st, err := initStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		industry, _ := cmd.Flags().GetString("industry")
		gens, err := st.ListGenerations(ctx, store.GenerationFilter{
			Industry: industry,
			Limit:    10000, // high limit for stats
		})
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		formatGenerationStats(cmd.OutOrStdout(), computeGenerationStats(gens))
		return nil
	},
}

func init() {
	runsListCmd.Flags().String("business", "", "filter by business ID")
	runsListCmd.Flags().String("industry", "", "filter by canonical industry")
	runsListCmd.Flags().String("template", "", "filter by template ID")
	runsListCmd.Flags().Int("limit", 50, "max number of generations to display")
	runsListCmd.Flags().Int("offset", 0, "skip this many generations")

	runsStatsCmd.Flags().String("industry", "", "restrict stats to one canonical industry")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

// generationStats holds aggregate statistics over saved generations.
type generationStats struct {
	Total         int
	ByMatch       map[string]int
	ByTemplate    map[string]int
	AvgQuality    float64
	WithFallbacks int
}

// computeGenerationStats aggregates gens.
func computeGenerationStats(gens []model.Generation) generationStats {
	s := generationStats{
		Total:      len(gens),
		ByMatch:    make(map[string]int),
		ByTemplate: make(map[string]int),
	}

	var quality float64
	for _, g := range gens {
		s.ByMatch[g.Selection.Metadata.TemplateMatch]++
		s.ByTemplate[g.Selection.TemplateID]++
		quality += g.Quality.Total
		if g.Selection.FallbackCount() > 0 {
			s.WithFallbacks++
		}
	}
	if s.Total > 0 {
		s.AvgQuality = quality / float64(s.Total)
	}
	return s
}

// formatGenerationStats writes aggregate stats to w.
func formatGenerationStats(out io.Writer, s generationStats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total generations:\t%d\n", s.Total)
	_, _ = fmt.Fprintf(w, "Industry match:\t%d\n", s.ByMatch[model.MatchIndustry])
	_, _ = fmt.Fprintf(w, "Cluster match:\t%d\n", s.ByMatch[model.MatchCluster])
	_, _ = fmt.Fprintf(w, "Fallback:\t%d\n", s.ByMatch[model.MatchFallback])
	_, _ = fmt.Fprintf(w, "With section fallbacks:\t%d\n", s.WithFallbacks)
	if s.Total > 0 {
		_, _ = fmt.Fprintf(w, "Avg quality:\t%.1f\n", s.AvgQuality)
	}

	ids := make([]string, 0, len(s.ByTemplate))
	for id := range s.ByTemplate {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		_, _ = fmt.Fprintf(w, "  %s:\t%d\n", id, s.ByTemplate[id])
	}
	_ = w.Flush()
}

// formatGenerationsList writes a tabular list of generations to w.
func formatGenerationsList(out io.Writer, gens []model.Generation) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tBUSINESS\tINDUSTRY\tTEMPLATE\tMATCH\tQUALITY\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t--------\t--------\t--------\t-----\t-------\t-------")

	for _, g := range gens {
		business := g.Business
		if business == "" {
			business = g.BusinessID
		}
		if len(business) > 30 {
			business = business[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.1f\t%s\n",
			truncateID(g.ID),
			business,
			g.Industry,
			g.Selection.TemplateID,
			g.Selection.Metadata.TemplateMatch,
			g.Quality.Total,
			g.CreatedAt.Format("2006-01-02 15:04"),
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
