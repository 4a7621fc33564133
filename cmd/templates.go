package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/site-engine/internal/template"
)

var templatesRegistry string

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect the template registry",
}

// -- templates validate --

var templatesValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the registry and fail on any misconfiguration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := template.Load(registryPath())
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "registry %s OK: %d templates, %d clusters, %d renderers\n",
			reg.Version, len(reg.Templates), len(reg.Clusters), reg.RendererRegistry().Len())
		return nil
	},
}

// -- templates list --

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered templates",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := template.Load(registryPath())
		if err != nil {
			return err
		}
		formatTemplates(cmd.OutOrStdout(), reg)
		return nil
	},
}

func init() {
	templatesCmd.PersistentFlags().StringVar(&templatesRegistry, "registry", "", "registry YAML path (default from config, else built in)")
	templatesCmd.AddCommand(templatesValidateCmd)
	templatesCmd.AddCommand(templatesListCmd)
	rootCmd.AddCommand(templatesCmd)
}

func registryPath() string {
	if templatesRegistry != "" {
		return templatesRegistry
	}
	return cfg.Registry.Path
}

// formatTemplates writes a tabular list of templates to out.
func formatTemplates(out io.Writer, reg *template.Registry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tINDUSTRIES\tMIN_QUALITY\tSECTIONS")
	_, _ = fmt.Fprintln(w, "--\t----------\t-----------\t--------")
	for _, t := range reg.Templates {
		industries := "any"
		if len(t.Industries) > 0 {
			industries = strings.Join(t.Industries, ",")
		}
		sections := make([]string, len(t.Sections))
		for i, s := range t.Sections {
			sections[i] = s.Name
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%.0f\t%s\n", t.ID, industries, t.MinQuality, strings.Join(sections, ","))
	}
	_ = w.Flush()
}
