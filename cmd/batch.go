package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/site-engine/internal/engine"
	"github.com/sells-group/site-engine/internal/export"
	"github.com/sells-group/site-engine/internal/model"
	"github.com/sells-group/site-engine/internal/profile"
	"github.com/sells-group/site-engine/internal/store"
)

var (
	batchInput      string
	batchAttributes string
	batchFormat     string
	batchOutput     string
	batchNow        string
	batchLimit      int
	batchSave       bool
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Generate sites for a directory or JSONL file of profiles",
	Example: `  site-engine batch --input profiles/ --format csv --output results.csv
  site-engine batch --input profiles.jsonl --attributes answers.json --format xlsx --output results.xlsx`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		format, err := export.ParseFormat(batchFormat)
		if err != nil {
			return err
		}
		if format == export.FormatXLSX && batchOutput == "" {
			return eris.New("batch: --output is required for xlsx")
		}

		e, err := initEngine(cfg, "batch")
		if err != nil {
			return err
		}
		entries, err := profile.Load(batchInput)
		if err != nil {
			return err
		}
		attrs, err := loadAttributes(batchAttributes)
		if err != nil {
			return err
		}
		now, err := parseNow(batchNow)
		if err != nil {
			return err
		}

		var st store.Store
		if batchSave {
			st, err = initStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		results, err := processBatch(ctx, e, st, entries, batchOptions{
			attributes:  attrs,
			now:         now,
			limit:       batchLimit,
			concurrency: cfg.Batch.MaxConcurrent,
		})
		if err != nil {
			return err
		}

		var out io.Writer = cmd.OutOrStdout()
		if batchOutput != "" {
			f, err := os.Create(batchOutput)
			if err != nil {
				return eris.Wrap(err, "batch: create output")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		return export.Write(out, format, results)
	},
}

func init() {
	batchCmd.Flags().StringVar(&batchInput, "input", "", "profile directory, JSONL file or single JSON file (required)")
	batchCmd.Flags().StringVar(&batchAttributes, "attributes", "", "attributes JSON file applied to every profile")
	batchCmd.Flags().StringVar(&batchFormat, "format", "csv", "output format: csv, xlsx or json")
	batchCmd.Flags().StringVar(&batchOutput, "output", "", "write results to file (default: stdout)")
	batchCmd.Flags().StringVar(&batchNow, "now", "", "evaluate at this RFC 3339 instant (default: current time)")
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max profiles to process (0 = all)")
	batchCmd.Flags().BoolVar(&batchSave, "save", false, "persist each generation to the configured store")
	_ = batchCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(batchCmd)
}

type batchOptions struct {
	attributes  model.BusinessAttributes
	now         time.Time
	limit       int
	concurrency int
}

// processBatch generates every loadable entry concurrently. Results keep
// input order; per-entry failures are recorded, not returned. A nil store
// skips persistence.
func processBatch(ctx context.Context, e *engine.Engine, st store.Store, entries []profile.Entry, opts batchOptions) ([]export.Result, error) {
	if opts.limit > 0 && len(entries) > opts.limit {
		entries = entries[:opts.limit]
	}
	concurrency := opts.concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	zap.L().Info("processing batch",
		zap.Int("profiles", len(entries)),
		zap.Int("concurrency", concurrency),
	)

	results := make([]export.Result, len(entries))
	var succeeded, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, entry := range entries {
		g.Go(func() error {
			results[i] = export.Result{Source: entry.Source}
			if entry.Err != nil {
				failed.Add(1)
				results[i].Err = entry.Err
				return nil
			}
			if err := gctx.Err(); err != nil {
				return err
			}

			log := zap.L().With(zap.String("source", entry.Source))
			gen, err := e.Generate(engine.Request{
				Profile:    entry.Profile,
				Attributes: opts.attributes,
				Now:        opts.now,
			})
			if err != nil {
				failed.Add(1)
				results[i].Err = err
				log.Error("generation failed", zap.Error(err))
				return nil // don't abort batch on individual failure
			}
			if st != nil {
				if err := st.SaveGeneration(gctx, gen); err != nil {
					failed.Add(1)
					results[i].Err = eris.Wrap(err, "batch: save")
					log.Error("save failed", zap.Error(err))
					return nil
				}
			}

			succeeded.Add(1)
			results[i].Generation = gen
			log.Debug("generation complete",
				zap.String("template_id", gen.Selection.TemplateID),
				zap.Float64("quality", gen.Quality.Total),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "batch processing")
	}

	zap.L().Info("batch complete",
		zap.Int64("succeeded", succeeded.Load()),
		zap.Int64("failed", failed.Load()),
	)
	return results, nil
}
