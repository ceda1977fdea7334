package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/paxcol"
	"github.com/hupe1980/paxcol/column"
	"github.com/hupe1980/paxcol/metric"
	"github.com/hupe1980/paxcol/rowgroup"
	"github.com/hupe1980/paxcol/toast"
)

type flags struct {
	config  string
	format  string
	strict  bool
	workers int
	metrics bool
}

func newRootCmd() *cobra.Command {
	var f flags

	root := &cobra.Command{
		Use:           "paxinspect",
		Short:         "Inspect PAX row group layouts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&f.config, "config", "c", "", "Path to a YAML config with the fields section")
	root.PersistentFlags().StringVar(&f.format, "format", "", "Storage format override (orc or vec)")
	root.PersistentFlags().BoolVar(&f.strict, "strict", false, "Verify external toast accounting after flush")

	inspect := &cobra.Command{
		Use:   "inspect [files...]",
		Short: "Build one stripe per JSON-lines file and print its layout",
		Long: `Each input line is a JSON object keyed by field name. Missing keys and
null values are stored as nulls.

Example:
  paxinspect inspect --config schema.yaml rows.jsonl`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			return runInspect(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, args, f)
		},
	}
	inspect.Flags().IntVar(&f.workers, "workers", runtime.NumCPU(), "Number of files processed concurrently")
	inspect.Flags().BoolVar(&f.metrics, "metrics", false, "Print collected counters after the run")
	root.AddCommand(inspect)

	root.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(f)
			if err != nil {
				return err
			}
			b, err := cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	})
	return root
}

func loadConfig(f flags) (paxcol.Config, error) {
	cfg := paxcol.DefaultConfig()
	if f.config != "" {
		var err error
		if cfg, err = paxcol.LoadConfig(f.config); err != nil {
			return paxcol.Config{}, fmt.Errorf("load config: %w", err)
		}
	}
	if f.format != "" {
		cfg.Format = f.format
	}
	if f.strict {
		cfg.Strict = true
	}
	if _, err := cfg.Options(); err != nil {
		return paxcol.Config{}, err
	}
	return cfg, nil
}

// Report summarizes one input file.
type Report struct {
	File   string          `json:"file"`
	Rows   int             `json:"rows"`
	Bytes  int             `json:"bytes"`
	Arena  int             `json:"arena_bytes"`
	Toast  toast.Stats     `json:"toast"`
	Layout rowgroup.Layout `json:"layout"`
}

func runInspect(ctx context.Context, stdout, stderr io.Writer, cfg paxcol.Config, files []string, f flags) error {
	if ctx == nil {
		ctx = context.Background()
	}
	schema, err := cfg.Schema()
	if err != nil {
		return err
	}
	format, err := cfg.StorageFormat()
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	opts = append(opts, paxcol.WithLogger(paxcol.NewLogger(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))))

	reg := prometheus.NewRegistry()
	collector, err := metric.NewPrometheusCollector(reg, "paxinspect")
	if err != nil {
		return err
	}
	opts = append(opts, paxcol.WithMetricsCollector(collector))

	reports := make([]Report, len(files))
	g, ctx := errgroup.WithContext(ctx)
	if f.workers > 0 {
		g.SetLimit(f.workers)
	}
	for i, path := range files {
		g.Go(func() error {
			r, err := inspectFile(ctx, path, format, schema, cfg.Fields, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	for _, r := range reports {
		if err := enc.Encode(r); err != nil {
			return err
		}
	}
	if f.metrics {
		return printMetrics(stdout, reg)
	}
	return nil
}

func inspectFile(ctx context.Context, path string, format column.Format, schema paxcol.Schema, fields []paxcol.FieldConfig, opts []paxcol.Option) (Report, error) {
	file, err := os.Open(path)
	if err != nil {
		return Report{}, err
	}
	defer file.Close()

	w, err := paxcol.NewWriter(format, schema, opts...)
	if err != nil {
		return Report{}, err
	}
	if err := readRows(file, fields, w.AppendRow); err != nil {
		return Report{}, err
	}
	stripe, err := w.Flush(ctx)
	if err != nil {
		return Report{}, err
	}
	// Decode once so layout mistakes surface as errors here.
	if _, err := paxcol.OpenReader(ctx, stripe, schema, opts...); err != nil {
		return Report{}, fmt.Errorf("reopen stripe: %w", err)
	}
	return Report{
		File:   path,
		Rows:   stripe.Rows,
		Bytes:  len(stripe.Data),
		Arena:  len(stripe.Arena),
		Toast:  w.ToastStats(),
		Layout: stripe.Layout,
	}, nil
}

func printMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			c := m.GetCounter()
			if c == nil {
				continue
			}
			labels := ""
			for _, lp := range m.GetLabel() {
				labels += fmt.Sprintf(" %s=%s", lp.GetName(), lp.GetValue())
			}
			if _, err := fmt.Fprintf(out, "%s%s %g\n", mf.GetName(), labels, c.GetValue()); err != nil {
				return err
			}
		}
	}
	return nil
}
