package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	service "github.com/okian/jobchanges/internal/app"
	"github.com/okian/jobchanges/internal/domain/pipeline"
	"github.com/okian/jobchanges/internal/domain/types"
)

// Output formats of the report command.
const (
	formatText = "text"
	formatJSON = "json"
)

// defaultReportTopN matches the ranking size of the plotted report.
const defaultReportTopN = 10

type reportOptions struct {
	*rootOptions
	dataPath string
	top      int
	year     int
	format   string
}

func newReportCmd(root *rootOptions) *cobra.Command {
	opts := &reportOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the rankings and the weekly series",
		Long: `Load the data file once and print the top companies and job functions
by departures and the weekly arrivals-vs-departures series.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReport(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&opts.dataPath, "data", "", "CSV data file")
	cmd.Flags().IntVar(&opts.top, "top", defaultReportTopN, "ranking size")
	cmd.Flags().IntVar(&opts.year, "year", 0, "target year of the weekly series (default from config)")
	cmd.Flags().StringVar(&opts.format, "format", formatText, "output format: text or json")
	return cmd
}

func runReport(ctx context.Context, opts *reportOptions, out, errOut io.Writer) error {
	if opts.format != formatText && opts.format != formatJSON {
		return fmt.Errorf("unknown format %q; want %s or %s", opts.format, formatText, formatJSON)
	}
	cfg, err := opts.loadConfig(ctx)
	if err != nil {
		return err
	}
	if opts.dataPath != "" {
		cfg.DataPath = opts.dataPath
	}
	log, err := initLogging(ctx, errOut, cfg)
	if err != nil {
		return err
	}

	maxTopN := cfg.MaxTopN
	if opts.top > maxTopN {
		maxTopN = opts.top
	}
	svc := service.New(
		service.WithLogger(log.Named("service")),
		service.WithDataPath(cfg.DataPath),
		service.WithDefaults(cfg.TopN, cfg.TargetYear),
		service.WithMaxTopN(maxTopN),
	)
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start service: %w", err)
	}
	defer svc.Stop()

	rep, err := svc.Report(ctx, pipeline.Params{TopN: opts.top, TargetYear: opts.year})
	if err != nil {
		return err
	}
	if opts.format == formatJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep.View())
	}
	return writeText(out, rep.View())
}

// writeText renders the report as aligned plain-text tables.
func writeText(out io.Writer, v types.ReportView) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if v.SourceMissing {
		fmt.Fprintf(tw, "%s\n\n", v.Notice)
	} else {
		fmt.Fprintf(tw, "Source: %s (%d rows)\n\n", v.Source.Path, v.Source.Rows)
	}

	writeRanking(tw, "companies", v.Companies)
	writeRanking(tw, "job functions", v.Functions)

	fmt.Fprintf(tw, "Weekly arrivals vs departures (%d)\n", v.Weekly.Year)
	if v.Weekly.Empty {
		fmt.Fprintf(tw, "  %s\n", v.Weekly.Message)
	} else {
		fmt.Fprint(tw, "  week")
		for _, typ := range v.Weekly.Types {
			fmt.Fprintf(tw, "\t%s", typ)
		}
		fmt.Fprintln(tw)
		// Points are dense and ordered by week, then type.
		for i := 0; i+len(v.Weekly.Types) <= len(v.Weekly.Points); i += len(v.Weekly.Types) {
			fmt.Fprintf(tw, "  %s", v.Weekly.Points[i].Week)
			for _, p := range v.Weekly.Points[i : i+len(v.Weekly.Types)] {
				fmt.Fprintf(tw, "\t%d", p.Count)
			}
			fmt.Fprintln(tw)
		}
	}
	fmt.Fprintf(tw, "\nRecords: %d (arrivals %d, departures %d, unknown type %d, without event time %d)\n",
		v.Stats.Records, v.Stats.Arrivals, v.Stats.Departures, v.Stats.UnknownType, v.Stats.MissingEventTime)
	return tw.Flush()
}

func writeRanking(tw *tabwriter.Writer, what string, r types.RankingView) {
	fmt.Fprintf(tw, "Top %d %s by departures\n", r.TopN, what)
	if r.Empty {
		fmt.Fprintf(tw, "  %s\n\n", r.Message)
		return
	}
	// Rendered largest first; entries are stored count ascending.
	for i := len(r.Entries) - 1; i >= 0; i-- {
		e := r.Entries[i]
		fmt.Fprintf(tw, "  %s\t%s\n", e.Label, strconv.Itoa(e.Count))
	}
	fmt.Fprintln(tw)
}
