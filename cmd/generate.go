package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/okian/jobchanges/internal/config"
	"github.com/okian/jobchanges/internal/sampledata"
	"github.com/okian/jobchanges/pkg/logger"
)

const defaultGenerateRows = 5000

type generateOptions struct {
	*rootOptions
	rows int
	out  string
	year int
	seed uint64
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{rootOptions: root}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Write a synthetic job changes CSV",
		Long: `Write a synthetic dataset in the source schema for demos and tests. The
rows include unknown type labels, blank categories, missing and junk
timestamps, and timestamps with offsets.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd.Context(), opts, cmd.ErrOrStderr(), cmd.Flags().Changed("seed"))
		},
	}
	cmd.Flags().IntVar(&opts.rows, "rows", defaultGenerateRows, "number of rows")
	cmd.Flags().StringVar(&opts.out, "out", config.DefaultDataPath, "output CSV path")
	cmd.Flags().IntVar(&opts.year, "year", config.DefaultTargetYear, "year most event times fall in")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed for reproducible output")
	return cmd
}

func runGenerate(ctx context.Context, opts *generateOptions, errOut io.Writer, seeded bool) error {
	cfg, err := opts.loadConfig(ctx)
	if err != nil {
		return err
	}
	log, err := initLogging(ctx, errOut, cfg)
	if err != nil {
		return err
	}

	genOpts := []sampledata.Option{
		sampledata.WithYear(opts.year),
		sampledata.WithLogger(log.Named("generate")),
	}
	if seeded {
		genOpts = append(genOpts, sampledata.WithSeed(opts.seed))
	}
	st, err := sampledata.New(genOpts...).WriteFile(ctx, opts.out, opts.rows)
	if err != nil {
		return fmt.Errorf("failed to generate %s: %w", opts.out, err)
	}
	log.Info(ctx, "wrote sample data", logger.String("path", opts.out), logger.Int("rows", st.Rows))
	return nil
}
