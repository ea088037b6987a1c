package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/inodb/splitmnp/internal/duckdb"
	"github.com/inodb/splitmnp/internal/output"
	"github.com/inodb/splitmnp/internal/split"
	"github.com/inodb/splitmnp/internal/vcf"
)

// splitOptions reads the split settings from flags, config and environment.
func splitOptions(v *viper.Viper) (split.Options, error) {
	opts := split.Options{
		MinLength: v.GetInt("min-length"),
		MaxAlts:   v.GetInt("max-alts"),
		InfoTag:   v.GetString("info-tag"),
	}
	if opts.MinLength < 2 {
		return opts, &usageError{fmt.Errorf("--min-length must be at least 2, got %d", opts.MinLength)}
	}
	if opts.MaxAlts < 1 {
		return opts, &usageError{fmt.Errorf("--max-alts must be at least 1, got %d", opts.MaxAlts)}
	}
	if opts.InfoTag == "" {
		return opts, &usageError{fmt.Errorf("--info-tag must not be empty")}
	}
	return opts, nil
}

func runSplit(cmd *cobra.Command, v *viper.Viper, args []string) error {
	inputPath := "-"
	if len(args) == 1 {
		inputPath = args[0]
	}

	opts, err := splitOptions(v)
	if err != nil {
		return err
	}

	logger, err := newLogger(v.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	var parser *vcf.Parser
	if inputPath == "-" {
		parser, err = vcf.NewParserFromReader(cmd.InOrStdin())
	} else {
		parser, err = vcf.NewParser(inputPath)
	}
	if err != nil {
		return err
	}
	defer parser.Close()

	var out io.Writer = cmd.OutOrStdout()
	if outputFile := v.GetString("output"); outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	writer := output.NewVCFWriter(out)
	if v.GetBool("annotate-header") {
		writer.DeclareInfoTag(opts.InfoTag)
	}

	s := split.NewSplitter(opts)
	s.SetLogger(logger)
	s.SetWorkers(v.GetInt("workers"))

	var (
		store    *duckdb.Store
		recorder *duckdb.Recorder
		runID    int64
	)
	if dbPath := v.GetString("record-db"); dbPath != "" {
		store, err = duckdb.Open(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		fp, err := duckdb.StatFile(inputPath)
		if err != nil {
			return fmt.Errorf("stat input: %w", err)
		}
		runID, err = store.BeginRun(fp)
		if err != nil {
			return err
		}
		recorder = store.NewRecorder(runID)
		s.SetRecorder(recorder)
	}

	stats, err := s.Process(parser, writer)
	if err != nil {
		return err
	}

	if recorder != nil {
		if err := recorder.Flush(); err != nil {
			return fmt.Errorf("record sites: %w", err)
		}
		if err := store.FinishRun(runID, duckdb.RunCounts{
			Headers:     stats.Headers,
			Records:     stats.Records(),
			PassThrough: stats.PassThrough,
			Single:      stats.Single,
			Multi:       stats.Multi,
			Emitted:     stats.Emitted,
		}); err != nil {
			return err
		}
		logger.Info("recorded run", zap.Int64("run_id", runID), zap.String("db", store.Path()))
	}

	return nil
}
