// Package main provides the splitmnp command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// configName is the config file name looked up in the home directory.
const configName = ".splitmnp"

// usageError marks errors caused by bad command-line input.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cmd := newRootCmd(viper.New())
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		var ue *usageError
		if errors.As(err, &ue) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	var cfgFile string

	cmd := &cobra.Command{
		Use:   "splitmnp [input.vcf]",
		Short: "Split MNPs and complex substitutions into single-base VCF records",
		Long: `Rewrite VCF records so that multi-nucleotide polymorphisms and complex
equal-length substitutions become one record per changed base. Sample
genotypes are re-encoded against each new site's alleles. Header lines,
SNVs, indels and records with more than --max-alts ALT alleles are written
unchanged.

Input is read from the given file (plain or gzipped) or standard input.`,
		Example: `  splitmnp calls.vcf > calls.split.vcf
  zcat calls.vcf.gz | splitmnp > calls.split.vcf
  splitmnp --workers 8 --record-db audit.duckdb -o calls.split.vcf calls.vcf.gz`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSplit(cmd, v, args)
		},
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Config file (default: ~/"+configName+".yaml)")
	pf.BoolP("verbose", "v", false, "Log every split record to stderr")

	f := cmd.Flags()
	f.StringP("output", "o", "", "Output file (default: stdout)")
	f.Int("workers", 1, "Number of split workers (0 = number of CPUs)")
	f.String("info-tag", "FromComplex", "INFO flag added to split records")
	f.Int("min-length", 2, "Minimum REF length of a record to split")
	f.Int("max-alts", 3, "Maximum number of ALT alleles of a record to split")
	f.Bool("annotate-header", false, "Declare the INFO flag in the header before #CHROM")
	f.String("record-db", "", "DuckDB file to record the run and every emitted site in")

	v.BindPFlags(f)
	v.BindPFlag("verbose", pf.Lookup("verbose"))

	cmd.AddCommand(newSummaryCmd(v))
	cmd.AddCommand(newConfigCmd(v))

	return cmd
}

// initConfig loads the config file and SPLITMNP_* environment variables.
// A missing default config file is not an error.
func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("SPLITMNP")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// defaultConfigPath returns the path config set writes to when no config
// file was loaded.
func defaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, configName+".yaml"), nil
}

// newLogger builds the stderr logger. Verbose mode logs at debug level in
// the human-readable development format.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}
