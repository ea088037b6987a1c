package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/splitmnp/internal/duckdb"
)

func newSummaryCmd(v *viper.Viper) *cobra.Command {
	var runID int64
	var at string

	cmd := &cobra.Command{
		Use:   "summary <record-db>",
		Short: "Summarise runs recorded with --record-db",
		Long: `Print recorded runs and per-chromosome counts of split blocks and emitted sites.
With --at, print the sites emitted for the source record at chrom:pos instead.`,
		Example: `  splitmnp --record-db audit.duckdb calls.vcf > calls.split.vcf
  splitmnp summary audit.duckdb
  splitmnp summary --run 2 audit.duckdb
  splitmnp summary --at 2:500 audit.duckdb`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var chrom string
			var pos int64
			if at != "" {
				var err error
				if chrom, pos, err = parseLocus(at); err != nil {
					return &usageError{err}
				}
			}

			store, err := duckdb.Open(args[0])
			if err != nil {
				return err
			}
			defer store.Close()

			if at != "" {
				return writeSources(cmd.OutOrStdout(), store, chrom, pos, runID)
			}
			return writeSummary(cmd.OutOrStdout(), store, runID)
		},
	}

	cmd.Flags().Int64Var(&runID, "run", 0, "Only count sites of this run (default: all runs)")
	cmd.Flags().StringVar(&at, "at", "", "Show the sites split from the source record at chrom:pos")

	return cmd
}

func writeSummary(w io.Writer, store *duckdb.Store, runID int64) error {
	runs, err := store.Runs()
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "#run\tinput\tstarted\trecords\tpass_through\tsingle\tmulti\temitted")
	for _, r := range runs {
		if runID != 0 && r.ID != runID {
			continue
		}
		status := fmt.Sprintf("%d\t%d\t%d\t%d\t%d", r.Counts.Records, r.Counts.PassThrough,
			r.Counts.Single, r.Counts.Multi, r.Counts.Emitted)
		if r.Finished.IsZero() {
			status = "incomplete\t-\t-\t-\t-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.Input.Path,
			r.Started.Format("2006-01-02T15:04:05Z"), status)
	}

	counts, err := store.CountByChrom(runID)
	if err != nil {
		return err
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "#chrom\tblocks\tsites")
	for _, c := range counts {
		fmt.Fprintf(w, "%s\t%d\t%d\n", c.Chrom, c.Blocks, c.Sites)
	}
	return nil
}

// parseLocus parses a chrom:pos argument. The position is the last
// colon-separated field so contig names may contain colons.
func parseLocus(s string) (string, int64, error) {
	i := strings.LastIndexByte(s, ':')
	if i <= 0 {
		return "", 0, fmt.Errorf("invalid locus %q, want chrom:pos", s)
	}
	pos, err := strconv.ParseInt(s[i+1:], 10, 64)
	if err != nil || pos < 1 {
		return "", 0, fmt.Errorf("invalid position in locus %q", s)
	}
	return s[:i], pos, nil
}

func writeSources(w io.Writer, store *duckdb.Store, chrom string, pos, runID int64) error {
	sites, err := store.LookupSource(chrom, pos)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, "#run\tsrc_chrom\tsrc_pos\tsrc_ref\tsrc_alt\tpos\tref\talt\tgenotypes_rewritten")
	for _, r := range sites {
		if runID != 0 && r.RunID != runID {
			continue
		}
		fmt.Fprintf(w, "%d\t%s\t%d\t%s\t%s\t%d\t%s\t%s\t%t\n",
			r.RunID, r.SrcChrom, r.SrcPos, r.SrcRef, r.SrcAlt, r.Pos, r.Ref, r.Alt, r.GenotypesRewritten)
	}
	return nil
}
