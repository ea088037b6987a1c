package split

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/inodb/splitmnp/internal/vcf"
)

// RecordWriter receives the output of a split run in input order.
type RecordWriter interface {
	// WriteLine writes a header or pass-through line verbatim.
	WriteLine(text string) error
	// Write writes a record produced by a split.
	Write(rec *vcf.Record) error
	Flush() error
}

// SiteRecorder is notified of every record that was split, together with
// the single-base records it produced.
type SiteRecorder interface {
	RecordSites(src *vcf.Record, sites []*vcf.Record) error
}

// Stats counts lines by routing decision.
type Stats struct {
	Headers     int
	PassThrough int
	Single      int
	Multi       int
	Emitted     int // single-base records written
}

// Records returns the number of data lines seen.
func (s Stats) Records() int {
	return s.PassThrough + s.Single + s.Multi
}

// Result is the outcome of routing one input line.
type Result struct {
	Line        *vcf.Line
	Disposition Disposition
	Source      *vcf.Record   // parsed record, nil for headers
	Records     []*vcf.Record // emitted records for Single and Multi
}

// Splitter routes VCF lines and decomposes eligible records.
type Splitter struct {
	opts     Options
	workers  int
	logger   *zap.Logger
	recorder SiteRecorder
	samples  []string // sample names from the last #CHROM line written
}

// NewSplitter creates a splitter with the given options.
func NewSplitter(opts Options) *Splitter {
	return &Splitter{
		opts:    opts,
		workers: 1,
		logger:  zap.NewNop(),
	}
}

// SetLogger sets the logger for debug and summary messages.
func (s *Splitter) SetLogger(l *zap.Logger) {
	s.logger = l
}

// SetRecorder registers a recorder that is told about every split record.
func (s *Splitter) SetRecorder(r SiteRecorder) {
	s.recorder = r
}

// SetWorkers sets the number of workers used by Process.
// 1 processes lines sequentially; 0 or less uses runtime.NumCPU().
func (s *Splitter) SetWorkers(n int) {
	s.workers = n
}

// Split routes a parsed record and returns the records it expands to.
// Pass-through records return no records.
func (s *Splitter) Split(rec *vcf.Record) (Disposition, []*vcf.Record, error) {
	d := Classify(rec, s.opts)
	switch d {
	case Single:
		var out []*vcf.Record
		for r := range SplitSingle(rec, s.opts.InfoTag) {
			out = append(out, r)
		}
		return d, out, nil
	case Multi:
		var out []*vcf.Record
		for r, err := range SplitMulti(rec, s.opts.InfoTag) {
			if err != nil {
				return d, nil, err
			}
			out = append(out, r)
		}
		return d, out, nil
	}
	return d, nil, nil
}

// SplitLine routes a raw input line. Header lines are not parsed.
func (s *Splitter) SplitLine(line *vcf.Line) (Result, error) {
	if line.IsHeader() {
		return Result{Line: line, Disposition: Header}, nil
	}

	rec, err := vcf.ParseRecord(line.Text, line.Number)
	if err != nil {
		return Result{}, err
	}

	d, records, err := s.Split(rec)
	if err != nil {
		return Result{}, fmt.Errorf("split %s:%d at line %d: %w", rec.Chrom, rec.Pos, line.Number, err)
	}

	return Result{Line: line, Disposition: d, Source: rec, Records: records}, nil
}

// Process reads every line from src and writes the split output to w.
// Output order always follows input order, whatever the worker count.
func (s *Splitter) Process(src vcf.LineSource, w RecordWriter) (Stats, error) {
	var stats Stats
	var err error
	s.samples = nil
	if s.workers == 1 {
		err = s.processSequential(src, w, &stats)
	} else {
		err = s.processParallel(src, w, &stats)
	}
	if err != nil {
		// Lines before the failing one are complete; keep them.
		if ferr := w.Flush(); ferr != nil {
			return stats, errors.Join(err, fmt.Errorf("flush output: %w", ferr))
		}
		return stats, err
	}

	if err := w.Flush(); err != nil {
		return stats, fmt.Errorf("flush output: %w", err)
	}

	s.logger.Info("split complete",
		zap.Int("records", stats.Records()),
		zap.Int("headers", stats.Headers),
		zap.Int("pass_through", stats.PassThrough),
		zap.Int("single", stats.Single),
		zap.Int("multi", stats.Multi),
		zap.Int("emitted", stats.Emitted))

	return stats, nil
}

func (s *Splitter) processSequential(src vcf.LineSource, w RecordWriter, stats *Stats) error {
	for {
		line, err := src.Next()
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}
		if line == nil {
			return nil
		}

		res, err := s.SplitLine(line)
		if err != nil {
			return s.nameSample(err)
		}
		if err := s.emit(res, w, stats); err != nil {
			return err
		}
	}
}

func (s *Splitter) processParallel(src vcf.LineSource, w RecordWriter, stats *Stats) error {
	items := make(chan WorkItem, 2*s.workerCount())
	stop := make(chan struct{})
	var stopOnce sync.Once
	halt := func() { stopOnce.Do(func() { close(stop) }) }

	var readErr error
	go func() {
		defer close(items)
		seq := 0
		for {
			line, err := src.Next()
			if err != nil {
				readErr = fmt.Errorf("read line: %w", err)
				return
			}
			if line == nil {
				return
			}
			select {
			case items <- WorkItem{Seq: seq, Line: line}:
				seq++
			case <-stop:
				return
			}
		}
	}()

	results := s.ParallelSplit(items)

	if err := OrderedCollect(results, func(r WorkResult) error {
		if r.Err != nil {
			halt()
			return s.nameSample(r.Err)
		}
		if err := s.emit(r.Result, w, stats); err != nil {
			halt()
			return err
		}
		return nil
	}); err != nil {
		return err
	}

	return readErr
}

// nameSample labels a genotype error with the sample's header name.
func (s *Splitter) nameSample(err error) error {
	var ge *GenotypeError
	if errors.As(err, &ge) && ge.Name == "" && ge.Sample < len(s.samples) {
		ge.Name = s.samples[ge.Sample]
	}
	return err
}

// emit writes one routed line and updates the run statistics.
func (s *Splitter) emit(res Result, w RecordWriter, stats *Stats) error {
	switch res.Disposition {
	case Header:
		stats.Headers++
		if names := res.Line.SampleNames(); names != nil {
			s.samples = names
		}
	case PassThrough:
		stats.PassThrough++
	case Single:
		stats.Single++
	case Multi:
		stats.Multi++
	}

	if res.Disposition == Header || res.Disposition == PassThrough {
		if err := w.WriteLine(res.Line.Text); err != nil {
			return fmt.Errorf("write line %d: %w", res.Line.Number, err)
		}
		return nil
	}

	s.logger.Debug("split record",
		zap.String("chrom", res.Source.Chrom),
		zap.Int64("pos", res.Source.Pos),
		zap.String("ref", res.Source.Ref),
		zap.String("alt", res.Source.Alt()),
		zap.Stringer("disposition", res.Disposition),
		zap.Int("sites", len(res.Records)))

	for _, rec := range res.Records {
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write record %s:%d: %w", rec.Chrom, rec.Pos, err)
		}
	}
	stats.Emitted += len(res.Records)

	if s.recorder != nil {
		if err := s.recorder.RecordSites(res.Source, res.Records); err != nil {
			return fmt.Errorf("record sites: %w", err)
		}
	}
	return nil
}
