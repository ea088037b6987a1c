package split

import (
	"runtime"
	"sync"

	"github.com/inodb/splitmnp/internal/vcf"
)

// WorkItem is one input line tagged with its position in the stream.
type WorkItem struct {
	Seq  int
	Line *vcf.Line
}

// WorkResult is the routed outcome of a WorkItem.
type WorkResult struct {
	Seq int
	Result
	Err error
}

// workerCount resolves the configured worker count, mapping 0 or less to
// one worker per CPU.
func (s *Splitter) workerCount() int {
	if s.workers <= 0 {
		return runtime.NumCPU()
	}
	return s.workers
}

// ParallelSplit routes lines from items on the splitter's worker pool.
// Results arrive in completion order; pass them through OrderedCollect to
// restore input order. The returned channel closes once items is drained.
func (s *Splitter) ParallelSplit(items <-chan WorkItem) <-chan WorkResult {
	n := s.workerCount()
	out := make(chan WorkResult, 2*n)

	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it := range items {
				res, err := s.SplitLine(it.Line)
				out <- WorkResult{Seq: it.Seq, Result: res, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// OrderedCollect hands results to fn in Seq order, holding back any that
// arrive early. When fn fails, the rest of results is discarded so the
// workers can finish, and the error is returned.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	held := make(map[int]WorkResult)
	next := 0

	for r := range results {
		held[r.Seq] = r
		for {
			ready, ok := held[next]
			if !ok {
				break
			}
			delete(held, next)
			next++
			if err := fn(ready); err != nil {
				for range results {
				}
				return err
			}
		}
	}
	return nil
}
