package split

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/splitmnp/internal/vcf"
)

func makeItems(n int) <-chan WorkItem {
	ch := make(chan WorkItem, n)
	for i := range n {
		ch <- WorkItem{
			Seq: i,
			Line: &vcf.Line{
				Number: i + 1,
				Text:   fmt.Sprintf("1\t%d\t.\tAC\tGT\t.\t.\t.", 100+2*i),
			},
		}
	}
	close(ch)
	return ch
}

func TestParallelSplit_OrderPreservation(t *testing.T) {
	s := NewSplitter(DefaultOptions())
	s.SetWorkers(8)

	results := s.ParallelSplit(makeItems(200))

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		require.NoError(t, r.Err)
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 200)
	for i, seq := range collected {
		assert.Equal(t, i, seq, "result %d out of order", i)
	}
}

func TestParallelSplit_SingleWorker(t *testing.T) {
	s := NewSplitter(DefaultOptions())

	results := s.ParallelSplit(makeItems(50))

	var collected []int
	err := OrderedCollect(results, func(r WorkResult) error {
		collected = append(collected, r.Seq)
		return nil
	})
	require.NoError(t, err)

	assert.Len(t, collected, 50)
	for i, seq := range collected {
		assert.Equal(t, i, seq)
	}
}

func TestParallelSplit_EmptyInput(t *testing.T) {
	s := NewSplitter(DefaultOptions())

	s.SetWorkers(4)

	ch := make(chan WorkItem)
	close(ch)
	results := s.ParallelSplit(ch)

	count := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		count++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestOrderedCollect_EarlyError(t *testing.T) {
	s := NewSplitter(DefaultOptions())
	s.SetWorkers(4)

	results := s.ParallelSplit(makeItems(100))

	count := 0
	err := OrderedCollect(results, func(r WorkResult) error {
		count++
		if count == 5 {
			return fmt.Errorf("stop at 5")
		}
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, 5, count)
}

func TestParallelSplit_ProducesRecords(t *testing.T) {
	s := NewSplitter(DefaultOptions())
	s.SetWorkers(2)

	results := s.ParallelSplit(makeItems(5))

	err := OrderedCollect(results, func(r WorkResult) error {
		require.NoError(t, r.Err)
		assert.Equal(t, Single, r.Disposition)
		require.Len(t, r.Records, 2)
		assert.Equal(t, r.Source.Pos, r.Records[0].Pos)
		assert.Equal(t, r.Source.Pos+1, r.Records[1].Pos)
		return nil
	})
	require.NoError(t, err)
}

func TestParallelSplit_AllCPUs(t *testing.T) {
	s := NewSplitter(DefaultOptions())
	s.SetWorkers(0)
	assert.Equal(t, runtime.NumCPU(), s.workerCount())

	var collected int
	err := OrderedCollect(s.ParallelSplit(makeItems(20)), func(r WorkResult) error {
		assert.Equal(t, collected, r.Seq)
		collected++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 20, collected)
}
