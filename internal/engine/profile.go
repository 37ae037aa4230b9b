package engine

import (
	"runtime"
	"sync"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnProfile summarises one column for the debug panel.
type ColumnProfile struct {
	Name    string   `json:"name"`
	DType   DType    `json:"dtype"`
	NonNull int      `json:"non_null"`
	Nulls   int      `json:"nulls"`
	Min     *float64 `json:"min,omitempty"`
	Max     *float64 `json:"max,omitempty"`
	Mean    *float64 `json:"mean,omitempty"`
}

// Profile computes a ColumnProfile per column, in table order. Min, Max and
// Mean are only set for numeric columns with at least one value.
func (t *Table) Profile() []ColumnProfile {
	out := make([]ColumnProfile, len(t.names))

	// One job per column, bounded by the number of CPUs
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < runtime.NumCPU(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				out[j] = t.profileColumn(j)
			}
		}()
	}
	for j := range t.names {
		jobs <- j
	}
	close(jobs)
	wg.Wait()

	return out
}

func (t *Table) profileColumn(j int) ColumnProfile {
	dt := t.types[j]
	p := ColumnProfile{Name: t.names[j], DType: dt}
	col, nulls := t.cols[j], t.nulls[j]

	var vals []float64
	if dt.Numeric() {
		vals = make([]float64, 0, t.nrows)
	}
	for i := 0; i < t.nrows; i++ {
		if nulls[i] {
			p.Nulls++
			continue
		}
		p.NonNull++
		if vals != nil {
			vals = append(vals, col.Elem(i).Float())
		}
	}

	if len(vals) > 0 {
		lo, hi, mean := floats.Min(vals), floats.Max(vals), stat.Mean(vals, nil)
		p.Min, p.Max, p.Mean = &lo, &hi, &mean
	}
	return p
}
