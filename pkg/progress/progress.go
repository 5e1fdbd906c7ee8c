// Package progress prints a simple 100-step progress bar keyed off an
// expected record count. With no expected count it prints nothing, and no
// count is logged in its place.
package progress

import (
	"fmt"
	"sync/atomic"
)

// Bar tracks processed records and prints one step per percent.
type Bar struct {
	expected  int64
	processed atomic.Int64
	lastStep  atomic.Int64
}

// New creates a bar for the expected number of records. expected <= 0
// disables output.
func New(expected int) *Bar {
	return &Bar{expected: int64(expected)}
}

// Mark counts one record and prints when a new percent step is crossed.
func (b *Bar) Mark() {
	n := b.processed.Add(1)
	if b.expected <= 0 {
		return
	}
	step := n * 100 / b.expected
	if step > 100 {
		step = 100
	}
	last := b.lastStep.Load()
	if step > last && b.lastStep.CompareAndSwap(last, step) {
		if step%10 == 0 {
			fmt.Printf("%d%%", step)
		} else {
			fmt.Print("=")
		}
		if step == 100 {
			fmt.Println()
		}
	}
}

// Count returns the number of records marked so far.
func (b *Bar) Count() int { return int(b.processed.Load()) }
