package tracker

import (
	"fmt"
	"os"
)

// stdoutBackend is the non-interactive fallback, following the teacher's
// StdoutUI: print one line per job when it finishes rather than redrawing an in-place
// multi-bar display, since a non-terminal stream (a log file, a CI runner)
// cannot usefully support cursor movement.
type stdoutBackend struct {
	lastDone map[int]bool
}

func newStdoutBackend() *stdoutBackend {
	return &stdoutBackend{lastDone: map[int]bool{}}
}

func (b *stdoutBackend) render(bars []*bar, seqWidth, timeWidth int) {
	maxSeq := 0
	for _, bar := range bars {
		if bar.seq > maxSeq {
			maxSeq = bar.seq
		}
	}
	for _, bar := range bars {
		if bar.done && !b.lastDone[bar.seq] {
			b.lastDone[bar.seq] = true
			fmt.Fprintln(os.Stdout, line(bar, seqWidth, timeWidth, maxSeq))
		}
	}
}

func (b *stdoutBackend) print(text string) {
	fmt.Fprintln(os.Stdout, text)
}

func (b *stdoutBackend) suspend(fn func() error) error {
	return fn()
}

func (b *stdoutBackend) summary(lines []string, totalSeconds float64) {
	for _, l := range lines {
		fmt.Fprintln(os.Stdout, l)
	}
	fmt.Fprintf(os.Stdout, "done all in %.1fs\n", totalSeconds)
}

func (b *stdoutBackend) close() {}
