// Package tracker implements the progress tracker (C7): a single-owner
// actor multiplexing concurrent job events into an ordered multi-line
// progress display. Modeled on the original Rust Tracker's mpsc-actor plus
// indicatif MultiProgress, and on the teacher's ui_ncurses.go/ui_stdout.go
// split — an interactive tview/tcell backend when attached to a terminal,
// a line-printing backend that prints each job once it finishes otherwise.
package tracker

import (
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/term"
)

// backend renders the current bar set. It is driven exclusively by the
// actor goroutine, so it needs no internal locking of its own.
type backend interface {
	render(bars []*bar, seqWidth, timeWidth int)
	print(text string)
	// suspend hides the display, runs fn with the terminal free for
	// inherited-stdio use, then restores the display.
	suspend(fn func() error) error
	summary(lines []string, totalSeconds float64)
	close()
}

type bar struct {
	seq      int
	name     string
	pos      int
	hasPos   bool
	message  string
	start    time.Time
	elapsed  float64
	result   Result
	done     bool
}

// Tracker is the handle producers use; all real state lives in the actor
// goroutine started by New.
type Tracker struct {
	ch     chan any
	gone   int32
	doneCh chan struct{}
}

// New starts the tracker actor and returns a handle. The sequence-width
// column grows with the largest sequence number assigned so far.
func New() *Tracker {
	t := &Tracker{
		ch:     make(chan any, 256),
		doneCh: make(chan struct{}),
	}
	b := newBackend()
	go t.run(b)
	return t
}

func newBackend() backend {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if b, err := newTviewBackend(); err == nil {
			return b
		}
	}
	return newStdoutBackend()
}

func (t *Tracker) send(msg any) bool {
	if atomic.LoadInt32(&t.gone) == 1 {
		fmt.Fprintln(os.Stderr, "tracker: gone, dropping message")
		return false
	}
	// The channel is buffered but not truly unbounded; block rather than
	// hand off to a spawned goroutine on a full buffer, which could
	// deliver this message after a later one sent directly and break the
	// strict arrival-order guarantee (§4.5/§5).
	t.ch <- msg
	return true
}

// Start registers a new bar and returns its sequence number.
func (t *Tracker) Start(name string) int {
	reply := make(chan int, 1)
	if !t.send(startMsg{name: name, reply: reply}) {
		return -1
	}
	return <-reply
}

// Progress sets the bar's position.
func (t *Tracker) Progress(seq, pos int) {
	t.send(progressMsg{seq: seq, pos: pos, hasPos: true})
}

// Message sets the bar's trailing message line.
func (t *Tracker) Message(seq int, text string) {
	t.send(messageMsg{seq: seq, text: text})
}

// Finish stops the bar and records its result.
func (t *Tracker) Finish(seq int, result Result, text string) {
	t.send(finishMsg{seq: seq, result: result, text: text})
}

// Print emits a line above the bar area without disturbing it.
func (t *Tracker) Print(text string) {
	t.send(printMsg{text: text})
}

// SuspendAndRun hides the bars, runs fn with the terminal free, then
// restores them, returning fn's error.
func (t *Tracker) SuspendAndRun(fn func() error) error {
	reply := make(chan error, 1)
	if !t.send(suspendMsg{run: fn, reply: reply}) {
		return fn()
	}
	return <-reply
}

// Shutdown auto-finishes any still-running bars as success, renders the
// final summary, and terminates the actor. Safe to call more than once.
func (t *Tracker) Shutdown() {
	if !atomic.CompareAndSwapInt32(&t.gone, 0, 1) {
		<-t.doneCh
		return
	}
	reply := make(chan struct{})
	select {
	case t.ch <- shutdownMsg{reply: reply}:
		<-reply
	default:
		go func() {
			t.ch <- shutdownMsg{reply: reply}
		}()
		<-reply
	}
	close(t.doneCh)
}

func (t *Tracker) run(b backend) {
	bars := map[int]*bar{}
	var order []int
	nextSeq := 0
	maxSeq := 0
	maxTime := 0

	widths := func() (int, int) {
		return len(fmt.Sprint(maxSeq)), len(fmt.Sprint(maxTime))
	}

	redraw := func() {
		ordered := make([]*bar, 0, len(order))
		for _, s := range order {
			ordered = append(ordered, bars[s])
		}
		sw, tw := widths()
		b.render(ordered, sw, tw)
	}

	for msg := range t.ch {
		switch m := msg.(type) {
		case startMsg:
			nextSeq++
			seq := nextSeq
			if seq > maxSeq {
				maxSeq = seq
			}
			bars[seq] = &bar{seq: seq, name: m.name, start: time.Now()}
			order = append(order, seq)
			m.reply <- seq
			redraw()

		case progressMsg:
			if bar, ok := bars[m.seq]; ok && !bar.done {
				bar.pos = m.pos
				bar.hasPos = true
				redraw()
			}

		case messageMsg:
			if bar, ok := bars[m.seq]; ok && !bar.done {
				bar.message = m.text
				redraw()
			}

		case finishMsg:
			if bar, ok := bars[m.seq]; ok && !bar.done {
				bar.done = true
				bar.result = m.result
				bar.message = m.text
				bar.elapsed = time.Since(bar.start).Seconds()
				secs := int(bar.elapsed)
				if secs > maxTime {
					maxTime = secs
				}
				redraw()
			}

		case printMsg:
			b.print(m.text)

		case suspendMsg:
			m.reply <- b.suspend(m.run)

		case shutdownMsg:
			var total float64
			for _, s := range order {
				bar := bars[s]
				if !bar.done {
					bar.done = true
					bar.result = ResultSuccess
					bar.elapsed = time.Since(bar.start).Seconds()
					secs := int(bar.elapsed)
					if secs > maxTime {
						maxTime = secs
					}
				}
				total += bar.elapsed
			}

			sw, tw := widths()
			lines := make([]string, 0, len(order))
			for _, s := range order {
				lines = append(lines, summaryLine(bars[s], sw, tw, maxSeq, total))
			}

			b.summary(lines, total)
			b.close()
			m.reply <- struct{}{}
			return
		}
	}
}
