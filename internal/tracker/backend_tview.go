package tracker

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// tviewBackend is the interactive multi-bar display, built the same way
// the teacher's NcursesUI composes a header/progress/events Flex of
// tview.TextViews, redrawn in full on every event via QueueUpdateDraw.
type tviewBackend struct {
	app    *tview.Application
	bars   *tview.TextView
	events *tview.TextView
	ready  chan struct{}
}

func newTviewBackend() (*tviewBackend, error) {
	app := tview.NewApplication()

	bars := tview.NewTextView().SetDynamicColors(true)
	bars.SetBorder(true).SetTitle(" jobs ")

	events := tview.NewTextView().SetDynamicColors(true)
	events.SetBorder(true).SetTitle(" log ")

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(bars, 0, 2, false).
		AddItem(events, 0, 1, false)

	app.SetRoot(flex, true)
	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyCtrlC || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q') {
			app.Stop()
			return nil
		}
		return ev
	})

	b := &tviewBackend{app: app, bars: bars, events: events, ready: make(chan struct{})}
	go func() {
		close(b.ready)
		_ = app.Run()
	}()
	<-b.ready
	return b, nil
}

func (b *tviewBackend) render(bars []*bar, seqWidth, timeWidth int) {
	maxSeq := 0
	for _, bar := range bars {
		if bar.seq > maxSeq {
			maxSeq = bar.seq
		}
	}
	var sb strings.Builder
	for _, bar := range bars {
		color := "yellow"
		if bar.done {
			if bar.result == ResultSuccess {
				color = "green"
			} else {
				color = "red"
			}
		}
		fmt.Fprintf(&sb, "[%s]%s[-]\n", color, line(bar, seqWidth, timeWidth, maxSeq))
	}
	b.app.QueueUpdateDraw(func() {
		b.bars.SetText(sb.String())
	})
}

func (b *tviewBackend) print(text string) {
	b.app.QueueUpdateDraw(func() {
		fmt.Fprintln(b.events, text)
	})
}

func (b *tviewBackend) suspend(fn func() error) error {
	done := make(chan error, 1)
	b.app.Suspend(func() {
		done <- fn()
	})
	return <-done
}

func (b *tviewBackend) summary(lines []string, totalSeconds float64) {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "done all in %.1fs\n", totalSeconds)
	b.app.QueueUpdateDraw(func() {
		b.bars.SetText(sb.String())
	})
}

func (b *tviewBackend) close() {
	b.app.Stop()
}
