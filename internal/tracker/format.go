package tracker

import (
	"fmt"
	"strings"
)

const timeBarWidth = 5

// runningPrefix formats a still-running bar's prefix: [seq/total][....][job].
func runningPrefix(seq, maxSeq, seqWidth int) string {
	return fmt.Sprintf("[%*d/%d][....]", seqWidth, seq, maxSeq)
}

// finishedPrefix formats a finished bar's prefix:
// [seq/total][result][time s][job].
func finishedPrefix(b *bar, seqWidth, timeWidth, maxSeq int) string {
	return fmt.Sprintf("[%*d/%d][%s][%*ds]", seqWidth, b.seq, maxSeq, b.result, timeWidth, int(b.elapsed))
}

// line renders one bar's current display line for the live view.
func line(b *bar, seqWidth, timeWidth, maxSeq int) string {
	var prefix string
	if b.done {
		prefix = finishedPrefix(b, seqWidth, timeWidth, maxSeq)
	} else {
		prefix = runningPrefix(b.seq, maxSeq, seqWidth)
	}
	trailer := b.name
	if b.message != "" {
		trailer = fmt.Sprintf("%s: %s", b.name, b.message)
	}
	if b.done {
		return fmt.Sprintf("%s[%s].", prefix, trailer)
	}
	return fmt.Sprintf("%s[%s]", prefix, trailer)
}

// timeBar renders the proportional 5-cell block bar used in the final
// summary, filled up to (this/total)*5 cells inclusive: cell i is filled
// iff i <= (this*width)/total, matching the original's idx <= finish_limit.
func timeBar(this, total float64) string {
	var sb strings.Builder
	if total <= 0 {
		for i := 0; i < timeBarWidth; i++ {
			sb.WriteByte('.')
		}
		return sb.String()
	}

	filled := int((this * timeBarWidth) / total)
	if filled > timeBarWidth-1 {
		filled = timeBarWidth - 1
	}
	if filled < 0 {
		filled = 0
	}
	for i := 0; i < timeBarWidth; i++ {
		if i <= filled {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}
	}
	return sb.String()
}

// summaryLine renders one job's final summary line: the finished prefix
// with [time s] replaced by [time-bar time s].
func summaryLine(b *bar, seqWidth, timeWidth, maxSeq int, total float64) string {
	tb := timeBar(b.elapsed, total)
	prefix := fmt.Sprintf("[%*d/%d][%s][%s %*ds]", seqWidth, b.seq, maxSeq, b.result, tb, timeWidth, int(b.elapsed))
	return fmt.Sprintf("%s[%s].", prefix, b.name)
}
