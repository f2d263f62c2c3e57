// Package report renders finished runs as text or JSON.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/me/rrsim/pkg/model"
)

// axisStep is the spacing of labelled ticks on the Gantt time axis.
const axisStep = 5

// MaxGanttTicks is the longest run drawn cell by cell. Longer runs are
// listed as intervals per core.
const MaxGanttTicks = 200

// Summary returns the three headline metrics, one per line.
func Summary(m model.Metrics) string {
	return fmt.Sprintf("Average Waiting Time: %.2f\nAverage Turnaround Time: %.2f\nCPU Utilization: %.2f%%\n",
		m.AverageWaiting, m.AverageTurnaround, m.Utilization)
}

// Gantt writes one row per core with one cell per tick. Busy cells carry
// the process label, idle cells a dot. The axis below is labelled every
// axisStep ticks and at the end of the run.
func Gantt(w io.Writer, timeline []model.Interval, cores, total int) error {
	if total <= 0 {
		_, err := fmt.Fprintln(w, "(empty timeline)")
		return err
	}
	if total > MaxGanttTicks {
		return intervalList(w, timeline, cores, total)
	}

	rows := make([][]int, cores)
	for c := range rows {
		rows[c] = make([]int, total)
	}
	cellWidth := len(strconv.Itoa(total))
	for _, iv := range timeline {
		if iv.CoreID < 0 || iv.CoreID >= cores {
			continue
		}
		if l := len(label(iv.ProcessID)); l > cellWidth {
			cellWidth = l
		}
		for t := iv.Start; t < iv.End && t < total; t++ {
			rows[iv.CoreID][t] = iv.ProcessID
		}
	}

	prefix := len(fmt.Sprintf("Core %d | ", cores-1))
	var buf bytes.Buffer
	for c, row := range rows {
		fmt.Fprintf(&buf, "%-*s", prefix, fmt.Sprintf("Core %d | ", c))
		for _, pid := range row {
			cell := "."
			if pid > 0 {
				cell = label(pid)
			}
			fmt.Fprintf(&buf, "%-*s ", cellWidth, cell)
		}
		buf.Truncate(buf.Len() - 1)
		buf.WriteByte('\n')
	}

	axis := []byte(strings.Repeat(" ", prefix+(total+1)*(cellWidth+1)))
	mark := func(t int) {
		copy(axis[prefix+t*(cellWidth+1):], strconv.Itoa(t))
	}
	for t := 0; t < total; t += axisStep {
		mark(t)
	}
	mark(total)
	buf.Write(bytes.TrimRight(axis, " "))
	buf.WriteByte('\n')

	_, err := w.Write(buf.Bytes())
	return err
}

// intervalList writes each core's intervals as P<id>[start,end).
func intervalList(w io.Writer, timeline []model.Interval, cores, total int) error {
	prefix := len(fmt.Sprintf("Core %d | ", cores-1))
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "(%d ticks, too long to draw)\n", total)
	for c := 0; c < cores; c++ {
		fmt.Fprintf(&buf, "%-*s", prefix, fmt.Sprintf("Core %d | ", c))
		n := 0
		for _, iv := range timeline {
			if iv.CoreID != c {
				continue
			}
			if n > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%s[%d,%d)", label(iv.ProcessID), iv.Start, iv.End)
			n++
		}
		if n == 0 {
			buf.WriteString("idle")
		}
		buf.WriteByte('\n')
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Table writes the per-process results.
func Table(w io.Writer, procs []model.ProcessResult) error {
	const row = "%-6s  %-8s  %-6s  %-6s  %-11s  %-11s  %s\n"
	var buf bytes.Buffer
	fmt.Fprintf(&buf, row, "PID", "ARRIVAL", "BURST", "START", "COMPLETION", "TURNAROUND", "WAITING")
	fmt.Fprintf(&buf, row, "---", "-------", "-----", "-----", "----------", "----------", "-------")
	for _, p := range procs {
		fmt.Fprintf(&buf, row, label(p.ID),
			strconv.Itoa(p.ArrivalTime), strconv.Itoa(p.BurstTime), strconv.Itoa(p.StartTime),
			strconv.Itoa(p.CompletionTime), strconv.Itoa(p.TurnaroundTime), strconv.Itoa(p.WaitingTime))
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Text writes the full report of a run: header, Gantt chart, process
// table and summary.
func Text(w io.Writer, run *model.Run) error {
	m := run.Metrics
	header := run.Name
	if run.ID != "" {
		header = fmt.Sprintf("%s (%s)", run.Name, run.ID)
	}
	if _, err := fmt.Fprintf(w, "%s\nquantum=%d cores=%d ticks=%d\n\n", header, m.Quantum, m.Cores, m.TotalTicks); err != nil {
		return err
	}
	if err := Gantt(w, run.Timeline, m.Cores, m.TotalTicks); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	if err := Table(w, m.Processes); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%s", Summary(m))
	return err
}

// JSON returns the indented JSON document of a run, the format used for
// exports.
func JSON(run *model.Run) ([]byte, error) {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal run %s: %w", run.ID, err)
	}
	return append(data, '\n'), nil
}

// Events writes one line per event of a tick.
func Events(w io.Writer, res model.TickResult) error {
	for _, ev := range res.Events {
		var line string
		switch ev.Type {
		case model.EventArrival:
			line = fmt.Sprintf("t=%-4d %s arrives", ev.Tick, label(ev.ProcessID))
		case model.EventDispatch:
			line = fmt.Sprintf("t=%-4d %s dispatched to core %d", ev.Tick, label(ev.ProcessID), ev.CoreID)
		case model.EventPreempt:
			line = fmt.Sprintf("t=%-4d %s preempted on core %d", ev.Tick, label(ev.ProcessID), ev.CoreID)
		case model.EventComplete:
			line = fmt.Sprintf("t=%-4d %s completes on core %d", ev.Tick, label(ev.ProcessID), ev.CoreID)
		default:
			line = fmt.Sprintf("t=%-4d %s %s", ev.Tick, label(ev.ProcessID), ev.Type)
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func label(pid int) string {
	return "P" + strconv.Itoa(pid)
}
