// Package cli prints the headless start banner and end-of-session summary.
package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"fgharness/internal/exerciser"
	"fgharness/internal/stats"
	"fgharness/internal/tui/styles"
)

const rule = "======================================================================"

// Header describes the session about to run.
type Header struct {
	SessionID string
	Action    string
	Transport string
	TargetURL string
	Uptime    time.Duration
	// Estimated is sized from Uptime. The session sizes again once the
	// network is available, so the real plan can differ.
	Estimated int
}

func PrintHeader(w io.Writer, h Header) {
	fmt.Fprintf(w, "\n%s\n", styles.Active.Render("STARTING FGHARNESS SESSION"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Session    : %s\n", h.SessionID)
	fmt.Fprintf(w, "Action     : %s\n", h.Action)
	if h.TargetURL != "" {
		fmt.Fprintf(w, "Transport  : %s\n", h.Transport)
		fmt.Fprintf(w, "Target URL : %s\n", h.TargetURL)
		fmt.Fprintf(w, "Uptime     : %s\n", h.Uptime.Round(time.Second))
		if h.Estimated > 0 {
			fmt.Fprintf(w, "Estimated  : %d requests\n", h.Estimated)
		}
	}
	fmt.Fprintf(w, "%s\n\n", rule)
}

// PrintSummary reports how the session ended. rep and snap may be nil for
// actions that issue no traffic.
func PrintSummary(w io.Writer, err error, rep *exerciser.Report, snap *stats.Snapshot) {
	fmt.Fprintf(w, "\n%s\n", styles.Active.Render("SESSION RESULT"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Outcome        : %s\n", styles.Outcome(err))

	if rep != nil {
		fmt.Fprintf(w, "Network        : %s\n", rep.Network)
		fmt.Fprintf(w, "Requests       : %d/%d\n", rep.Completed, rep.Planned)
		fmt.Fprintf(w, "Total Duration : %s\n", rep.Duration.Round(time.Millisecond))
		fmt.Fprintf(w, "Bytes Received : %d\n", rep.BytesReceived)
		if len(rep.Statuses) > 0 {
			fmt.Fprintf(w, "Statuses       : %s\n", joinInts(rep.Statuses))
		}
		if c := rep.Counters; c != nil {
			fmt.Fprintf(w, "Packets        : tx=%d rx=%d\n", c.PacketsSent, c.PacketsRecv)
		}
	}

	if snap != nil && snap.Success > 0 {
		fmt.Fprintf(w, "\nRESPONSE TIMES [Success Only]\n")
		fmt.Fprintf(w, "   P50 : %s\n", snap.P50)
		fmt.Fprintf(w, "   P90 : %s\n", snap.P90)
		fmt.Fprintf(w, "   P99 : %s\n", snap.P99)
		fmt.Fprintf(w, "   Max : %s\n", snap.Max)
	}
	fmt.Fprintln(w, rule)
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, " ")
}
