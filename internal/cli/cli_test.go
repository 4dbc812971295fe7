package cli

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fgharness/internal/exerciser"
	"fgharness/internal/netprov"
	"fgharness/internal/stats"
)

func TestPrintHeader(t *testing.T) {
	var buf bytes.Buffer
	PrintHeader(&buf, Header{
		SessionID: "abc",
		Action:    "action.generate_mobile_traffic",
		Transport: "cellular",
		TargetURL: "http://example.test/generate_204",
		Uptime:    10 * time.Minute,
		Estimated: 2,
	})

	out := buf.String()
	assert.Contains(t, out, "Session    : abc")
	assert.Contains(t, out, "Target URL : http://example.test/generate_204")
	assert.Contains(t, out, "Uptime     : 10m0s")
	assert.Contains(t, out, "Estimated  : 2 requests")
}

func TestPrintHeaderWithoutTraffic(t *testing.T) {
	var buf bytes.Buffer
	PrintHeader(&buf, Header{SessionID: "abc", Action: "action.end_immediately"})
	assert.NotContains(t, buf.String(), "Target URL")
}

func TestPrintSummary(t *testing.T) {
	st := stats.NewStats()
	st.ObserveRequest(20*time.Millisecond, 0, nil)
	st.ObserveRequest(30*time.Millisecond, 0, nil)
	snap := st.Snapshot()

	rep := &exerciser.Report{
		Network:   "rmnet0",
		Planned:   2,
		Completed: 2,
		Duration:  50 * time.Millisecond,
		Statuses:  []int{204, 204},
		Counters:  &netprov.Counters{PacketsSent: 14, PacketsRecv: 12},
	}

	var buf bytes.Buffer
	PrintSummary(&buf, nil, rep, &snap)

	out := buf.String()
	assert.Contains(t, out, "OK")
	assert.Contains(t, out, "Requests       : 2/2")
	assert.Contains(t, out, "Statuses       : 204 204")
	assert.Contains(t, out, "Packets        : tx=14 rx=12")
	assert.Contains(t, out, "P50")
}

func TestPrintSummaryFailure(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, errors.New("network unavailable"), nil, nil)

	out := buf.String()
	assert.Contains(t, out, "FAILED: network unavailable")
	assert.NotContains(t, out, "RESPONSE TIMES")
}
