package uptime

import (
	"testing"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootClockAgreesWithHostUptime(t *testing.T) {
	elapsed, err := BootClock{}.Elapsed()
	require.NoError(t, err)
	assert.Positive(t, elapsed)

	secs, err := host.Uptime()
	require.NoError(t, err)
	assert.InDelta(t, float64(secs), elapsed.Seconds(), 5)
}

func TestBootClockIsMonotonic(t *testing.T) {
	first, err := BootClock{}.Elapsed()
	require.NoError(t, err)
	second, err := BootClock{}.Elapsed()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, second, first)
}

func TestFixed(t *testing.T) {
	elapsed, err := Fixed(10 * time.Minute).Elapsed()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Minute, elapsed)
}
