//go:build !linux

package uptime

import (
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"
)

// Only second resolution is available here.
func sinceBoot() (time.Duration, error) {
	secs, err := host.Uptime()
	if err != nil {
		return 0, fmt.Errorf("read host uptime: %w", err)
	}
	return time.Duration(secs) * time.Second, nil
}
