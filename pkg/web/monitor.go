package web

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/zan8in/gologger"
	"github.com/zan8in/moongazing/pkg/ws"
)

// SystemMonitor samples host CPU, memory and disk usage on a ticker.
// When host counters are unavailable it falls back to the figures of the
// current process.
type SystemMonitor struct {
	interval time.Duration
	diskPath string

	mu   sync.RWMutex
	last ws.SystemData
}

func NewSystemMonitor(interval time.Duration) *SystemMonitor {
	return &SystemMonitor{interval: interval, diskPath: "/"}
}

// Start samples until ctx is done.
func (m *SystemMonitor) Start(ctx context.Context) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		gologger.Error().Msgf("Failed to get process info: %v", err)
	}

	m.sample(proc)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.sample(proc)
		}
	}
}

func (m *SystemMonitor) sample(proc *process.Process) {
	var s ws.SystemData

	// 0 means the average since the previous call
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		s.CPUUsage = pct[0]
	} else if proc != nil {
		if p, err := proc.Percent(0); err == nil {
			s.CPUUsage = p
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemoryUsage = vm.UsedPercent
		s.MemoryTotal = vm.Total
		s.MemoryUsed = vm.Used
	} else if proc != nil {
		if p, err := proc.MemoryPercent(); err == nil {
			s.MemoryUsage = float64(p)
		}
	}

	if du, err := disk.Usage(m.diskPath); err == nil {
		s.DiskUsage = du.UsedPercent
		s.DiskTotal = du.Total
		s.DiskUsed = du.Used
	}

	m.mu.Lock()
	m.last = s
	m.mu.Unlock()
}

// Stats returns the latest sample.
func (m *SystemMonitor) Stats() ws.SystemData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last
}
