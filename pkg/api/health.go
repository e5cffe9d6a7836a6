package api

import (
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats is the resource usage reported by /health
type ProcessStats struct {
	RSSBytes          uint64  `json:"rss_bytes"`
	CPUPercent        float64 `json:"cpu_percent"`
	Goroutines        int     `json:"goroutines"`
	HostMemoryPercent float64 `json:"host_memory_percent"`
}

// processStats samples the current process. Fields that cannot be read on
// this platform stay zero.
func processStats() ProcessStats {
	stats := ProcessStats{Goroutines: runtime.NumGoroutine()}

	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if m, err := p.MemoryInfo(); err == nil {
			stats.RSSBytes = m.RSS
		}
		if c, err := p.CPUPercent(); err == nil {
			stats.CPUPercent = c
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		stats.HostMemoryPercent = vm.UsedPercent
	}
	return stats
}
