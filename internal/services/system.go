package services

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

type HostStats struct {
	CapturedAt        time.Time `json:"capturedAt"`
	ProcessRSSBytes   int64     `json:"processRssBytes"`
	GoHeapBytes       int64     `json:"goHeapBytes"`
	Goroutines        int       `json:"goroutines"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `json:"diskTotalBytes"`
	DiskUsedBytes     int64     `json:"diskUsedBytes"`
	ProcessCPULoad    float64   `json:"processCpuLoad"`
	SystemCPULoad     float64   `json:"systemCpuLoad"`
}

// CaptureHostStats samples the process and host. Individual probes that fail
// leave their fields at zero.
func CaptureHostStats(diskPath string) HostStats {
	stats := HostStats{
		CapturedAt: time.Now().UTC(),
		Goroutines: runtime.NumGoroutine(),
	}
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	stats.GoHeapBytes = int64(ms.HeapAlloc)

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if info, err := proc.MemoryInfo(); err == nil && info != nil {
			stats.ProcessRSSBytes = int64(info.RSS)
		}
		if pct, err := proc.CPUPercent(); err == nil {
			stats.ProcessCPULoad = pct / 100.0
		}
	}
	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		stats.SystemMemoryTotal = int64(vm.Total)
		stats.SystemMemoryUsed = int64(vm.Total - vm.Available)
	}
	usage, err := disk.Usage(diskPath)
	if err != nil {
		usage, err = disk.Usage("/")
	}
	if err == nil && usage != nil {
		stats.DiskTotalBytes = int64(usage.Total)
		stats.DiskUsedBytes = int64(usage.Used)
	}
	if pcts, err := cpu.Percent(0, false); err == nil && len(pcts) > 0 {
		stats.SystemCPULoad = pcts[0] / 100.0
	}
	return stats
}
