package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/mem"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	Width           int
	Height          int
	SamplesPerPixel int
	Rows            int           // Rows completed
	Samples         int           // Total number of samples taken
	Duration        time.Duration // Wall-clock time of the render
	Workers         []WorkerStats
}

// WorkerStats tracks the rows rendered by one worker
type WorkerStats struct {
	ID        int
	Rows      int
	Samples   int
	RowTime   time.Duration // Time spent inside rows
	SlowestMs float64
}

func newRenderStats(config Config, numWorkers int) RenderStats {
	workers := make([]WorkerStats, numWorkers)
	for i := range workers {
		workers[i].ID = i
	}
	return RenderStats{
		Width:           config.Width,
		Height:          config.Height,
		SamplesPerPixel: config.SamplesPerPixel,
		Workers:         workers,
	}
}

func (s *RenderStats) addRow(result RowResult) {
	s.Rows++
	s.Samples += result.Samples

	if result.WorkerID < 0 || result.WorkerID >= len(s.Workers) {
		return
	}
	w := &s.Workers[result.WorkerID]
	w.Rows++
	w.Samples += result.Samples
	w.RowTime += result.Duration
	w.SlowestMs = max(w.SlowestMs, float64(result.Duration.Microseconds())/1000.0)
}

// SamplesPerSecond returns the overall sampling throughput
func (s RenderStats) SamplesPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Samples) / s.Duration.Seconds()
}

// SystemInfo describes the host, for the stats footer
type SystemInfo struct {
	CPUModel     string
	LogicalCores int
	TotalRAMGB   uint64
}

// GetSystemInfo queries the CPU model and memory size. Fields that cannot be
// read are left empty.
func GetSystemInfo() SystemInfo {
	info := SystemInfo{LogicalCores: DefaultWorkerCount()}

	if cpuInfo, err := cpu.Info(); err == nil && len(cpuInfo) > 0 {
		info.CPUModel = cpuInfo[0].ModelName
	}
	if memInfo, err := mem.VirtualMemory(); err == nil {
		info.TotalRAMGB = memInfo.Total / (1024 * 1024 * 1024)
	}
	return info
}

// FormatStats renders the statistics as a table with one line per worker
func FormatStats(stats RenderStats, system SystemInfo) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Worker", "Rows", "% of frame", "Samples", "Row time", "Slowest row"})

	for _, w := range stats.Workers {
		percent := 0.0
		if stats.Height > 0 {
			percent = 100 * float64(w.Rows) / float64(stats.Height)
		}
		table.Append([]string{
			fmt.Sprintf("%d", w.ID),
			fmt.Sprintf("%d", w.Rows),
			fmt.Sprintf("%02.1f %%", percent),
			fmt.Sprintf("%d", w.Samples),
			w.RowTime.Round(time.Millisecond).String(),
			fmt.Sprintf("%.1f ms", w.SlowestMs),
		})
	}

	cpuModel := system.CPUModel
	if cpuModel == "" {
		cpuModel = "unknown CPU"
	}
	table.SetFooter([]string{
		fmt.Sprintf("%dx%d", stats.Width, stats.Height),
		fmt.Sprintf("%d", stats.Rows),
		fmt.Sprintf("%d cores, %d GB", system.LogicalCores, system.TotalRAMGB),
		fmt.Sprintf("%.0f/s", stats.SamplesPerSecond()),
		cpuModel,
		stats.Duration.Round(time.Millisecond).String(),
	})

	table.Render()
	return buf.String()
}
