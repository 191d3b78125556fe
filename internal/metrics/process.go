package metrics

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats содержит метрики процесса
type ProcessStats struct {
	StartTime time.Time
	proc      *process.Process
}

// NewProcessStats создает новый экземпляр метрик процесса
func NewProcessStats() *ProcessStats {
	ps := &ProcessStats{StartTime: time.Now()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		ps.proc = p
	}
	return ps
}

// GetUptime возвращает время работы в человекочитаемом виде
func (ps *ProcessStats) GetUptime() string {
	uptime := time.Since(ps.StartTime)

	days := int(uptime.Hours()) / 24
	hours := int(uptime.Hours()) % 24
	minutes := int(uptime.Minutes()) % 60
	seconds := int(uptime.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dд %dч %dм %dс", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dч %dм %dс", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dм %dс", minutes, seconds)
	}
	return fmt.Sprintf("%dс", seconds)
}

// GetMemoryUsage возвращает занятую кучей память в MB
func (ps *ProcessStats) GetMemoryUsage() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.Alloc) / 1024 / 1024
}

// GetRSS возвращает резидентную память процесса в MB
func (ps *ProcessStats) GetRSS() (float64, error) {
	if ps.proc == nil {
		return 0, fmt.Errorf("процесс недоступен")
	}
	info, err := ps.proc.MemoryInfo()
	if err != nil {
		return 0, err
	}
	return float64(info.RSS) / 1024 / 1024, nil
}

// GetCPUUsage возвращает использование CPU процессом в процентах
func (ps *ProcessStats) GetCPUUsage() (float64, error) {
	if ps.proc == nil {
		return 0, fmt.Errorf("процесс недоступен")
	}
	return ps.proc.CPUPercent()
}

// DefaultWorkerCount возвращает число логических ядер минус одно для основного
// потока, но не меньше одного
func DefaultWorkerCount() int {
	n, err := cpu.Counts(true)
	if err != nil || n <= 0 {
		n = runtime.NumCPU()
	}
	if n > 1 {
		n--
	}
	return n
}
