package system

import (
	"fmt"
	"os"

	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// ProcessStats - снимок потребления ресурсов текущим процессом.
type ProcessStats struct {
	RSS        uint64  // резидентная память, байт
	CPUPercent float64 // загрузка CPU процессом с момента старта
	SystemUsed float64 // занятая память системы, %
	NumThreads int32
}

// CollectProcessStats читает статистику процесса через gopsutil.
func CollectProcessStats() (ProcessStats, error) {
	var st ProcessStats

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return st, fmt.Errorf("process handle: %w", err)
	}

	mi, err := p.MemoryInfo()
	if err != nil {
		return st, fmt.Errorf("memory info: %w", err)
	}
	st.RSS = mi.RSS

	if cpu, err := p.CPUPercent(); err == nil {
		st.CPUPercent = cpu
	}
	if n, err := p.NumThreads(); err == nil {
		st.NumThreads = n
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		st.SystemUsed = vm.UsedPercent
	}

	return st, nil
}

func (s ProcessStats) String() string {
	return fmt.Sprintf("RSS: %.1f MiB | CPU: %.1f%% | Threads: %d | System memory: %.1f%%",
		float64(s.RSS)/(1<<20), s.CPUPercent, s.NumThreads, s.SystemUsed)
}
