package blocks

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"

	"gitlab.com/tinyland/lab/pulsebar/pkg/block"
	"gitlab.com/tinyland/lab/pulsebar/pkg/markup"
	"gitlab.com/tinyland/lab/pulsebar/pkg/sched"
)

// SysMetrics renders a compact CPU / memory / load summary gathered via
// gopsutil. Collection runs off-loop like any other external source; only
// the rendered result is applied on the loop.
type SysMetrics struct {
	block.Base
	pal  markup.Palette
	loop *sched.Loop
	read func() (string, error)
}

// NewSysMetrics returns a system metrics block.
func NewSysMetrics(loop *sched.Loop, pal markup.Palette) *SysMetrics {
	return &SysMetrics{
		Base: block.NewBase("sysmetrics"),
		pal:  pal,
		loop: loop,
		read: readSysMetrics,
	}
}

// Update gathers a fresh snapshot.
func (s *SysMetrics) Update() {
	go func() {
		text, err := s.read()
		s.loop.Post(func() { s.apply(text, err) })
	}()
}

func (s *SysMetrics) apply(text string, err error) {
	if err != nil {
		s.Set(s.pal.Urgent(pad("sys ?")))
		return
	}
	s.Set(markup.Fg(s.pal.Foreground, pad(text)))
}

// readSysMetrics formats one snapshot: overall CPU percentage, used
// physical memory, one-minute load average.
func readSysMetrics() (string, error) {
	pcts, err := cpu.Percent(0, false)
	if err != nil || len(pcts) == 0 {
		return "", fmt.Errorf("cpu: %w", err)
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return "", fmt.Errorf("memory: %w", err)
	}
	avg, err := load.Avg()
	if err != nil {
		return "", fmt.Errorf("load: %w", err)
	}
	return fmt.Sprintf("cpu %.0f%% / %s / %.2f",
		pcts[0], humanize.IBytes(vm.Used), avg.Load1), nil
}
