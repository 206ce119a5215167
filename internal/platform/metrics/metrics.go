package metrics

import (
	"sync/atomic"
	"time"
)

type Collector struct {
	payslipsComputed   uint64
	payslipsFailed     uint64
	componentFallbacks uint64
	runsCompleted      uint64
	runsFailed         uint64
	totalComputeMs     uint64
}

func New() *Collector {
	return &Collector{}
}

// RecordPayslip counts one computed payslip and the components that fell back to zero.
func (c *Collector) RecordPayslip(duration time.Duration, fallbacks int) {
	atomic.AddUint64(&c.payslipsComputed, 1)
	if fallbacks > 0 {
		atomic.AddUint64(&c.componentFallbacks, uint64(fallbacks))
	}
	atomic.AddUint64(&c.totalComputeMs, uint64(duration.Milliseconds()))
}

func (c *Collector) RecordFailure() {
	atomic.AddUint64(&c.payslipsFailed, 1)
}

func (c *Collector) RecordRun(completed bool) {
	if completed {
		atomic.AddUint64(&c.runsCompleted, 1)
		return
	}
	atomic.AddUint64(&c.runsFailed, 1)
}

func (c *Collector) Snapshot() map[string]any {
	computed := atomic.LoadUint64(&c.payslipsComputed)
	totalMs := atomic.LoadUint64(&c.totalComputeMs)
	avg := float64(0)
	if computed > 0 {
		avg = float64(totalMs) / float64(computed)
	}
	return map[string]any{
		"payslipsComputed":   computed,
		"payslipsFailed":     atomic.LoadUint64(&c.payslipsFailed),
		"componentFallbacks": atomic.LoadUint64(&c.componentFallbacks),
		"runsCompleted":      atomic.LoadUint64(&c.runsCompleted),
		"runsFailed":         atomic.LoadUint64(&c.runsFailed),
		"avgComputeMs":       avg,
		"totalComputeMs":     totalMs,
	}
}
