package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorSnapshot(t *testing.T) {
	c := New()
	c.RecordPayslip(10*time.Millisecond, 0)
	c.RecordPayslip(30*time.Millisecond, 2)
	c.RecordFailure()
	c.RecordRun(true)
	c.RecordRun(false)

	snap := c.Snapshot()
	assert.Equal(t, uint64(2), snap["payslipsComputed"])
	assert.Equal(t, uint64(1), snap["payslipsFailed"])
	assert.Equal(t, uint64(2), snap["componentFallbacks"])
	assert.Equal(t, uint64(1), snap["runsCompleted"])
	assert.Equal(t, uint64(1), snap["runsFailed"])
	assert.Equal(t, uint64(40), snap["totalComputeMs"])
	assert.Equal(t, float64(20), snap["avgComputeMs"])
}

func TestCollectorConcurrent(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordPayslip(time.Millisecond, 1)
		}()
	}
	wg.Wait()
	assert.Equal(t, uint64(50), c.Snapshot()["payslipsComputed"])
	assert.Equal(t, uint64(50), c.Snapshot()["componentFallbacks"])
}
