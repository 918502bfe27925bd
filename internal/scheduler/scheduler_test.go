package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmorrow/papertrade/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	runs     atomic.Int32
	err      error
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }
func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestAddJobRejectsDuplicate(t *testing.T) {
	s := New(logger.Nop())

	require.NoError(t, s.AddJob(&countingJob{name: "signals", schedule: "30 21 * * 1-5"}))
	err := s.AddJob(&countingJob{name: "signals", schedule: "@daily"})

	assert.Error(t, err)
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(logger.Nop())

	err := s.AddJob(&countingJob{name: "signals", schedule: "not a cron expr"})

	assert.Error(t, err)
}

func TestRunJobImmediately(t *testing.T) {
	s := New(logger.Nop())
	s.retryDelay = time.Millisecond

	job := &countingJob{name: "signals", schedule: "30 21 * * 1-5"}
	require.NoError(t, s.AddJob(job))

	require.NoError(t, s.RunJob("signals"))

	assert.Eventually(t, func() bool {
		return job.runs.Load() == 1
	}, time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		h := s.History("signals")
		return len(h) == 1 && h[0].Success
	}, time.Second, 10*time.Millisecond)
}

func TestRunJobUnknown(t *testing.T) {
	s := New(logger.Nop())
	assert.Error(t, s.RunJob("missing"))
}

func TestFailingJobRetriesAndRecordsError(t *testing.T) {
	s := New(logger.Nop())
	s.maxRetries = 2
	s.retryDelay = time.Millisecond

	job := &countingJob{name: "signals", schedule: "@daily", err: errors.New("boom")}
	require.NoError(t, s.AddJob(job))
	require.NoError(t, s.RunJob("signals"))

	assert.Eventually(t, func() bool {
		h := s.History("signals")
		return len(h) == 1 && !h[0].Success && h[0].Error == "boom"
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, int32(3), job.runs.Load(), "initial attempt plus two retries")
}

func TestJobHistoryCapsAndRate(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < 150; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, 100)
	assert.InDelta(t, 0.5, h.SuccessRate(), 0.01)
}
