package ingest

import (
	"sync"
	"time"
)

// Status is a point-in-time snapshot of the orchestrator and its poller.
type Status struct {
	Running        bool       `json:"running"`
	Processing     bool       `json:"processing"`
	Sink           string     `json:"sink"`
	LastCheck      *time.Time `json:"last_check,omitempty"`
	LastProcess    *time.Time `json:"last_process,omitempty"`
	TotalProcessed int64      `json:"total_processed"`
	TotalRuns      int64      `json:"total_runs"`
	FailedRuns     int64      `json:"failed_runs"`
	LastResult     *RunResult `json:"last_result,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

type statusTracker struct {
	mu sync.Mutex

	running        bool
	lastCheck      time.Time
	lastProcess    time.Time
	totalProcessed int64
	totalRuns      int64
	failedRuns     int64
	lastResult     *RunResult
	lastErr        string
}

func newStatusTracker() *statusTracker {
	return &statusTracker{}
}

func (s *statusTracker) setRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running = running
}

func (s *statusTracker) started(at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastCheck = at
}

func (s *statusTracker) finished(res RunResult, err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.totalRuns++
	if err != nil {
		s.failedRuns++
		s.lastErr = err.Error()
	} else {
		s.lastErr = ""
	}
	if res.Marked > 0 {
		s.totalProcessed += res.Marked
		s.lastProcess = at
	}
	r := res
	s.lastResult = &r
}

func (s *statusTracker) snapshot() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Running:        s.running,
		TotalProcessed: s.totalProcessed,
		TotalRuns:      s.totalRuns,
		FailedRuns:     s.failedRuns,
		LastError:      s.lastErr,
	}
	if !s.lastCheck.IsZero() {
		t := s.lastCheck
		st.LastCheck = &t
	}
	if !s.lastProcess.IsZero() {
		t := s.lastProcess
		st.LastProcess = &t
	}
	if s.lastResult != nil {
		r := *s.lastResult
		st.LastResult = &r
	}
	return st
}

// Status returns the current snapshot.
func (o *Orchestrator) Status() Status {
	st := o.status.snapshot()
	st.Processing = o.Processing()
	st.Sink = o.SinkName()
	return st
}
