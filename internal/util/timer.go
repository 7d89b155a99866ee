package util

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Timer measures how long a chat request spends in each stage.
type Timer struct {
	start  time.Time
	stages map[string]time.Duration
	last   time.Time
}

// StartTimer creates a new timer starting at current time.
func StartTimer() *Timer {
	now := time.Now()
	return &Timer{start: now, last: now, stages: make(map[string]time.Duration)}
}

// Mark records the time spent since the previous mark under name.
func (t *Timer) Mark(name string) {
	if t == nil {
		return
	}
	now := time.Now()
	t.stages[name] += now.Sub(t.last)
	t.last = now
}

// ElapsedMs returns the elapsed milliseconds since start.
func (t *Timer) ElapsedMs() int64 {
	if t == nil || t.start.IsZero() {
		return 0
	}
	return time.Since(t.start).Milliseconds()
}

// Fields renders the total and per-stage durations as log fields.
func (t *Timer) Fields() logrus.Fields {
	fields := logrus.Fields{"duration_ms": t.ElapsedMs()}
	if t == nil {
		return fields
	}
	for name, d := range t.stages {
		fields[name+"_ms"] = d.Milliseconds()
	}
	return fields
}
