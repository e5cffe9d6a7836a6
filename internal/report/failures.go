package report

import "sync"

// FailureLog keeps the most recent coercion failures in a ring buffer
type FailureLog struct {
	samples []Failure
	maxSize int
	mu      sync.RWMutex
}

// NewFailureLog creates a failure log with fixed size
func NewFailureLog(maxSize int) *FailureLog {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &FailureLog{
		samples: make([]Failure, 0, maxSize),
		maxSize: maxSize,
	}
}

// Record adds a failure, dropping the oldest when full
func (l *FailureLog) Record(f Failure) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.samples) >= l.maxSize {
		l.samples = l.samples[1:]
	}
	l.samples = append(l.samples, f)
}

// GetRecent returns up to n failures, newest first
func (l *FailureLog) GetRecent(n int) []Failure {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if n <= 0 || n > len(l.samples) {
		n = len(l.samples)
	}
	out := make([]Failure, 0, n)
	for i := len(l.samples) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.samples[i])
	}
	return out
}

// Len returns the number of stored failures
func (l *FailureLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.samples)
}
