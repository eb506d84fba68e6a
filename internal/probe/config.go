package probe

import "time"

// Default probe settings.
const (
	DefaultWorkers  = 4
	DefaultRequests = 100
	// WorkerChannelMultiplier sizes the job channel relative to workers.
	WorkerChannelMultiplier = 2
	reportInterval          = time.Second
)

// Config controls a probe run.
type Config struct {
	Workers  int  // Number of concurrent workers
	Requests int  // Total number of calls to issue
	Create   bool // Interleave CreateSession calls with ListSessions
	// Session is the CreateSession payload used when Create is set.
	Session any
}

// Stats holds the outcome of a probe run.
type Stats struct {
	Submitted int
	Succeeded int
	Failed    int
	Lists     int
	Creates   int
	// Failures counts error messages by text.
	Failures  map[string]int
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration
}

// CallsPerSecond returns the throughput of the run.
func (s Stats) CallsPerSecond() float64 {
	if s.Duration <= 0 {
		return 0
	}
	return float64(s.Submitted) / s.Duration.Seconds()
}
