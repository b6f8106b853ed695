package driver

import "time"

// Metrics describes one compilation run
type Metrics struct {
	RunID              string
	TotalFiles         int
	CacheHits          int
	CacheMisses        int
	Tags               int
	PreprocessDuration time.Duration
	ParseDuration      time.Duration
	BuildDuration      time.Duration
	MergeDuration      time.Duration
	TotalDuration      time.Duration
	StartTime          time.Time
	EndTime            time.Time
}

// CacheHitRate returns the cache hit rate as a percentage
func (m Metrics) CacheHitRate() float64 {
	if m.TotalFiles == 0 {
		return 0.0
	}
	return float64(m.CacheHits) / float64(m.TotalFiles) * 100.0
}
