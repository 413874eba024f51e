package stats

import (
	"strings"
	"sync/atomic"
	"time"
)

// Stats holds server counters; all fields are safe for concurrent use
type Stats struct {
	StartTime time.Time

	// Request counters
	TotalRequests     atomic.Int64
	SearchRequests    atomic.Int64
	DetailRequests    atomic.Int64
	FavoritesRequests atomic.Int64
	StaticRequests    atomic.Int64
	OtherRequests     atomic.Int64

	// Upstream outcomes
	UpstreamErrors   atomic.Int64
	InvalidStreams   atomic.Int64
	FavoritesAdded   atomic.Int64
	FavoritesRemoved atomic.Int64

	// Response status codes
	Status2xx atomic.Int64
	Status4xx atomic.Int64
	Status5xx atomic.Int64

	// Response times in microseconds
	totalResponseTime atomic.Int64
	responseCount     atomic.Int64
	minResponseTime   atomic.Int64
	maxResponseTime   atomic.Int64
}

const noMin = int64(^uint64(0) >> 1)

var global = New()

// New returns a zeroed Stats starting now
func New() *Stats {
	s := &Stats{StartTime: time.Now()}
	s.minResponseTime.Store(noMin)
	return s
}

// Get returns the global stats instance
func Get() *Stats {
	return global
}

// RecordRequest counts a request by path
func (s *Stats) RecordRequest(path string) {
	s.TotalRequests.Add(1)
	switch {
	case strings.HasPrefix(path, "/api/search"):
		s.SearchRequests.Add(1)
	case strings.HasPrefix(path, "/api/detail"):
		s.DetailRequests.Add(1)
	case strings.HasPrefix(path, "/api/favorites"):
		s.FavoritesRequests.Add(1)
	case path == "/" || path == "/index.html":
		s.StaticRequests.Add(1)
	default:
		s.OtherRequests.Add(1)
	}
}

func (s *Stats) RecordUpstreamError() {
	s.UpstreamErrors.Add(1)
}

func (s *Stats) RecordInvalidStream() {
	s.InvalidStreams.Add(1)
}

// RecordToggle counts a favorite add (true) or removal (false)
func (s *Stats) RecordToggle(favorited bool) {
	if favorited {
		s.FavoritesAdded.Add(1)
	} else {
		s.FavoritesRemoved.Add(1)
	}
}

// RecordStatusCode records a response status code
func (s *Stats) RecordStatusCode(code int) {
	switch {
	case code >= 200 && code < 300:
		s.Status2xx.Add(1)
	case code >= 400 && code < 500:
		s.Status4xx.Add(1)
	case code >= 500:
		s.Status5xx.Add(1)
	}
}

// RecordResponseTime records a response time
func (s *Stats) RecordResponseTime(duration time.Duration) {
	us := duration.Microseconds()

	s.totalResponseTime.Add(us)
	s.responseCount.Add(1)

	for {
		current := s.minResponseTime.Load()
		if us >= current || s.minResponseTime.CompareAndSwap(current, us) {
			break
		}
	}
	for {
		current := s.maxResponseTime.Load()
		if us <= current || s.maxResponseTime.CompareAndSwap(current, us) {
			break
		}
	}
}

// Uptime returns the server uptime
func (s *Stats) Uptime() time.Duration {
	return time.Since(s.StartTime)
}

// AvgResponseTime returns the average response time
func (s *Stats) AvgResponseTime() time.Duration {
	count := s.responseCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(s.totalResponseTime.Load()/count) * time.Microsecond
}

// MinResponseTime returns the minimum response time, or 0 before the first response
func (s *Stats) MinResponseTime() time.Duration {
	min := s.minResponseTime.Load()
	if min == noMin {
		return 0
	}
	return time.Duration(min) * time.Microsecond
}

// MaxResponseTime returns the maximum response time
func (s *Stats) MaxResponseTime() time.Duration {
	return time.Duration(s.maxResponseTime.Load()) * time.Microsecond
}

// Snapshot returns a point-in-time snapshot of all stats
func (s *Stats) Snapshot() map[string]interface{} {
	uptime := s.Uptime()

	return map[string]interface{}{
		"server": map[string]interface{}{
			"start_time":     s.StartTime.Format(time.RFC3339),
			"uptime":         uptime.String(),
			"uptime_seconds": int64(uptime.Seconds()),
		},
		"requests": map[string]interface{}{
			"total":     s.TotalRequests.Load(),
			"search":    s.SearchRequests.Load(),
			"detail":    s.DetailRequests.Load(),
			"favorites": s.FavoritesRequests.Load(),
			"static":    s.StaticRequests.Load(),
			"other":     s.OtherRequests.Load(),
		},
		"upstream": map[string]interface{}{
			"errors":          s.UpstreamErrors.Load(),
			"invalid_streams": s.InvalidStreams.Load(),
		},
		"favorites": map[string]interface{}{
			"added":   s.FavoritesAdded.Load(),
			"removed": s.FavoritesRemoved.Load(),
		},
		"responses": map[string]interface{}{
			"2xx": s.Status2xx.Load(),
			"4xx": s.Status4xx.Load(),
			"5xx": s.Status5xx.Load(),
		},
		"response_times": map[string]interface{}{
			"avg": s.AvgResponseTime().String(),
			"min": s.MinResponseTime().String(),
			"max": s.MaxResponseTime().String(),
		},
	}
}
