package observability

import (
	"strconv"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	startedAt    time.Time
	requestCount map[string]int64
	errorCount   map[string]int64
	totalLatency time.Duration
	requests     int64
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	UptimeSeconds    int64            `json:"uptimeSeconds"`
	Requests         int64            `json:"requests"`
	AverageLatencyMS float64          `json:"averageLatencyMs"`
	ByRoute          map[string]int64 `json:"byRoute"`
	Errors           map[string]int64 `json:"errors"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		startedAt:    time.Now(),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(route, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := route + "|" + method + "|" + strconv.Itoa(status)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.requests++
	m.totalLatency += duration
}

// RecordError increments error counters keyed by error code.
func (m *Metrics) RecordError(route, method, code string) {
	if m == nil {
		return
	}
	key := route + "|" + method + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the current counters.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		UptimeSeconds: int64(time.Since(m.startedAt).Seconds()),
		Requests:      m.requests,
		ByRoute:       make(map[string]int64, len(m.requestCount)),
		Errors:        make(map[string]int64, len(m.errorCount)),
	}
	if m.requests > 0 {
		s.AverageLatencyMS = float64(m.totalLatency.Microseconds()) / 1000 / float64(m.requests)
	}
	for k, v := range m.requestCount {
		s.ByRoute[k] = v
	}
	for k, v := range m.errorCount {
		s.Errors[k] = v
	}
	return s
}
