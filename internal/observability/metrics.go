package observability

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics provides basic in-memory counters.
type Metrics struct {
	mu           sync.Mutex
	started      time.Time
	requestCount map[string]int64
	errorCount   map[string]int64
	latencyTotal map[string]time.Duration
}

// Counter is one labelled value in a Snapshot.
type Counter struct {
	Path   string `json:"path"`
	Method string `json:"method"`
	Label  string `json:"label"`
	Count  int64  `json:"count"`
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	UptimeSeconds int64     `json:"uptime_seconds"`
	Requests      []Counter `json:"requests"`
	Errors        []Counter `json:"errors"`
	AvgLatencyMs  float64   `json:"avg_latency_ms"`
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		started:      time.Now(),
		requestCount: make(map[string]int64),
		errorCount:   make(map[string]int64),
		latencyTotal: make(map[string]time.Duration),
	}
}

// RecordRequest increments counters for requests.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := pathKey(path, method, strconv.Itoa(status))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount[key]++
	m.latencyTotal[key] += duration
}

// RecordError increments error counters.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	key := pathKey(path, method, code)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// Snapshot copies the counters, sorted by key.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	var total int64
	var latency time.Duration
	for key, n := range m.requestCount {
		total += n
		latency += m.latencyTotal[key]
	}
	snap := Snapshot{
		UptimeSeconds: int64(time.Since(m.started).Seconds()),
		Requests:      counters(m.requestCount),
		Errors:        counters(m.errorCount),
	}
	if total > 0 {
		snap.AvgLatencyMs = float64(latency.Microseconds()) / 1000 / float64(total)
	}
	return snap
}

func counters(src map[string]int64) []Counter {
	keys := make([]string, 0, len(src))
	for k := range src {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Counter, 0, len(keys))
	for _, k := range keys {
		parts := strings.SplitN(k, "|", 3)
		out = append(out, Counter{Path: parts[0], Method: parts[1], Label: parts[2], Count: src[k]})
	}
	return out
}

func pathKey(path, method, label string) string {
	return path + "|" + method + "|" + label
}
