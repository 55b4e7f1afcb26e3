package otpauth

import (
	"sync/atomic"
	"time"
)

// MetricID defines a public type used by otpauth APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricChallengeIssued is an exported constant or variable used by the OTP engine.
	MetricChallengeIssued MetricID = iota
	// MetricChallengeRateLimited is an exported constant or variable used by the OTP engine.
	MetricChallengeRateLimited
	// MetricVerifySuccess is an exported constant or variable used by the OTP engine.
	MetricVerifySuccess
	// MetricVerifyInvalid is an exported constant or variable used by the OTP engine.
	MetricVerifyInvalid
	// MetricVerifyExpired is an exported constant or variable used by the OTP engine.
	MetricVerifyExpired
	// MetricVerifyNoRecord is an exported constant or variable used by the OTP engine.
	MetricVerifyNoRecord
	// MetricVerifyAttemptsExceeded is an exported constant or variable used by the OTP engine.
	MetricVerifyAttemptsExceeded
	// MetricLoginSuccess is an exported constant or variable used by the OTP engine.
	MetricLoginSuccess
	// MetricLoginFailure is an exported constant or variable used by the OTP engine.
	MetricLoginFailure
	// MetricRegisterSuccess is an exported constant or variable used by the OTP engine.
	MetricRegisterSuccess
	// MetricRegisterFailure is an exported constant or variable used by the OTP engine.
	MetricRegisterFailure
	// MetricAuthorizeAllow is an exported constant or variable used by the OTP engine.
	MetricAuthorizeAllow
	// MetricAuthorizeDenied is an exported constant or variable used by the OTP engine.
	MetricAuthorizeDenied
	// MetricLogout is an exported constant or variable used by the OTP engine.
	MetricLogout
	// MetricAuthorizeLatency is an exported constant or variable used by the OTP engine.
	MetricAuthorizeLatency
	metricIDCount
)

const (
	histBucketCount = 8
	cacheLineSize   = 64
)

type metricHistogram struct {
	buckets [histBucketCount]uint64
}

type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics holds lock-free counters and an optional authorize-latency
// histogram. All operations are no-ops when disabled.
type Metrics struct {
	enabled       bool
	enableLatency bool
	counters      [metricIDCount]paddedCounter
	histograms    [metricIDCount]metricHistogram
}

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot struct {
	Counters   map[MetricID]uint64
	Histograms map[MetricID][]uint64
}

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig].
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{
		enabled:       cfg.Enabled,
		enableLatency: cfg.Enabled && cfg.EnableLatencyHistograms,
	}
}

// Enabled reports whether metric collection is active.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// LatencyEnabled reports whether the authorize-latency histogram is active.
func (m *Metrics) LatencyEnabled() bool {
	return m != nil && m.enableLatency
}

// Inc atomically increments a counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Observe records an authorize-latency sample into the fixed bucket set.
func (m *Metrics) Observe(id MetricID, d time.Duration) {
	if m == nil || !m.enabled || !m.enableLatency || id >= metricIDCount {
		return
	}
	if id != MetricAuthorizeLatency {
		return
	}

	b := bucketIndex(d)
	atomic.AddUint64(&m.histograms[id].buckets[b], 1)
}

// Value returns the current value of a counter.
func (m *Metrics) Value(id MetricID) uint64 {
	if m == nil || id >= metricIDCount {
		return 0
	}
	return atomic.LoadUint64(&m.counters[id].value)
}

// Snapshot returns a deep copy of all counters and histogram buckets.
func (m *Metrics) Snapshot() MetricsSnapshot {
	if m == nil || !m.enabled {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}

	s := MetricsSnapshot{
		Counters:   make(map[MetricID]uint64, int(metricIDCount)),
		Histograms: make(map[MetricID][]uint64, 1),
	}

	for id := MetricID(0); id < metricIDCount; id++ {
		s.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}

	if m.enableLatency {
		buckets := make([]uint64, histBucketCount)
		for i := 0; i < histBucketCount; i++ {
			buckets[i] = atomic.LoadUint64(&m.histograms[MetricAuthorizeLatency].buckets[i])
		}
		s.Histograms[MetricAuthorizeLatency] = buckets
	}

	return s
}

func bucketIndex(d time.Duration) int {
	ms := d.Milliseconds()

	switch {
	case ms <= 5:
		return 0
	case ms <= 10:
		return 1
	case ms <= 25:
		return 2
	case ms <= 50:
		return 3
	case ms <= 100:
		return 4
	case ms <= 250:
		return 5
	case ms <= 500:
		return 6
	default:
		return 7
	}
}
