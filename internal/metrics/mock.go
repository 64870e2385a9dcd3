package metrics

import "sync"

// Mock is a Metrics implementation for tests that records every call.
type Mock struct {
	mu sync.Mutex

	ProfileBuildCalls   int
	ProfileFailureCalls int
	ObservedDurations   []float64
	AnalyticsQueryCalls int
	StoreFailureCalls   int
	StartupTimeObserved float64
}

var _ Metrics = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) IncProfileBuilds() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProfileBuildCalls++
}

func (m *Mock) IncProfileFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProfileFailureCalls++
}

func (m *Mock) ObserveProfileBuildDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ObservedDurations = append(m.ObservedDurations, duration)
}

func (m *Mock) IncAnalyticsQueries() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnalyticsQueryCalls++
}

func (m *Mock) IncStoreFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StoreFailureCalls++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTimeObserved = duration
}
