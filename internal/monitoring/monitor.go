package monitoring

import (
	"sync"
	"time"

	"comanda/internal/restaurant"
)

// Monitor keeps a small JSON-friendly view of service activity
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	// Create a copy to avoid concurrent map access
	metrics := make(map[string]interface{}, len(m.metrics))
	for k, v := range m.metrics {
		metrics[k] = v
	}

	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}

// Observe counts an order event under "<event type>_count" and keeps the
// time of the latest event
func (m *Monitor) Observe(event restaurant.Event) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	key := string(event.Type) + "_count"
	count, _ := m.metrics[key].(int)
	m.metrics[key] = count + 1

	if event.Type == restaurant.EventOrderAdvanced {
		stateKey := "orders_" + string(event.Order.State)
		n, _ := m.metrics[stateKey].(int)
		m.metrics[stateKey] = n + 1
	}

	m.metrics["last_event"] = time.Now().Format(time.RFC3339)
}
