package ports

import "time"

// Metrics receives gateway events. The prometheus adapter implements it; NopMetrics
// is the default for callers that do not export anything.
type Metrics interface {
	ObserveExecution(connection, outcome string, duration time.Duration)
	ObserveConnect(connection, result string)
	ObserveEviction(reason string)
	SetPooledSessions(n int)
}

type NopMetrics struct{}

func (NopMetrics) ObserveExecution(string, string, time.Duration) {}
func (NopMetrics) ObserveConnect(string, string)                  {}
func (NopMetrics) ObserveEviction(string)                         {}
func (NopMetrics) SetPooledSessions(int)                          {}
