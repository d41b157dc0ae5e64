package application

import (
	"context"
	"time"

	"github.com/bnema/sshgw/internal/domain"
)

type ProbeResult struct {
	Reachable bool          `json:"reachable"`
	Latency   time.Duration `json:"latency_ns,omitempty"`
	Error     string        `json:"error,omitempty"`
}

type ConnectionStatus struct {
	Name       string                     `json:"name"`
	Connection domain.SanitizedConnection `json:"connection"`
	Pooled     bool                       `json:"pooled"`
	Probe      *ProbeResult               `json:"probe,omitempty"`
}

type StatusReport struct {
	ServerName  string                   `json:"server_name"`
	Connections []ConnectionStatus       `json:"connections"`
	Defaults    domain.SanitizedDefaults `json:"defaults"`
}

// Status describes every configured connection. With probe set, each
// connection is opened through the pool and the handshake time recorded.
func (g *Gateway) Status(ctx context.Context, probe bool) StatusReport {
	cfg := g.snapshot.Load()
	sanitized := cfg.Sanitized()

	report := StatusReport{
		ServerName:  cfg.Server.Name,
		Connections: make([]ConnectionStatus, 0, len(sanitized.Connections)),
		Defaults:    sanitized.Defaults,
	}

	for _, name := range cfg.ConnectionNames() {
		status := ConnectionStatus{
			Name:       name,
			Connection: sanitized.Connections[name],
		}
		if probe {
			status.Probe = g.probe(ctx, name)
		}
		status.Pooled = g.pool.Has(name)
		report.Connections = append(report.Connections, status)
	}

	return report
}

func (g *Gateway) probe(ctx context.Context, name string) *ProbeResult {
	startedAt := g.clock.Now()
	if _, err := g.pool.Acquire(ctx, name); err != nil {
		g.logger.Debug().Err(err).Str("connection", name).Msg("probe failed")
		return &ProbeResult{Error: err.Error()}
	}

	return &ProbeResult{Reachable: true, Latency: g.clock.Now().Sub(startedAt)}
}
