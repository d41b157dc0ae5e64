package status

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/sshgw/internal/application"
	"github.com/bnema/sshgw/internal/domain"
)

type RenderOptions struct {
	ConfigPath string
	// SlowProbe is the handshake latency rendered fully faded.
	SlowProbe time.Duration
}

func renderView(report application.StatusReport, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render(report.ServerName),
		s.header.Render(fmt.Sprintf("connections: %d", len(report.Connections))),
	}
	if opts.ConfigPath != "" {
		lines = append(lines, s.header.Render("config: "+opts.ConfigPath))
	}

	if len(report.Connections) == 0 {
		lines = append(lines, s.empty.Render("No connections configured."))
	}

	for _, status := range report.Connections {
		lines = append(lines, s.section.Render(renderConnection(status, opts, s)))
	}

	lines = append(lines, s.section.Render(renderPolicy(report.Defaults, s)))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderConnection(status application.ConnectionStatus, opts RenderOptions, s styles) string {
	c := status.Connection
	parts := []string{
		s.connection.Render(status.Name),
		s.detail.Render(fmt.Sprintf("%s@%s:%d", c.Username, c.Hostname, c.Port)),
		keyValue("auth:", authLabel(c), s),
		keyValue("host key:", hostKeyLabel(c), s),
	}

	if status.Probe != nil {
		parts = append(parts, probeLine(status.Probe, opts, s))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderPolicy(d domain.SanitizedDefaults, s styles) string {
	commands := s.empty.Render("none")
	if len(d.AllowedCommands) > 0 {
		rendered := make([]string, 0, len(d.AllowedCommands))
		for _, cmd := range d.AllowedCommands {
			rendered = append(rendered, s.command.Render(cmd))
		}
		commands = strings.Join(rendered, ", ")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		s.title.Render("Policy"),
		keyValue("allowed:", commands, s),
		keyValue("timeout:", fmt.Sprintf("%ds", d.Timeout), s),
		keyValue("max output:", formatBytes(d.MaxOutputSize), s),
		keyValue("stream idle:", fmt.Sprintf("%ds", d.StreamIdleTimeout), s),
		keyValue("exit status:", fmt.Sprintf("wait %ds, fallback %s", d.ExitStatusTimeout, d.ExitStatusFallback), s),
	)
}

func keyValue(key, value string, s styles) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, s.key.Render(key), " ", s.detail.Render(value))
}

func probeLine(probe *application.ProbeResult, opts RenderOptions, s styles) string {
	if !probe.Reachable {
		return s.warning.Render("unreachable: " + probe.Error)
	}

	latency := lipgloss.NewStyle().
		Foreground(latencyColor(probe.Latency, opts.SlowProbe)).
		Render(fmt.Sprintf("(%s)", probe.Latency.Round(time.Millisecond)))

	return lipgloss.JoinHorizontal(lipgloss.Top, s.ok.Render("reachable"), " ", latency)
}

func authLabel(c domain.SanitizedConnection) string {
	switch domain.AuthMethod(c.AuthMethod) {
	case domain.AuthMethodKey:
		if c.PassphraseRef != "" {
			return fmt.Sprintf("key %s (passphrase %s)", c.KeyPath, c.PassphraseRef)
		}
		return "key " + c.KeyPath
	case domain.AuthMethodPassword:
		if c.PasswordRef != "" {
			return "password ref " + c.PasswordRef
		}
		return "password " + c.Password
	case "":
		return "none"
	default:
		return c.AuthMethod
	}
}

func hostKeyLabel(c domain.SanitizedConnection) string {
	if c.InsecureIgnoreHostKey {
		return "not verified"
	}
	if c.KnownHosts != "" {
		return c.KnownHosts
	}

	return "~/.ssh/known_hosts"
}

func formatBytes(n int) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MiB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KiB", n>>10)
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// latencyColor fades from bright white at zero to grey at slow and beyond.
func latencyColor(latency, slow time.Duration) lipgloss.Color {
	if slow <= 0 {
		return lipgloss.Color("255")
	}

	normalized := float64(latency) / float64(slow)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp
	baseColor := 255.0
	targetColor := 240.0
	colorCode := int(baseColor + (targetColor-baseColor)*normalized)

	return lipgloss.Color(fmt.Sprintf("%d", colorCode))
}
