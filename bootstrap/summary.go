package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/snapstudy/component"
	"github.com/kbukum/snapstudy/logger"
)

// CapabilityInfo lists the candidates configured for one capability kind.
type CapabilityInfo struct {
	Kind       string
	Candidates []string
}

// Summary tracks and displays the application bootstrap process.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	capabilities    []CapabilityInfo
	out             io.Writer
}

// NewSummary creates a new bootstrap summary tracker.
func NewSummary(serviceName, version string) *Summary {
	return &Summary{
		serviceName: serviceName,
		version:     version,
		out:         os.Stdout,
	}
}

// SetOutput redirects the summary. Defaults to stdout.
func (s *Summary) SetOutput(w io.Writer) {
	s.out = w
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// TrackCapability records the candidate order of a capability kind.
func (s *Summary) TrackCapability(kind string, candidates []string) {
	s.capabilities = append(s.capabilities, CapabilityInfo{Kind: kind, Candidates: candidates})
}

// DisplaySummary prints the bootstrap summary: components that describe
// themselves, configured capabilities, server routes and live health.
func (s *Summary) DisplaySummary(registry *component.Registry, log *logger.Logger) {
	w := s.out
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n\n", s.serviceName, s.version, s.startupDuration.Seconds())

	var (
		described []component.Description
		routes    []component.Route
	)
	if registry != nil {
		for _, c := range registry.All() {
			if d, ok := c.(component.Describable); ok {
				desc := d.Describe()
				if desc.Name == "" {
					desc.Name = c.Name()
				}
				described = append(described, desc)
			}
			if rp, ok := c.(component.RouteProvider); ok {
				routes = append(routes, rp.Routes()...)
			}
		}
	}

	if len(described) > 0 {
		fmt.Fprintf(w, "📦 Components\n")
		for i, d := range described {
			details := d.Details
			if d.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, d.Port)
			}
			fmt.Fprintf(w, "   %s [%s] %s: %s\n", branch(i, len(described)), d.Type, d.Name, details)
		}
	} else {
		fmt.Fprintf(w, "   └── No components registered\n")
	}

	if len(s.capabilities) > 0 {
		fmt.Fprintf(w, "\n🧩 Capabilities\n")
		for i, c := range s.capabilities {
			fmt.Fprintf(w, "   %s %s → %s\n", branch(i, len(s.capabilities)), c.Kind, strings.Join(c.Candidates, ", "))
		}
	}

	if len(routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", branch(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	if registry != nil {
		results := registry.HealthAll(context.Background())
		if len(results) > 0 {
			fmt.Fprintf(w, "\n🏥 Health Check\n")
			for i, h := range results {
				msg := ""
				if h.Message != "" {
					msg = " - " + h.Message
				}
				fmt.Fprintf(w, "   %s %s %s: %s%s\n", branch(i, len(results)), healthStatusIcon(h.Status), h.Name, h.Status, msg)
			}
			if overall := component.Overall(results); overall != component.StatusHealthy && log != nil {
				log.Warn("Startup health is not fully healthy", logger.Fields(logger.FieldStatus, string(overall)))
			}
		}
	}

	fmt.Fprintf(w, "\n")
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthStatusIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	case component.StatusUnresolved:
		return "⏸️"
	default:
		return "❓"
	}
}
