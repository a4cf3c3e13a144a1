package bootstrap

import (
	"context"
	"time"

	"github.com/kbukum/backend-template/component"
	"github.com/kbukum/backend-template/logger"
)

// Summary records the startup of one process and logs it once every
// component is running.
type Summary struct {
	Service         string
	Version         string
	StartupDuration time.Duration
	Components      []component.Health
}

// NewSummary creates an empty summary for service.
func NewSummary(service, version string) *Summary {
	return &Summary{Service: service, Version: version}
}

// Collect snapshots component health from the registry.
func (s *Summary) Collect(ctx context.Context, registry *component.Registry) {
	if registry == nil {
		s.Components = nil
		return
	}
	s.Components = registry.HealthAll(ctx)
}

// Status is the folded health of the collected components.
func (s *Summary) Status() component.HealthStatus {
	return component.Overall(s.Components)
}

// Log writes the summary: one line for the process, one per component.
func (s *Summary) Log(log *logger.Logger) {
	log.Info("Startup complete", logger.Fields(
		"name", s.Service,
		"version", s.Version,
		"status", string(s.Status()),
		"components", len(s.Components),
		logger.FieldDuration, s.StartupDuration.String(),
	))
	for _, h := range s.Components {
		fields := logger.Fields("component", h.Name, logger.FieldStatus, string(h.Status))
		if h.Message != "" {
			fields["message"] = h.Message
		}
		if h.Status == component.StatusHealthy {
			log.Info("Component ready", fields)
		} else {
			log.Warn("Component not ready", fields)
		}
	}
}
