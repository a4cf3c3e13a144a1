package observability

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/backend-template/component"
	"github.com/kbukum/backend-template/logger"
)

// Component owns the tracer and meter providers. With no endpoint it
// leaves the global no-op providers in place.
type Component struct {
	cfg Config
	log *logger.Logger
	tp  *sdktrace.TracerProvider
	mp  *sdkmetric.MeterProvider
}

var _ component.Component = (*Component)(nil)

func NewComponent(cfg Config, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("observability")}
}

func (c *Component) Name() string { return "observability" }

func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled() {
		c.log.Debug("otlp endpoint not configured, telemetry export disabled")
		return nil
	}
	tp, err := InitTracer(ctx, c.cfg)
	if err != nil {
		return err
	}
	mp, err := InitMeter(ctx, c.cfg)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return err
	}
	c.tp, c.mp = tp, mp
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	var errs []error
	if c.tp != nil {
		errs = append(errs, c.tp.Shutdown(ctx))
		c.tp = nil
	}
	if c.mp != nil {
		errs = append(errs, c.mp.Shutdown(ctx))
		c.mp = nil
	}
	return errors.Join(errs...)
}

func (c *Component) Health(_ context.Context) component.Health {
	msg := "export disabled"
	if c.cfg.Enabled() {
		msg = fmt.Sprintf("exporting to %s", c.cfg.Endpoint)
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: msg}
}
