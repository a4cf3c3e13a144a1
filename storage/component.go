package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/kbukum/backend-template/component"
	"github.com/kbukum/backend-template/logger"
)

// Component creates the process-wide Gateway on Start and releases its
// backend on Stop.
type Component struct {
	gateway     *Gateway
	cfg         Config
	providerCfg any
	log         *logger.Logger
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a storage component for use with the component registry.
func NewComponent(cfg Config, providerCfg any, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg:         cfg,
		providerCfg: providerCfg,
		log:         log.WithComponent("storage"),
	}
}

// Gateway returns the gateway, or nil before Start.
func (c *Component) Gateway() *Gateway {
	return c.gateway
}

func (c *Component) Name() string { return "storage" }

func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Info("storage component is disabled")
		return nil
	}

	backend, err := New(ctx, c.cfg, c.providerCfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	c.gateway = NewGateway(backend, c.cfg, c.log)
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	if c.gateway == nil {
		return nil
	}
	var err error
	if closer, ok := c.gateway.Backend().(io.Closer); ok {
		err = closer.Close()
	}
	c.gateway = nil
	return err
}

func (c *Component) Health(ctx context.Context) component.Health {
	if !c.cfg.Enabled {
		return component.Health{Name: c.Name(), Status: component.StatusHealthy, Message: "disabled"}
	}
	if c.gateway == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "storage not initialized"}
	}
	if err := c.gateway.Ping(ctx); err != nil {
		status := component.StatusUnhealthy
		if IsTransient(err) {
			status = component.StatusDegraded
		}
		return component.Health{Name: c.Name(), Status: status, Message: err.Error()}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	details := fmt.Sprintf("provider=%s", c.cfg.Provider)
	if c.cfg.Bucket != "" {
		details += fmt.Sprintf(" bucket=%s region=%s", c.cfg.Bucket, c.cfg.Region)
	}
	if c.cfg.Endpoint != "" {
		details += fmt.Sprintf(" endpoint=%s", c.cfg.Endpoint)
	}
	return component.Description{Name: "Storage", Type: "storage", Details: details}
}
