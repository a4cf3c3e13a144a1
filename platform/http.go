package platform

import (
	"context"

	"github.com/kbukum/backend-template/api"
	"github.com/kbukum/backend-template/observability"
	"github.com/kbukum/backend-template/resilience"
	"github.com/kbukum/backend-template/server"
)

// WithHTTP registers a configure callback that mounts the API on a new
// server and registers the server component. The server starts after
// every infrastructure component is up.
func (p *Platform) WithHTTP() {
	p.App.OnConfigure(func(ctx context.Context, a *App) error {
		srv, err := p.NewServer()
		if err != nil {
			return err
		}
		return a.RegisterComponent(server.NewComponent(srv))
	})
}

// NewServer builds the HTTP server with middleware, default endpoints and
// the API routes.
func (p *Platform) NewServer() (*server.Server, error) {
	svc, err := p.Accounts()
	if err != nil {
		return nil, err
	}

	s := p.Settings
	srv := server.New(s.HTTP, p.App.Logger)
	srv.ApplyMiddleware()
	srv.RegisterDefaultEndpoints(s.Name, p.App.Components.HealthAll)

	metrics, err := observability.NewMetrics(observability.Meter())
	if err != nil {
		return nil, err
	}
	api.Register(srv.GinEngine(), api.Deps{
		Accounts: svc,
		Storage:  p.Gateway(),
		Metrics:  metrics,
		PageSize: s.Pagination.PageSize,
		Log:      p.App.Logger,

		AuthThrottle: resilience.PerMinute(s.Auth.ThrottlePerMinute),
	})
	return srv, nil
}
