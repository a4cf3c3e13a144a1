package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/platform"
	"github.com/kbukum/backend-template/settings"
)

// errStorageDisabled is returned by storage commands when storage.enabled
// is false.
var errStorageDisabled = errors.New("storage is not enabled")

type needs struct {
	database bool
	storage  bool
}

// runTask loads settings, starts the components the command needs and
// runs task inside the application lifecycle.
func runTask(n needs, task func(ctx context.Context, p *platform.Platform) error) error {
	var loadOpts []settings.Option
	if opts.ConfigFile != "" {
		loadOpts = append(loadOpts, settings.WithConfigFile(opts.ConfigFile))
	}
	if opts.EnvFile != "" {
		loadOpts = append(loadOpts, settings.WithEnvFile(opts.EnvFile))
	}

	s, err := settings.Load("manage", loadOpts...)
	if err != nil {
		return err
	}
	if n.storage && !s.Storage.Enabled {
		return errStorageDisabled
	}
	if !n.database {
		s.Database.Enabled = false
	}
	if !n.storage {
		s.Storage.Enabled = false
	}
	s.Logging.Level = "warn"
	if opts.Verbose {
		s.Logging.Level = "debug"
	}

	p, err := platform.New(s)
	if err != nil {
		return err
	}
	return p.App.RunTask(context.Background(), func(ctx context.Context) error {
		return task(ctx, p)
	})
}

// MigrateCommand creates or updates the tables of every model.
type MigrateCommand struct{}

func (c *MigrateCommand) Execute(_ []string) error {
	return runTask(needs{database: true}, func(ctx context.Context, p *platform.Platform) error {
		if err := p.Migrate(ctx); err != nil {
			return err
		}
		fmt.Fprintln(stdout, "Migrations applied.")
		return nil
	})
}

// FlushExpiredTokensCommand removes expired refresh tokens.
type FlushExpiredTokensCommand struct{}

func (c *FlushExpiredTokensCommand) Execute(_ []string) error {
	return runTask(needs{database: true}, func(ctx context.Context, p *platform.Platform) error {
		svc, err := p.Accounts()
		if err != nil {
			return err
		}
		n, err := svc.FlushExpired(ctx)
		if err != nil {
			return err
		}
		p.App.Logger.Info("Flushed expired tokens", logger.Fields("count", n))
		fmt.Fprintf(stdout, "Deleted %d expired tokens.\n", n)
		return nil
	})
}
