// Command server runs the HTTP API.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/backend-template/logger"
	"github.com/kbukum/backend-template/platform"
	"github.com/kbukum/backend-template/settings"
	"github.com/kbukum/backend-template/version"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	s, err := settings.Load("server")
	if err != nil {
		return err
	}
	if s.Version == "" {
		s.Version = version.GetShortVersion()
	}

	p, err := platform.New(s)
	if err != nil {
		return err
	}
	p.App.Logger.Info("Settings", s.Summary())

	p.WithHTTP()
	if err := p.App.Run(ctx); err != nil {
		logger.Error("Server exited with error", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	return nil
}
