// Package platform assembles the process from settings: it registers the
// infrastructure components on a bootstrap App and builds the services
// that depend on them once they have started.
package platform

import (
	"context"
	"errors"

	"github.com/kbukum/backend-template/accounts"
	"github.com/kbukum/backend-template/auth/jwt"
	"github.com/kbukum/backend-template/auth/password"
	"github.com/kbukum/backend-template/bootstrap"
	"github.com/kbukum/backend-template/component"
	"github.com/kbukum/backend-template/database"
	"github.com/kbukum/backend-template/observability"
	"github.com/kbukum/backend-template/settings"
	"github.com/kbukum/backend-template/storage"

	// Storage backends register themselves with the factory.
	_ "github.com/kbukum/backend-template/storage/local"
	_ "github.com/kbukum/backend-template/storage/minio"
	_ "github.com/kbukum/backend-template/storage/s3"
)

// App is the bootstrap application typed on Settings.
type App = bootstrap.App[*settings.Settings]

// ErrDatabaseDisabled is returned when a service needs the database but
// database.enabled is false.
var ErrDatabaseDisabled = errors.New("database is not enabled")

// Platform holds the application and its infrastructure components.
type Platform struct {
	App      *App
	Settings *settings.Settings
	Database *database.Component
	Storage  *storage.Component
}

// New creates the App and registers observability, database and storage
// in that order.
func New(s *settings.Settings, opts ...bootstrap.Option) (*Platform, error) {
	app, err := bootstrap.NewApp(s, opts...)
	if err != nil {
		return nil, err
	}
	log := app.Logger

	p := &Platform{
		App:      app,
		Settings: s,
		Database: database.NewComponent(s.Database, log).WithAutoMigrate(accounts.Models()...),
		Storage:  storage.NewComponent(s.Storage, nil, log),
	}

	for _, c := range []component.Component{
		observability.NewComponent(s.Observability, log),
		p.Database,
		p.Storage,
	} {
		if err := app.RegisterComponent(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Accounts builds the account service on the started database.
func (p *Platform) Accounts() (*accounts.Service, error) {
	db := p.Database.DB()
	if db == nil {
		return nil, ErrDatabaseDisabled
	}
	tokens, err := jwt.NewService(&p.Settings.Auth.JWT, func() *jwt.Claims { return &jwt.Claims{} })
	if err != nil {
		return nil, err
	}
	pw := p.Settings.Auth.Password
	return accounts.NewService(db, tokens, password.NewHasher(pw), password.NewValidator(pw), p.App.Logger), nil
}

// Gateway returns the storage gateway, or nil when storage is disabled.
func (p *Platform) Gateway() *storage.Gateway {
	return p.Storage.Gateway()
}

// Migrate creates or updates the tables of every model.
func (p *Platform) Migrate(ctx context.Context) error {
	db := p.Database.DB()
	if db == nil {
		return ErrDatabaseDisabled
	}
	return db.AutoMigrate(ctx, accounts.Models()...)
}
