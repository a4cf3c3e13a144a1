package bootstrap

import (
	"github.com/kbukum/backend-template/config"
)

// Config is the constraint for application configuration types. Any struct
// embedding config.ServiceConfig satisfies it through promoted methods.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}

// dirEnsurer is implemented by configs that own on-disk directories which
// must exist before the logger opens its channel files.
type dirEnsurer interface {
	EnsureDirs() error
}
