// Package config loads service configuration with Viper.
//
// Values come from binding defaults, an optional config.yml and the
// environment. A .env file, when found, is loaded into the environment
// first without overriding variables that are already set.
//
// # Usage
//
//	var cfg Settings
//	err := config.LoadConfig("server", &cfg,
//	    config.WithBindings(config.Binding{Key: "database.name", Env: "DB_NAME"}),
//	)
package config
