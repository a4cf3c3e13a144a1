// Package logger provides structured logging on top of zerolog.
//
// Loggers write to the console and, when Config.Dir is set, to rotating
// files split by channel (api, server, worker, exceptions). Anything at
// error level or above is copied to the exceptions channel.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "console"
//	  dir: "./logs"
//	  max_size: 100
//
// # Usage
//
//	log := logger.New(&cfg, "backend-template")
//	defer log.Close()
//	log.Channel(logger.ChannelAPI).Info("request", logger.Fields("path", "/api/users/me/"))
package logger
