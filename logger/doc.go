// Package logger provides structured logging using zerolog.
//
// It supports multiple output formats (JSON, console), log level
// configuration, and component-scoped loggers with structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.WithComponent("guard")
//	log.Info("circuit opened", logger.Fields("service", "upstream"))
package logger
