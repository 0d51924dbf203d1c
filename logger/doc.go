// Package logger provides structured logging using zerolog.
//
// It supports JSON and console output, log level configuration and
// component-scoped loggers carrying structured fields.
//
// # Configuration
//
//	logging:
//	  level: "info"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg, "orders").WithComponent("cosmosdb")
//	log.Info("document read", logger.Fields(logger.FieldDocument, id))
package logger
